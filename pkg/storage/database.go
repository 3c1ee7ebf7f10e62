// Package storage persists received CDIR messages: a sqlite archive keyed
// by content hash, plus the plain .msg files the interactive client reads.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
)

// ArchiveDB manages the local received-message archive
type ArchiveDB struct {
	db *sql.DB
}

// ArchivedMessage represents a received message in the database
type ArchivedMessage struct {
	ID            int64
	ContentHash   string // BLAKE2b-256 over sender key + payload, hex
	SenderPubKey  []byte // 32-byte raw Ed25519 public key
	SenderKeyHash string // hex SHA-256 of the sender key
	Payload       []byte // verified plaintext
	RemoteAddr    string // peer address the frame arrived from
	ReceivedAt    int64  // unix seconds
}

// NewArchiveDB opens (creating if needed) the archive database at dbPath
func NewArchiveDB(dbPath string) (*ArchiveDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %v", err)
	}

	adb := &ArchiveDB{db: db}
	if err := adb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return adb, nil
}

// initSchema creates database tables
func (a *ArchiveDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_hash TEXT UNIQUE NOT NULL,
		sender_pub_key BLOB NOT NULL,
		sender_key_hash TEXT NOT NULL,
		payload BLOB NOT NULL,
		remote_addr TEXT NOT NULL,
		received_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_key_hash);
	CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received_at DESC);
	`

	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}
	return nil
}

// Close closes the underlying database
func (a *ArchiveDB) Close() error {
	return a.db.Close()
}
