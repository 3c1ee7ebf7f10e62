package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
	"github.com/Vincent4486/CommuniDirect/pkg/protocol"
)

// SaveMessage stores a decoded message in the archive. The content hash is
// derived from the sender key and payload, so re-delivered frames dedupe to
// a single row; the second save reports duplicate=true.
func (a *ArchiveDB) SaveMessage(msg *protocol.Message, remoteAddr string, receivedAt time.Time) (*ArchivedMessage, bool, error) {
	hashInput := make([]byte, 0, len(msg.SenderPubKeyRaw)+len(msg.Payload))
	hashInput = append(hashInput, msg.SenderPubKeyRaw...)
	hashInput = append(hashInput, msg.Payload...)

	contentHash, err := crypto.ContentHashHex(hashInput)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash message: %v", err)
	}

	stored := &ArchivedMessage{
		ContentHash:   contentHash,
		SenderPubKey:  msg.SenderPubKeyRaw,
		SenderKeyHash: msg.SenderKeyHash,
		Payload:       msg.Payload,
		RemoteAddr:    remoteAddr,
		ReceivedAt:    receivedAt.Unix(),
	}

	query := `
		INSERT OR IGNORE INTO messages (
			content_hash, sender_pub_key, sender_key_hash,
			payload, remote_addr, received_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := a.db.Exec(
		query,
		stored.ContentHash,
		stored.SenderPubKey,
		stored.SenderKeyHash,
		stored.Payload,
		stored.RemoteAddr,
		stored.ReceivedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save message: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		// Already archived; return the existing row
		existing, err := a.GetMessage(contentHash)
		if err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	stored.ID = id

	return stored, false, nil
}

// GetMessage retrieves a message by content hash
func (a *ArchiveDB) GetMessage(contentHash string) (*ArchivedMessage, error) {
	query := `
		SELECT id, content_hash, sender_pub_key, sender_key_hash,
		       payload, remote_addr, received_at
		FROM messages WHERE content_hash = ?
	`

	msg, err := scanMessage(a.db.QueryRow(query, contentHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return msg, err
}

// ListMessages returns the most recent messages, newest first. A limit of 0
// returns everything.
func (a *ArchiveDB) ListMessages(limit int) ([]*ArchivedMessage, error) {
	query := `
		SELECT id, content_hash, sender_pub_key, sender_key_hash,
		       payload, remote_addr, received_at
		FROM messages ORDER BY received_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %v", err)
	}
	defer rows.Close()

	var messages []*ArchivedMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ListMessagesFrom returns all messages from one sender key hash, newest
// first
func (a *ArchiveDB) ListMessagesFrom(senderKeyHash string) ([]*ArchivedMessage, error) {
	query := `
		SELECT id, content_hash, sender_pub_key, sender_key_hash,
		       payload, remote_addr, received_at
		FROM messages WHERE sender_key_hash = ?
		ORDER BY received_at DESC, id DESC
	`

	rows, err := a.db.Query(query, senderKeyHash)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %v", err)
	}
	defer rows.Close()

	var messages []*ArchivedMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MessageCount returns the number of archived messages
func (a *ArchiveDB) MessageCount() (int, error) {
	var count int
	err := a.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*ArchivedMessage, error) {
	var msg ArchivedMessage
	err := row.Scan(
		&msg.ID,
		&msg.ContentHash,
		&msg.SenderPubKey,
		&msg.SenderKeyHash,
		&msg.Payload,
		&msg.RemoteAddr,
		&msg.ReceivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
