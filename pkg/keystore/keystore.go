// Package keystore loads the local CDIR identity and the directory of
// trusted peer public keys described by a keys.toml manifest.
package keystore

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
)

var (
	ErrManifestUnreadable   = errors.New("keystore manifest unreadable")
	ErrPrivateKeyUnreadable = errors.New("private key unreadable")
	ErrUnknownPeer          = errors.New("unknown peer alias")
)

// Store holds the loaded identity and peer trust map. It is populated once
// by Load and must be treated as immutable afterwards; concurrent readers
// need no locking under that invariant.
type Store struct {
	privateKey      ed25519.PrivateKey
	ownPublicKeyRaw []byte
	peerKeys        map[string][]byte // alias -> 32-byte raw public key
}

// Load reads the manifest at manifestPath and builds the trust store. When
// the manifest does not exist a fresh identity is generated first in the
// manifest's directory.
//
// Missing or malformed individual peer files are logged and skipped; a
// missing self.pub is logged and leaves the own-key field unset. Only an
// unreadable manifest or private key is fatal.
func Load(manifestPath string) (*Store, error) {
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		log.Printf("%s not found, generating new identity", filepath.Base(manifestPath))
		if _, err := Generate(filepath.Dir(manifestPath)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrManifestUnreadable, err)
		}
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestUnreadable, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestUnreadable, err)
	}
	if m.Local.PrivateKeyPath == "" || m.Peers.PublicKeysDir == "" {
		return nil, fmt.Errorf("%w: missing local.private_key_path or peers.public_keys_dir", ErrManifestUnreadable)
	}

	s := &Store{peerKeys: make(map[string][]byte)}

	if err := s.loadPrivateKey(m.Local.PrivateKeyPath); err != nil {
		return nil, err
	}
	s.loadOwnPublicKey(m.Peers.PublicKeysDir)
	s.loadPeerKeys(m.Peers.PublicKeysDir)

	log.Printf("Key store ready: %d peer key(s) loaded", len(s.peerKeys))
	return s, nil
}

func (s *Store) loadPrivateKey(path string) error {
	der, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrivateKeyUnreadable, err)
	}

	priv, err := crypto.ParsePrivateKey(der)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrivateKeyUnreadable, err)
	}

	s.privateKey = priv
	return nil
}

// loadOwnPublicKey reads keys/self.pub. Absence is not fatal: downstream
// operations that need the own key fail explicitly instead.
func (s *Store) loadOwnPublicKey(dir string) {
	selfPath := filepath.Join(dir, SelfPubFile)

	raw, err := os.ReadFile(selfPath)
	if err != nil {
		log.Printf("⚠️  self.pub not found at %s", selfPath)
		return
	}

	rawKey, err := crypto.ToRaw32(raw)
	if err != nil {
		log.Printf("⚠️  Failed to parse self.pub: %v", err)
		return
	}
	s.ownPublicKeyRaw = rawKey
}

// loadPeerKeys scans dir for *.pub files (excluding self.pub). Each file
// holds either 32 raw bytes or a structured encoding; one malformed file
// never prevents loading the rest.
func (s *Store) loadPeerKeys(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("⚠️  Failed to scan peer keys dir %s: %v", dir, err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, PubKeyExt) || name == SelfPubFile {
			continue
		}

		fileBytes, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("⚠️  Skipped unreadable key file %s: %v", name, err)
			continue
		}

		rawKey, err := crypto.ToRaw32(fileBytes)
		if err != nil {
			log.Printf("⚠️  Skipped invalid key file %s: %v", name, err)
			continue
		}
		if _, err := crypto.PublicKeyFromRaw(rawKey); err != nil {
			log.Printf("⚠️  Skipped invalid key file %s: %v", name, err)
			continue
		}

		alias := strings.TrimSuffix(name, PubKeyExt)
		s.peerKeys[alias] = rawKey
		log.Printf("Loaded peer key: %s", alias)
	}
}

// PrivateKey returns the local Ed25519 private key
func (s *Store) PrivateKey() ed25519.PrivateKey {
	return s.privateKey
}

// OwnPublicKeyRaw returns the local 32-byte raw public key, or nil when
// self.pub was missing at load time
func (s *Store) OwnPublicKeyRaw() []byte {
	return s.ownPublicKeyRaw
}

// Identity bundles the loaded key material for the frame codec
func (s *Store) Identity() *crypto.Identity {
	return &crypto.Identity{
		PrivateKey:   s.privateKey,
		PublicKeyRaw: s.ownPublicKeyRaw,
	}
}

// PeerKey returns the raw public key for a peer alias
func (s *Store) PeerKey(alias string) ([]byte, bool) {
	key, ok := s.peerKeys[alias]
	return key, ok
}

// AllPeerKeys returns a copy of the alias map, sorted iteration is the
// caller's concern
func (s *Store) AllPeerKeys() map[string][]byte {
	out := make(map[string][]byte, len(s.peerKeys))
	for alias, key := range s.peerKeys {
		out[alias] = key
	}
	return out
}

// IsSelf reports whether raw equals the local raw public key
func (s *Store) IsSelf(raw []byte) bool {
	return s.ownPublicKeyRaw != nil && bytes.Equal(raw, s.ownPublicKeyRaw)
}
