package keystore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
)

// On-disk layout under the key-store root:
//
//	<root>/identity.key  - PKCS#8 DER private key (chmod 600)
//	<root>/keys/self.pub - 32-byte raw Ed25519 public key
//	<root>/keys.toml     - path manifest consumed by Load
const (
	PrivateKeyFile = "identity.key"
	KeysDirName    = "keys"
	SelfPubFile    = "self.pub"
	ManifestFile   = "keys.toml"

	// PubKeyExt is the peer public-key file extension scanned by Load
	PubKeyExt = ".pub"
)

// Manifest records where the key material lives
type Manifest struct {
	Local struct {
		PrivateKeyPath string `toml:"private_key_path"`
	} `toml:"local"`
	Peers struct {
		PublicKeysDir string `toml:"public_keys_dir"`
	} `toml:"peers"`
}

// Generate creates a fresh Ed25519 identity under root, persists the private
// key with owner-only permissions, writes the raw public key to
// keys/self.pub and records both locations in keys.toml. It returns the
// in-memory identity.
func Generate(root string) (*crypto.Identity, error) {
	keysDir := filepath.Join(root, KeysDirName)
	if err := os.MkdirAll(keysDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keys directory: %w", err)
	}

	id, err := crypto.GenerateIdentity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity: %w", err)
	}

	privPath := filepath.Join(root, PrivateKeyFile)
	der, err := crypto.MarshalPrivateKey(id.PrivateKey)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(privPath, der, 0600); err != nil {
		return nil, fmt.Errorf("failed to write private key: %w", err)
	}
	// Best effort on platforms that ignore WriteFile permissions
	if err := os.Chmod(privPath, 0600); err != nil {
		log.Printf("⚠️  Failed to restrict permissions on %s: %v", privPath, err)
	}

	selfPath := filepath.Join(keysDir, SelfPubFile)
	if err := os.WriteFile(selfPath, id.PublicKeyRaw, 0644); err != nil {
		return nil, fmt.Errorf("failed to write self.pub: %w", err)
	}

	if err := writeManifest(root, privPath, keysDir); err != nil {
		return nil, err
	}

	log.Printf("Ed25519 identity generated")
	log.Printf("  Private: %s", privPath)
	log.Printf("  Public:  %s", selfPath)

	return id, nil
}

func writeManifest(root, privPath, keysDir string) error {
	var m Manifest
	m.Local.PrivateKeyPath = privPath
	m.Peers.PublicKeysDir = keysDir

	data, err := toml.Marshal(m)
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(root, ManifestFile)
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	log.Printf("  Manifest: %s", manifestPath)
	return nil
}
