package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"errors"
	"fmt"
)

var (
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")
)

const (
	// RawPublicKeySize is the native Ed25519 public key length
	RawPublicKeySize = 32

	// SPKISize is the SubjectPublicKeyInfo length (12-byte prefix + 32 raw)
	SPKISize = 44
)

// Fixed DER prefix of an Ed25519 SubjectPublicKeyInfo encoding
var ed25519SPKIPrefix = []byte{
	0x30, 0x2a,
	0x30, 0x05,
	0x06, 0x03,
	0x2b, 0x65, 0x70,
	0x03, 0x21, 0x00,
}

// Identity is the local signing keypair. Immutable after load.
type Identity struct {
	PrivateKey   ed25519.PrivateKey
	PublicKeyRaw []byte // 32 bytes, may be nil if self.pub was missing
}

// GenerateIdentity creates a fresh Ed25519 identity in memory
func GenerateIdentity() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &Identity{
		PrivateKey:   priv,
		PublicKeyRaw: []byte(pub),
	}, nil
}

// ToRaw32 converts a public key byte sequence to its 32-byte raw form.
// A 32-byte input is returned as-is; a structured encoding of at least 44
// bytes yields its trailing 32 bytes.
func ToRaw32(encoded []byte) ([]byte, error) {
	if len(encoded) == RawPublicKeySize {
		return encoded, nil
	}
	if len(encoded) < SPKISize {
		return nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidKeyEncoding, len(encoded))
	}

	raw := make([]byte, RawPublicKeySize)
	copy(raw, encoded[len(encoded)-RawPublicKeySize:])
	return raw, nil
}

// ToSPKI prepends the fixed Ed25519 SubjectPublicKeyInfo prefix to 32 raw
// key bytes, producing an encoding crypto/x509 can parse back into a key
func ToSPKI(raw32 []byte) ([]byte, error) {
	if len(raw32) != RawPublicKeySize {
		return nil, fmt.Errorf("%w: expected 32 raw bytes, got %d", ErrInvalidKeyEncoding, len(raw32))
	}

	spki := make([]byte, 0, SPKISize)
	spki = append(spki, ed25519SPKIPrefix...)
	spki = append(spki, raw32...)
	return spki, nil
}

// PublicKeyFromRaw reconstructs an Ed25519 public key object from its 32
// raw bytes via the structured encoding
func PublicKeyFromRaw(raw32 []byte) (ed25519.PublicKey, error) {
	spki, err := ToSPKI(raw32)
	if err != nil {
		return nil, err
	}

	parsed, err := x509.ParsePKIXPublicKey(spki)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	pub, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidKeyEncoding
	}
	return pub, nil
}

// MarshalPrivateKey encodes a private key as PKCS#8 DER for disk storage
func MarshalPrivateKey(priv ed25519.PrivateKey) ([]byte, error) {
	return x509.MarshalPKCS8PrivateKey(priv)
}

// ParsePrivateKey decodes a PKCS#8 DER private key loaded from disk
func ParsePrivateKey(der []byte) (ed25519.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, ErrInvalidKeyEncoding
	}
	return priv, nil
}
