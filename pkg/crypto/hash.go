package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// SHA256 computes the SHA-256 digest of data. The CDIR wire format derives
// its session key wrap from this hash.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// SHA256Hex returns the lowercase hex-encoded SHA-256 digest of data
func SHA256Hex(data []byte) string {
	return hex.EncodeToString(SHA256(data))
}

// ContentHash generates a BLAKE2b-256 hash, used for content addressing in
// the message archive (never on the wire)
func ContentHash(data []byte) ([]byte, error) {
	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}

	hash.Write(data)
	return hash.Sum(nil), nil
}

// ContentHashHex generates a BLAKE2b-256 hash and returns it hex-encoded
func ContentHashHex(data []byte) (string, error) {
	hash, err := ContentHash(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hash), nil
}
