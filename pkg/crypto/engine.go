package crypto

import (
	"crypto/rand"
	"errors"
	"strings"
)

var (
	ErrNilData        = errors.New("data must not be nil")
	ErrEmptyKey       = errors.New("key must not be empty")
	ErrInvalidKeySize = errors.New("key size must be positive")
)

// Glyph alphabet used when rendering the identity avatar
var avatarGlyphs = [7]byte{'#', '@', '*', '+', '=', 'X', 'O'}

// XORTransform applies a repeating XOR key-stream to data. XOR is its own
// inverse, so the same call encrypts and decrypts.
func XORTransform(data, key []byte) ([]byte, error) {
	if data == nil {
		return nil, ErrNilData
	}
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	result := make([]byte, len(data))
	for i := range data {
		result[i] = data[i] ^ key[i%len(key)]
	}
	return result, nil
}

// GenerateSecureKey generates size cryptographically random bytes
func GenerateSecureKey(size int) ([]byte, error) {
	if size <= 0 {
		return nil, ErrInvalidKeySize
	}

	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// SymmetricAvatar derives a 5x5 horizontally mirrored glyph grid from a key,
// used as a terminal-friendly visual identity hint. The same key always
// renders the same avatar; the avatar carries no cryptographic guarantee.
func SymmetricAvatar(key []byte) (string, error) {
	if len(key) == 0 {
		return "", ErrEmptyKey
	}

	// Fill the left half (columns 0-2), then mirror onto columns 4-2.
	var grid [5][5]byte
	for row := 0; row < 5; row++ {
		for col := 0; col <= 2; col++ {
			idx := int(key[(row*3+col)%len(key)]) % len(avatarGlyphs)
			grid[row][col] = avatarGlyphs[idx]
			grid[row][4-col] = avatarGlyphs[idx]
		}
	}

	var sb strings.Builder
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			sb.WriteByte(grid[row][col])
			if col < 4 {
				sb.WriteByte(' ')
			}
		}
		if row < 4 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
