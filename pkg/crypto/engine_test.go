package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestXORTransformRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		key  []byte
	}{
		{
			name: "key shorter than data",
			data: []byte("the quick brown fox jumps over the lazy dog"),
			key:  []byte{0x01, 0x02, 0x03},
		},
		{
			name: "key longer than data",
			data: []byte("hi"),
			key:  []byte("a much longer repeating key"),
		},
		{
			name: "single byte key",
			data: []byte{0x00, 0xFF, 0xAA, 0x55},
			key:  []byte{0x5A},
		},
		{
			name: "empty data",
			data: []byte{},
			key:  []byte{0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := XORTransform(tt.data, tt.key)
			if err != nil {
				t.Fatalf("XORTransform() error = %v", err)
			}

			if len(encrypted) != len(tt.data) {
				t.Errorf("XORTransform() length = %d, want %d", len(encrypted), len(tt.data))
			}

			// Same call decrypts
			decrypted, err := XORTransform(encrypted, tt.key)
			if err != nil {
				t.Fatalf("XORTransform() decrypt error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.data) {
				t.Errorf("XORTransform() round trip = %v, want %v", decrypted, tt.data)
			}
		})
	}
}

func TestXORTransformKeyStream(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30, 0x40}
	key := []byte{0x0F, 0xF0}

	out, err := XORTransform(data, key)
	if err != nil {
		t.Fatalf("XORTransform() error = %v", err)
	}

	want := []byte{0x1F, 0xD0, 0x3F, 0xB0}
	if !bytes.Equal(out, want) {
		t.Errorf("XORTransform() = %x, want %x", out, want)
	}
}

func TestXORTransformInvalid(t *testing.T) {
	if _, err := XORTransform(nil, []byte{0x01}); err != ErrNilData {
		t.Errorf("XORTransform(nil, key) error = %v, want %v", err, ErrNilData)
	}

	if _, err := XORTransform([]byte("data"), nil); err != ErrEmptyKey {
		t.Errorf("XORTransform(data, nil) error = %v, want %v", err, ErrEmptyKey)
	}

	if _, err := XORTransform([]byte("data"), []byte{}); err != ErrEmptyKey {
		t.Errorf("XORTransform(data, empty) error = %v, want %v", err, ErrEmptyKey)
	}
}

func TestGenerateSecureKey(t *testing.T) {
	for _, size := range []int{1, 16, 32, 256} {
		key, err := GenerateSecureKey(size)
		if err != nil {
			t.Fatalf("GenerateSecureKey(%d) error = %v", size, err)
		}
		if len(key) != size {
			t.Errorf("GenerateSecureKey(%d) length = %d", size, len(key))
		}
	}

	// Two keys must differ
	a, _ := GenerateSecureKey(32)
	b, _ := GenerateSecureKey(32)
	if bytes.Equal(a, b) {
		t.Error("GenerateSecureKey() returned identical keys")
	}
}

func TestGenerateSecureKeyInvalid(t *testing.T) {
	for _, size := range []int{0, -1, -32} {
		if _, err := GenerateSecureKey(size); err != ErrInvalidKeySize {
			t.Errorf("GenerateSecureKey(%d) error = %v, want %v", size, err, ErrInvalidKeySize)
		}
	}
}

func TestSymmetricAvatar(t *testing.T) {
	key := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

	avatar, err := SymmetricAvatar(key)
	if err != nil {
		t.Fatalf("SymmetricAvatar() error = %v", err)
	}

	rows := strings.Split(avatar, "\n")
	if len(rows) != 5 {
		t.Fatalf("SymmetricAvatar() rows = %d, want 5", len(rows))
	}

	for i, row := range rows {
		cells := strings.Split(row, " ")
		if len(cells) != 5 {
			t.Fatalf("SymmetricAvatar() row %d cells = %d, want 5", i, len(cells))
		}

		// Horizontal mirror symmetry
		if cells[0] != cells[4] || cells[1] != cells[3] {
			t.Errorf("SymmetricAvatar() row %d not mirrored: %q", i, row)
		}
	}

	// Deterministic
	again, err := SymmetricAvatar(key)
	if err != nil {
		t.Fatalf("SymmetricAvatar() error = %v", err)
	}
	if avatar != again {
		t.Error("SymmetricAvatar() not deterministic")
	}
}

func TestSymmetricAvatarKnownPattern(t *testing.T) {
	// A single zero byte maps every cell to glyph index 0
	avatar, err := SymmetricAvatar([]byte{0x00})
	if err != nil {
		t.Fatalf("SymmetricAvatar() error = %v", err)
	}

	want := "# # # # #\n# # # # #\n# # # # #\n# # # # #\n# # # # #"
	if avatar != want {
		t.Errorf("SymmetricAvatar() = %q, want %q", avatar, want)
	}

	// Byte values above 0x7F are taken as unsigned: 0x80 = 128, 128 % 7 = 2 -> '*'
	avatar, err = SymmetricAvatar([]byte{0x80})
	if err != nil {
		t.Fatalf("SymmetricAvatar() error = %v", err)
	}
	if !strings.HasPrefix(avatar, "* * * * *") {
		t.Errorf("SymmetricAvatar(0x80) = %q, want rows of '*'", avatar)
	}
}

func TestSymmetricAvatarDistinctKeys(t *testing.T) {
	a, err := SymmetricAvatar([]byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("SymmetricAvatar() error = %v", err)
	}
	b, err := SymmetricAvatar([]byte{6, 5, 4, 3, 2})
	if err != nil {
		t.Fatalf("SymmetricAvatar() error = %v", err)
	}
	if a == b {
		t.Error("SymmetricAvatar() rendered identical avatars for different keys")
	}
}

func TestSymmetricAvatarInvalid(t *testing.T) {
	if _, err := SymmetricAvatar(nil); err != ErrEmptyKey {
		t.Errorf("SymmetricAvatar(nil) error = %v, want %v", err, ErrEmptyKey)
	}
	if _, err := SymmetricAvatar([]byte{}); err != ErrEmptyKey {
		t.Errorf("SymmetricAvatar(empty) error = %v, want %v", err, ErrEmptyKey)
	}
}
