package crypto

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"
)

func TestGenerateIdentity(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity() error = %v", err)
	}

	if len(id.PrivateKey) != ed25519.PrivateKeySize {
		t.Errorf("GenerateIdentity() private key length = %d, want %d", len(id.PrivateKey), ed25519.PrivateKeySize)
	}
	if len(id.PublicKeyRaw) != RawPublicKeySize {
		t.Errorf("GenerateIdentity() raw public key length = %d, want %d", len(id.PublicKeyRaw), RawPublicKeySize)
	}

	// Raw public key must match the private key's public half
	pub := id.PrivateKey.Public().(ed25519.PublicKey)
	if !bytes.Equal(id.PublicKeyRaw, pub) {
		t.Error("GenerateIdentity() raw public key does not match private key")
	}
}

func TestToSPKIToRaw32RoundTrip(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity() error = %v", err)
	}

	spki, err := ToSPKI(id.PublicKeyRaw)
	if err != nil {
		t.Fatalf("ToSPKI() error = %v", err)
	}
	if len(spki) != SPKISize {
		t.Errorf("ToSPKI() length = %d, want %d", len(spki), SPKISize)
	}
	if !bytes.Equal(spki[:12], []byte{0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70, 0x03, 0x21, 0x00}) {
		t.Errorf("ToSPKI() prefix = %x", spki[:12])
	}

	raw, err := ToRaw32(spki)
	if err != nil {
		t.Fatalf("ToRaw32() error = %v", err)
	}
	if !bytes.Equal(raw, id.PublicKeyRaw) {
		t.Error("ToRaw32(ToSPKI(raw)) != raw")
	}
}

func TestToRaw32Passthrough(t *testing.T) {
	raw := bytes.Repeat([]byte{0x11}, 32)

	out, err := ToRaw32(raw)
	if err != nil {
		t.Fatalf("ToRaw32() error = %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Error("ToRaw32() altered a 32-byte input")
	}
}

func TestToRaw32Invalid(t *testing.T) {
	tests := []struct {
		name    string
		encoded []byte
	}{
		{name: "empty", encoded: []byte{}},
		{name: "too short", encoded: make([]byte, 16)},
		{name: "between raw and spki", encoded: make([]byte, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToRaw32(tt.encoded); !errors.Is(err, ErrInvalidKeyEncoding) {
				t.Errorf("ToRaw32() error = %v, want %v", err, ErrInvalidKeyEncoding)
			}
		})
	}
}

func TestToSPKIInvalid(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := ToSPKI(make([]byte, size)); !errors.Is(err, ErrInvalidKeyEncoding) {
			t.Errorf("ToSPKI(%d bytes) error = %v, want %v", size, err, ErrInvalidKeyEncoding)
		}
	}
}

func TestPublicKeyFromRaw(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity() error = %v", err)
	}

	pub, err := PublicKeyFromRaw(id.PublicKeyRaw)
	if err != nil {
		t.Fatalf("PublicKeyFromRaw() error = %v", err)
	}

	// The reconstructed key must verify signatures made by the identity
	msg := []byte("reconstruction check")
	sig := ed25519.Sign(id.PrivateKey, msg)
	if !ed25519.Verify(pub, msg, sig) {
		t.Error("PublicKeyFromRaw() key does not verify own signature")
	}
}

func TestMarshalParsePrivateKey(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity() error = %v", err)
	}

	der, err := MarshalPrivateKey(id.PrivateKey)
	if err != nil {
		t.Fatalf("MarshalPrivateKey() error = %v", err)
	}

	parsed, err := ParsePrivateKey(der)
	if err != nil {
		t.Fatalf("ParsePrivateKey() error = %v", err)
	}
	if !parsed.Equal(id.PrivateKey) {
		t.Error("ParsePrivateKey() key mismatch")
	}
}

func TestParsePrivateKeyInvalid(t *testing.T) {
	if _, err := ParsePrivateKey([]byte("not a DER key")); !errors.Is(err, ErrInvalidKeyEncoding) {
		t.Errorf("ParsePrivateKey() error = %v, want %v", err, ErrInvalidKeyEncoding)
	}
}

func TestSHA256Hex(t *testing.T) {
	// SHA-256 of the empty input is a well-known constant
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := SHA256Hex([]byte{}); got != want {
		t.Errorf("SHA256Hex(empty) = %s, want %s", got, want)
	}
}

func TestContentHash(t *testing.T) {
	a, err := ContentHashHex([]byte("one"))
	if err != nil {
		t.Fatalf("ContentHashHex() error = %v", err)
	}
	b, err := ContentHashHex([]byte("two"))
	if err != nil {
		t.Fatalf("ContentHashHex() error = %v", err)
	}

	if a == b {
		t.Error("ContentHashHex() collided for distinct inputs")
	}
	if len(a) != 64 {
		t.Errorf("ContentHashHex() length = %d, want 64", len(a))
	}
}
