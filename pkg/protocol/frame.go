// Package protocol implements the CDIR v1 frame codec.
//
// Wire format (all integers big-endian):
//
//	Offset  Size  Field
//	     0     4  Magic            0x43 0x44 0x49 0x52 ("CDIR")
//	     4     1  Version          0x01
//	     5    64  Signature        Ed25519 sig over payload plaintext
//	    69    32  Sender PubKey    Raw 32-byte Ed25519 public key
//	   101   256  Sealed Sess. Key XOR-wrapped 32-byte session key, zero-padded
//	   357     4  Payload Length   Unsigned 32-bit big-endian int
//	   361   var  XORed Payload    Payload XOR'd with repeating session key
//
// The session key is wrapped by XOR-ing it against SHA-256 of the
// recipient's raw public key. The recipient's public key is, by definition,
// not secret, so the wrapping authenticates nothing and hides nothing from
// an observer who knows it; the Ed25519 signature over the plaintext is the
// only real guarantee the frame carries. This weakness is part of the
// protocol, not of this implementation.
package protocol

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
)

// Encode builds one CDIR frame carrying payload and writes it to w.
//
// The plaintext payload is signed with the identity's private key, then
// encrypted with a fresh random 32-byte session key; the session key is
// sealed against the recipient's raw public key. I/O failures propagate to
// the caller; nothing is retried.
func Encode(payload []byte, id *crypto.Identity, recipientRaw []byte, w io.Writer) error {
	if id == nil || len(id.PrivateKey) != ed25519.PrivateKeySize {
		return ErrMissingPrivKey
	}
	if len(id.PublicKeyRaw) != crypto.RawPublicKeySize {
		return ErrMissingLocalKey
	}
	if len(recipientRaw) != crypto.RawPublicKeySize {
		return fmt.Errorf("%w: recipient key length %d", crypto.ErrInvalidKeyEncoding, len(recipientRaw))
	}
	if payload == nil {
		payload = []byte{}
	}

	sessionKey, err := crypto.GenerateSecureKey(SessionKeySize)
	if err != nil {
		return err
	}

	ciphertext, err := crypto.XORTransform(payload, sessionKey)
	if err != nil {
		return err
	}

	// Sign the plaintext, not the ciphertext, so the recipient can verify
	// authorship independent of the weak session-key wrapping.
	signature := ed25519.Sign(id.PrivateKey, payload)

	// Seal the session key against SHA-256 of the recipient's raw key.
	wrapKey := crypto.SHA256(recipientRaw)
	sealed, err := crypto.XORTransform(sessionKey, wrapKey)
	if err != nil {
		return err
	}

	header := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(header[offMagic:], ProtocolMagic)
	header[offVersion] = ProtocolVersion
	copy(header[offSignature:], signature)
	copy(header[offSenderKey:], id.PublicKeyRaw)
	copy(header[offSealedKey:], sealed) // bytes 32-255 of the field stay zero
	binary.BigEndian.PutUint32(header[offPayLen:], uint32(len(ciphertext)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(ciphertext); err != nil {
		return err
	}

	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Decode reads one CDIR frame from r, verifies its Ed25519 signature and
// returns the decrypted message. The frame is rejected before any
// cryptographic work when magic or version mismatch, and rejected without
// exposing the candidate plaintext when the signature does not verify.
func Decode(r io.Reader, id *crypto.Identity) (*Message, error) {
	// Magic is validated before the version byte is read, and the version
	// before anything else.
	var word [4]byte
	if err := readFull(r, word[:]); err != nil {
		return nil, err
	}
	magic := binary.BigEndian.Uint32(word[:])
	if magic != ProtocolMagic {
		return nil, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, magic)
	}

	var version [1]byte
	if err := readFull(r, version[:]); err != nil {
		return nil, err
	}
	if version[0] != ProtocolVersion {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidVersion, version[0])
	}

	signature := make([]byte, SignatureSize)
	if err := readFull(r, signature); err != nil {
		return nil, err
	}

	senderRaw := make([]byte, SenderKeySize)
	if err := readFull(r, senderRaw); err != nil {
		return nil, err
	}

	sealed := make([]byte, SealedKeyFieldSize)
	if err := readFull(r, sealed); err != nil {
		return nil, err
	}

	if err := readFull(r, word[:]); err != nil {
		return nil, err
	}
	payloadLen := binary.BigEndian.Uint32(word[:])

	ciphertext := make([]byte, payloadLen)
	if err := readFull(r, ciphertext); err != nil {
		return nil, err
	}

	// Unseal the session key with SHA-256 of our own raw public key.
	if id == nil || len(id.PublicKeyRaw) != crypto.RawPublicKeySize {
		return nil, ErrMissingLocalKey
	}
	wrapKey := crypto.SHA256(id.PublicKeyRaw)
	sessionKey, err := crypto.XORTransform(sealed[:SessionKeySize], wrapKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.XORTransform(ciphertext, sessionKey)
	if err != nil {
		return nil, err
	}

	senderPub, err := crypto.PublicKeyFromRaw(senderRaw)
	if err != nil {
		return nil, err
	}

	if !ed25519.Verify(senderPub, plaintext, signature) {
		return nil, ErrSignatureInvalid
	}

	return &Message{
		SenderPubKeyRaw: senderRaw,
		Payload:         plaintext,
		SenderKeyHash:   crypto.SHA256Hex(senderRaw),
	}, nil
}

// readFull reads exactly len(buf) bytes, mapping short reads to
// ErrTruncatedFrame
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncatedFrame, err)
	}
	return nil
}
