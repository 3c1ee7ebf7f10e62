package protocol

import "errors"

// Protocol constants
const (
	// Magic number for CDIR frames ("CDIR")
	ProtocolMagic = 0x43444952

	// Protocol version
	ProtocolVersion = 0x01

	// Fixed field sizes
	SignatureSize      = 64
	SenderKeySize      = 32
	SealedKeyFieldSize = 256
	SessionKeySize     = 32

	// Header size: magic + version + signature + sender key + sealed key + length
	HeaderSize = 4 + 1 + SignatureSize + SenderKeySize + SealedKeyFieldSize + 4 // 361
)

// Header field offsets
const (
	offMagic     = 0
	offVersion   = 4
	offSignature = 5
	offSenderKey = 69
	offSealedKey = 101
	offPayLen    = 357
)

var (
	// Framing errors: the frame is rejected before any cryptographic work
	ErrInvalidMagic   = errors.New("invalid CDIR magic")
	ErrInvalidVersion = errors.New("unsupported CDIR version")
	ErrTruncatedFrame = errors.New("truncated CDIR frame")

	// Crypto errors
	ErrSignatureInvalid = errors.New("CDIR signature verification failed")
	ErrMissingLocalKey  = errors.New("local raw public key not loaded")
	ErrMissingPrivKey   = errors.New("private signing key not loaded")
)

// Message is a decoded, signature-verified CDIR frame. Instances are
// constructed only by a successful Decode.
type Message struct {
	// SenderPubKeyRaw is the sender's 32-byte raw Ed25519 public key
	SenderPubKeyRaw []byte

	// Payload is the decrypted plaintext
	Payload []byte

	// SenderKeyHash is the lowercase hex SHA-256 of SenderPubKeyRaw, used
	// as a human-readable identity label in stored message headers
	SenderKeyHash string
}
