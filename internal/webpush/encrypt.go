package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrInvalidClientKey is returned when a subscription's key material is
// malformed. The send for that subscription is aborted; other
// subscriptions are unaffected.
var ErrInvalidClientKey = errors.New("webpush: invalid client key material")

// Encrypt seals plaintext for a subscription per RFC 8291 (aes128gcm
// content encoding). p256dhKey is the client's base64url 65-byte
// uncompressed P-256 public key, authKey its base64url 16-byte auth
// secret.
//
// A fresh ephemeral key pair and salt are generated on every call, so
// ciphertext is never deterministic and key/nonce reuse cannot occur.
//
// The returned record is framed as:
//
//	salt(16) || recordSize(4, big-endian) || keyIDLen(1) || ephemeralPublicKey(65) || ciphertext
//
// where ciphertext covers plaintext plus a 0x02 padding delimiter and
// carries a trailing 16-byte GCM tag. Total length is therefore
// 16+4+1+65+len(plaintext)+1+16.
func Encrypt(plaintext []byte, p256dhKey, authKey string) ([]byte, error) {
	clientPubBytes, err := base64.RawURLEncoding.DecodeString(p256dhKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decode p256dh: %v", ErrInvalidClientKey, err)
	}
	authSecret, err := base64.RawURLEncoding.DecodeString(authKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decode auth secret: %v", ErrInvalidClientKey, err)
	}
	if len(authSecret) != 16 {
		return nil, fmt.Errorf("%w: auth secret must be 16 bytes, got %d", ErrInvalidClientKey, len(authSecret))
	}

	clientPub, err := ecdh.P256().NewPublicKey(clientPubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: import p256dh: %v", ErrInvalidClientKey, err)
	}

	ephemeral, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	ephemeralPub := ephemeral.PublicKey().Bytes()

	sharedSecret, err := ephemeral.ECDH(clientPub)
	if err != nil {
		return nil, fmt.Errorf("%w: ECDH agreement: %v", ErrInvalidClientKey, err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	// RFC 8291 key schedule: auth secret salts the shared secret into
	// the IKM, then the record salt derives the CEK and nonce.
	keyInfo := make([]byte, 0, len(webPushInfo)+65+65)
	keyInfo = append(keyInfo, webPushInfo...)
	keyInfo = append(keyInfo, clientPubBytes...)
	keyInfo = append(keyInfo, ephemeralPub...)

	ikm, err := deriveKey(sharedSecret, authSecret, keyInfo, 32)
	if err != nil {
		return nil, err
	}
	cek, err := deriveKey(ikm, salt, []byte(cekInfo), 16)
	if err != nil {
		return nil, err
	}
	nonce, err := deriveKey(ikm, salt, []byte(nonceInfo), 12)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, fmt.Errorf("init AES: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init GCM: %w", err)
	}

	// Single-record framing: one 0x02 delimiter, no extra padding.
	record := make([]byte, 0, len(plaintext)+1)
	record = append(record, plaintext...)
	record = append(record, 0x02)

	ciphertext := gcm.Seal(nil, nonce, record, nil)

	out := make([]byte, 0, 16+4+1+65+len(ciphertext))
	out = append(out, salt...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(record)+16))
	out = append(out, byte(len(ephemeralPub)))
	out = append(out, ephemeralPub...)
	out = append(out, ciphertext...)
	return out, nil
}

const (
	webPushInfo = "WebPush: info\x00"
	cekInfo     = "Content-Encoding: aes128gcm\x00"
	nonceInfo   = "Content-Encoding: nonce\x00"
)

// deriveKey is HKDF-SHA-256 (RFC 5869). Every call site here asks for at
// most 32 bytes, one expand block.
func deriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}
