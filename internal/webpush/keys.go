package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidKey is returned when VAPID key material cannot be parsed.
// This is a configuration error: no send can succeed without valid keys.
var ErrInvalidKey = errors.New("webpush: invalid VAPID key material")

// VAPIDKeys is the process-wide signing identity, loaded once at startup
// and safe for concurrent use. PublicKey keeps the original base64url
// encoding because it is sent verbatim as the k= header parameter.
type VAPIDKeys struct {
	PublicKey string
	Subject   string
	signer    *ecdsa.PrivateKey
}

// LoadVAPIDKeys parses base64url-encoded raw P-256 key material: a
// 65-byte uncompressed public point and a 32-byte private scalar.
func LoadVAPIDKeys(publicKey, privateKey, subject string) (*VAPIDKeys, error) {
	pubBytes, err := base64.RawURLEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decode public key: %v", ErrInvalidKey, err)
	}
	if len(pubBytes) != 65 || pubBytes[0] != 0x04 {
		return nil, fmt.Errorf("%w: public key must be a 65-byte uncompressed point", ErrInvalidKey)
	}

	privBytes, err := base64.RawURLEncoding.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: decode private key: %v", ErrInvalidKey, err)
	}
	if len(privBytes) != 32 {
		return nil, fmt.Errorf("%w: private key must be a 32-byte scalar", ErrInvalidKey)
	}

	x, y := elliptic.Unmarshal(elliptic.P256(), pubBytes)
	if x == nil {
		return nil, fmt.Errorf("%w: public key is not on the curve", ErrInvalidKey)
	}

	signer := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y},
		D:         new(big.Int).SetBytes(privBytes),
	}

	return &VAPIDKeys{
		PublicKey: publicKey,
		Subject:   subject,
		signer:    signer,
	}, nil
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID and
// returns both halves base64url-encoded.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)

	privBytes := make([]byte, 32)
	key.D.FillBytes(privBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(privBytes)

	return publicKey, privateKey, nil
}
