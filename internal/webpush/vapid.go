package webpush

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrMalformedDER is returned when an ECDSA signature cannot be parsed
// out of its ASN.1 DER envelope.
var ErrMalformedDER = errors.New("webpush: malformed DER signature")

// tokenLifetime is the fixed VAPID JWT validity window.
const tokenLifetime = 12 * time.Hour

type jwtHeader struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

type jwtClaims struct {
	Aud string `json:"aud"`
	Exp int64  `json:"exp"`
	Sub string `json:"sub"`
}

// AuthorizationHeader builds the "vapid t=<jwt>, k=<key>" Authorization
// header value for a delivery to endpoint. The JWT audience is the push
// service origin (scheme://host[:port], no path) and the token expires
// at now+12h.
func (k *VAPIDKeys) AuthorizationHeader(endpoint string, now time.Time) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no origin", endpoint)
	}
	audience := u.Scheme + "://" + u.Host

	headerJSON, err := json.Marshal(jwtHeader{Typ: "JWT", Alg: "ES256"})
	if err != nil {
		return "", fmt.Errorf("marshal JWT header: %w", err)
	}
	claimsJSON, err := json.Marshal(jwtClaims{
		Aud: audience,
		Exp: now.Add(tokenLifetime).Unix(),
		Sub: k.Subject,
	})
	if err != nil {
		return "", fmt.Errorf("marshal JWT claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(claimsJSON)

	digest := sha256.Sum256([]byte(signingInput))
	der, err := ecdsa.SignASN1(rand.Reader, k.signer, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign JWT: %w", err)
	}
	rawSig, err := derSignatureToRaw(der)
	if err != nil {
		return "", err
	}

	token := signingInput + "." + base64.RawURLEncoding.EncodeToString(rawSig)
	return "vapid t=" + token + ", k=" + k.PublicKey, nil
}

// derSignatureToRaw converts an ASN.1 DER ECDSA signature
// (SEQUENCE { INTEGER r, INTEGER s }) to the fixed 64-byte r||s form
// JOSE ES256 requires. DER integers may carry a leading zero sign byte
// or be shorter than 32 bytes; each side is normalized and left-padded
// to exactly 32 bytes. Anything structurally off fails rather than
// truncating.
func derSignatureToRaw(der []byte) ([]byte, error) {
	// A P-256 signature fits in a short-form length in all cases
	// (at most 72 bytes total).
	if len(der) < 8 || der[0] != 0x30 {
		return nil, ErrMalformedDER
	}
	if int(der[1]) != len(der)-2 {
		return nil, ErrMalformedDER
	}

	r, rest, err := readDERInt(der[2:])
	if err != nil {
		return nil, err
	}
	s, rest, err := readDERInt(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrMalformedDER
	}

	out := make([]byte, 64)
	copy(out[32-len(r):32], r)
	copy(out[64-len(s):], s)
	return out, nil
}

// readDERInt consumes one DER INTEGER, returning its value with sign
// padding stripped (at most 32 bytes) and the remaining input.
func readDERInt(b []byte) (value, rest []byte, err error) {
	if len(b) < 2 || b[0] != 0x02 {
		return nil, nil, ErrMalformedDER
	}
	n := int(b[1])
	if n == 0 || len(b) < 2+n {
		return nil, nil, ErrMalformedDER
	}
	value = b[2 : 2+n]
	for len(value) > 1 && value[0] == 0x00 {
		value = value[1:]
	}
	if len(value) > 32 {
		return nil, nil, ErrMalformedDER
	}
	return value, b[2+n:], nil
}
