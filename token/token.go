// Package token implements the HS256 header.payload.signature token format
// used for fallback-mode sessions: base64url segments, HMAC-SHA256 over
// "header.payload", sub/email/sid/iat/exp claims.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrExpiredToken   = errors.New("token expired")
)

type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Sid   string `json:"sid,omitempty"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

var encodedHeader = b64url([]byte(`{"alg":"HS256","typ":"JWT"}`))

func b64url(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Sign stamps iat/exp onto the claims and returns the signed token.
func Sign(claims *Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now().Unix()
	claims.Iat = now
	claims.Exp = now + int64(ttl.Seconds())
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	data := encodedHeader + "." + b64url(payload)
	return data + "." + b64url(signData(data, secret)), nil
}

func signData(data, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// Verify checks the signature and expiry and returns the claims.
func Verify(raw, secret string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}
	data := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}
	if !hmac.Equal(sig, signData(data, secret)) {
		return nil, ErrBadSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrMalformedToken
	}
	if claims.Exp != 0 && time.Now().Unix() > claims.Exp {
		return nil, ErrExpiredToken
	}
	return &claims, nil
}
