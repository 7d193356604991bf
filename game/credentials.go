package game

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const tokenBytes = 32

// Credentials issues reconnection keys and checks them against a stored verifier.
type Credentials interface {
	Issue() (key string, verifier []byte, err error)
	Verify(verifier []byte, key string) bool
}

// NewToken returns a random URL-safe access key.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// plainTokens keeps the key itself as verifier.
type plainTokens struct{}

func (plainTokens) Issue() (string, []byte, error) {
	key, err := NewToken()
	if err != nil {
		return "", nil, err
	}
	return key, []byte(key), nil
}

func (plainTokens) Verify(verifier []byte, key string) bool {
	return len(verifier) > 0 && subtle.ConstantTimeCompare(verifier, []byte(key)) == 1
}
