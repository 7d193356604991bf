// Package auth issues reconnection access keys and stores only their bcrypt hashes.
package auth

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"chancellery/game"
)

var ErrInvalidCost = errors.New("invalid bcrypt cost")

// base64url without padding, as produced by game.NewToken
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// Keys is a game.Credentials whose verifiers are bcrypt hashes.
type Keys struct {
	cost int
}

var _ game.Credentials = (*Keys)(nil)

func NewKeys(cost int) (*Keys, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, ErrInvalidCost
	}
	return &Keys{cost: cost}, nil
}

func (k *Keys) Issue() (string, []byte, error) {
	key, err := game.NewToken()
	if err != nil {
		return "", nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), k.cost)
	if err != nil {
		return "", nil, err
	}
	return key, hash, nil
}

func (k *Keys) Verify(verifier []byte, key string) bool {
	if len(verifier) == 0 || !keyPattern.MatchString(key) {
		return false
	}
	return bcrypt.CompareHashAndPassword(verifier, []byte(key)) == nil
}
