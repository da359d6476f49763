package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var ErrInvalidToken = errors.New("invalid api token")

// HashToken returns the bcrypt hash to store as API_KEY_HASH.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyToken checks a presented API token against the stored hash.
func VerifyToken(hash, token string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
		return ErrInvalidToken
	}
	return nil
}
