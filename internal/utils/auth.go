package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashAccessKey generates a bcrypt hash of the operator access key.
func HashAccessKey(key string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckAccessKey compares a bcrypt hashed access key with its possible
// plaintext equivalent. Returns true if they match, false otherwise.
func CheckAccessKey(key, hashedKey string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
	return err == nil
}
