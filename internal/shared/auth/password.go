package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// defaultHashCost is the bcrypt cost used for new hashes.
const defaultHashCost = 12

// ErrPasswordTooLong reports input beyond 72 bytes; bcrypt only reads the
// first 72 bytes, so longer input is rejected instead of silently truncated.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes a plain text password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, defaultHashCost)
}

// HashPasswordWithCost hashes a plain text password at an explicit bcrypt
// cost.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a plain text password matches the hashed password
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
