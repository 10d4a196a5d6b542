package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MinSecretBytes is the smallest secret GenerateSecret accepts (128 bits)
const MinSecretBytes = 16

// GenerateSecret returns n cryptographically random bytes hex encoded
func GenerateSecret(n int) (string, error) {
	if n < MinSecretBytes {
		return "", fmt.Errorf("secret must be at least %d bytes, got %d", MinSecretBytes, n)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecrets generates distinct access and refresh token secrets of n bytes each
func GenerateJWTSecrets(n int) (accessSecret, refreshSecret string, err error) {
	accessSecret, err = GenerateSecret(n)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access secret: %w", err)
	}

	refreshSecret, err = GenerateSecret(n)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh secret: %w", err)
	}

	return accessSecret, refreshSecret, nil
}
