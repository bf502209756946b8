package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Session token format: jt_<secret>
// Example: jt_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const tokenSecretLen = 64 // hex encoded 32 bytes

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	tokenFormatRegex      = regexp.MustCompile(`^jt_([a-f0-9]{64})$`)
)

// GenerateSessionToken creates a new opaque session token.
// The token carries no claims; the issuer keeps the subject mapping.
func GenerateSessionToken() (string, error) {
	secret := make([]byte, tokenSecretLen/2)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return "jt_" + hex.EncodeToString(secret), nil
}

// ValidateTokenFormat checks that a token is shaped like a session token
// before any lookup happens.
func ValidateTokenFormat(token string) error {
	if !tokenFormatRegex.MatchString(token) {
		return ErrInvalidTokenFormat
	}
	return nil
}
