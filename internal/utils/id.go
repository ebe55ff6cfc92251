package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureToken returns length random bytes encoded as unpadded
// base64url, suitable for cookies and query strings.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
