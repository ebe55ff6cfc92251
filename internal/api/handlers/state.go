package handlers

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rohits-web03/folio/internal/utils"
)

const (
	stateCookieName = "folio_oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

// GenerateState creates a state string carrying data next to a random
// nonce. The nonce is returned separately so it can be pinned in a cookie.
func GenerateState(data map[string]string) (state, nonce string, err error) {
	nonce, err = utils.GenerateSecureToken(16)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	payloadBytes, err := json.Marshal(data)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal state data: %w", err)
	}
	payloadPart := base64.RawURLEncoding.EncodeToString(payloadBytes)

	return fmt.Sprintf("%s.%s", nonce, payloadPart), nonce, nil
}

// DecodeState splits a state string back into its nonce and metadata.
func DecodeState(state string) (string, map[string]string, error) {
	parts := strings.Split(state, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", nil, fmt.Errorf("invalid state format")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode state payload: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(payloadBytes, &data); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal state JSON: %w", err)
	}

	return parts[0], data, nil
}

func setStateCookie(w http.ResponseWriter, nonce string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    nonce,
		Path:     "/user/auth",
		MaxAge:   int(stateCookieTTL.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearStateCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/user/auth",
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// verifyStateCookie reports whether the request carries the nonce it was
// handed when the flow started.
func verifyStateCookie(r *http.Request, nonce string) bool {
	c, err := r.Cookie(stateCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(nonce)) == 1
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}
