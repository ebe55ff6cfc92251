// Package session stores the signed-in user in a signed cookie and resolves
// the acting identity of a request, either from that cookie or from the
// uid/authKey header pair.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const CookieName = "folio_session"

var ErrNoSession = errors.New("no session")

// Claims is what the session cookie carries: the user id and the OAuth
// credentials obtained at login.
type Claims struct {
	UserID      string `json:"uid"`
	Credentials string `json:"credentials"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

func NewManager(secret string, maxAge time.Duration, secure bool) *Manager {
	return &Manager{secret: []byte(secret), maxAge: maxAge, secure: secure}
}

// SerializeCredentials encodes an OAuth token for storage in the session.
func SerializeCredentials(tok *oauth2.Token) (string, error) {
	b, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("failed to serialize credentials: %w", err)
	}
	return string(b), nil
}

func DeserializeCredentials(s string) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(s), &tok); err != nil {
		return nil, fmt.Errorf("failed to deserialize credentials: %w", err)
	}
	return &tok, nil
}

// Issue signs a session for uid and sets it on the response.
func (m *Manager) Issue(w http.ResponseWriter, uid uuid.UUID, tok *oauth2.Token) error {
	creds, err := SerializeCredentials(tok)
	if err != nil {
		return err
	}

	now := time.Now()
	claims := &Claims{
		UserID:      uid.String(),
		Credentials: creds,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the verified claims of the request's session cookie.
func (m *Manager) Read(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}
	return claims, nil
}

func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
