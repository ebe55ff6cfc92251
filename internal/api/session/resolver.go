package session

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/repositories"
	"golang.org/x/oauth2"
)

// Header pair accepted as an alternative to the session cookie.
const (
	HeaderUID     = "uid"
	HeaderAuthKey = "authKey"
)

type Resolver struct {
	sessions *Manager
	users    repositories.UserStore

	// CredentialsValid decides whether the OAuth credentials kept in a
	// session still count. Defaults to the token's own expiry check.
	CredentialsValid func(*oauth2.Token) bool
}

func NewResolver(sessions *Manager, users repositories.UserStore) *Resolver {
	return &Resolver{
		sessions:         sessions,
		users:            users,
		CredentialsValid: func(tok *oauth2.Token) bool { return tok.Valid() },
	}
}

// UID returns the acting user id. A session only counts while its
// credentials are valid; otherwise the uid/authKey headers are checked
// against the stored key. No identity is reported as ok == false.
func (res *Resolver) UID(r *http.Request) (uuid.UUID, bool) {
	if claims, err := res.sessions.Read(r); err == nil && claims.UserID != "" && claims.Credentials != "" {
		uid, err := uuid.Parse(claims.UserID)
		if err == nil {
			if tok, err := DeserializeCredentials(claims.Credentials); err == nil && res.CredentialsValid(tok) {
				return uid, true
			}
		}
	}

	rawUID := strings.TrimSpace(r.Header.Get(HeaderUID))
	authKey := r.Header.Get(HeaderAuthKey)
	if rawUID == "" || authKey == "" {
		return uuid.Nil, false
	}

	uid, err := uuid.Parse(rawUID)
	if err != nil {
		return uuid.Nil, false
	}
	user, err := res.users.GetByID(r.Context(), uid)
	if err != nil || user.AuthKey == "" {
		return uuid.Nil, false
	}
	if subtle.ConstantTimeCompare([]byte(user.AuthKey), []byte(authKey)) != 1 {
		return uuid.Nil, false
	}
	return uid, true
}

// User resolves UID and loads the record.
func (res *Resolver) User(r *http.Request) (*models.User, bool) {
	uid, ok := res.UID(r)
	if !ok {
		return nil, false
	}
	user, err := res.users.GetByID(r.Context(), uid)
	if err != nil {
		return nil, false
	}
	return user, true
}
