package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/folio/internal/api/session"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIdentify(t *testing.T) {
	store := repositories.NewMemoryStore()
	user := &models.User{Email: "ada@example.com", AuthKey: "key"}
	require.NoError(t, store.Users().Save(context.Background(), user))

	resolver := session.NewResolver(session.NewManager("secret", time.Hour, false), store.Users())

	var seen uuid.UUID
	h := Identify(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/doc/list", nil)
	req.Header.Set(session.HeaderUID, user.ID.String())
	req.Header.Set(session.HeaderAuthKey, "key")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, user.ID, seen)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/doc/list", nil))
	assert.Equal(t, uuid.Nil, seen)
}

func TestLogger_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
