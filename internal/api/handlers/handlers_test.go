package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rohits-web03/folio/internal/api/middleware"
	"github.com/rohits-web03/folio/internal/api/services"
	"github.com/rohits-web03/folio/internal/api/session"
	"github.com/rohits-web03/folio/internal/models"
	"github.com/rohits-web03/folio/internal/query"
	"github.com/rohits-web03/folio/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	profile     *services.GoogleUser
	exchangeErr error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code, TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}, nil
}

func (p *fakeProvider) Profile(ctx context.Context, tok *oauth2.Token) (*services.GoogleUser, error) {
	return p.profile, nil
}

type testServer struct {
	store    *repositories.MemoryStore
	provider *fakeProvider
	sessions *session.Manager
	handler  http.Handler
	owner    *models.User
	admin    *models.User
	other    *models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	ts := &testServer{
		store:    store,
		provider: &fakeProvider{profile: &services.GoogleUser{ID: "g-1", Email: "new@example.com", Name: "New"}},
		sessions: session.NewManager("secret", time.Hour, false),
	}
	ts.owner = &models.User{Email: "owner@example.com", Name: "Owner", AuthKey: "owner-key"}
	ts.admin = &models.User{Email: "admin@example.com", Name: "Admin", AuthKey: "admin-key", IsAdmin: true}
	ts.other = &models.User{Email: "other@example.com", Name: "Other", AuthKey: "other-key"}
	for _, u := range []*models.User{ts.owner, ts.admin, ts.other} {
		require.NoError(t, store.Users().Save(ctx, u))
	}

	log := zap.NewNop()
	resolver := session.NewResolver(ts.sessions, store.Users())
	docs := NewDocumentHandler(services.NewDocumentService(store.Documents(), store.Users(), nil, log), log)
	users := NewUserHandler(services.NewUserService(store.Users()), ts.provider, ts.sessions, resolver, log, false)

	docMux := http.NewServeMux()
	docMux.HandleFunc("/list", docs.List)
	docMux.HandleFunc("/get", docs.Get)
	docMux.HandleFunc("/save", docs.Save)
	docMux.HandleFunc("/delete", docs.Delete)
	docMux.HandleFunc("/export", docs.Export)

	userMux := http.NewServeMux()
	userMux.HandleFunc("/auth/google", users.GoogleAuth)
	userMux.HandleFunc("/logout", users.Logout)
	userMux.HandleFunc("/whoami", users.Whoami)
	userMux.HandleFunc("/generate_key", users.GenerateKey)
	userMux.HandleFunc("/update", users.Update)

	mux := http.NewServeMux()
	mux.Handle("/doc/", http.StripPrefix("/doc", middleware.Identify(resolver)(docMux)))
	mux.Handle("/user/", http.StripPrefix("/user", userMux))
	ts.handler = mux
	return ts
}

// do sends a request as user, or anonymously when user is nil.
func (ts *testServer) do(method, path, body string, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		req.Header.Set(session.HeaderUID, user.ID.String())
		req.Header.Set(session.HeaderAuthKey, user.AuthKey)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestDocuments_SaveAndGet(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/doc/save", `{"identifier":"notes", "title":"Notes","category":"graph","nodes":[1,2]}`, ts.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success.", rec.Body.String())

	rec = ts.do(http.MethodPost, "/doc/get", `{"identifier":"notes"}`, ts.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"identifier":"notes","title":"Notes","category":"graph","nodes":[1,2]}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/doc/get", `{"identifier":"notes"}`, ts.other).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/doc/get", `{"identifier":"notes"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/doc/get", `{}`, ts.owner).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/doc/get", `{"identifier":`, ts.owner).Code)
}

func TestDocuments_PublicReadableByAnyone(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"guide","public":true}`, ts.admin).Code)

	for _, user := range []*models.User{nil, ts.owner, ts.admin} {
		rec := ts.do(http.MethodPost, "/doc/get", `{"identifier":"guide"}`, user)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"identifier":"guide","public":true}`, rec.Body.String())
	}
}

func TestDocuments_SaveRejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		user *models.User
		want int
	}{
		{"anonymous", `{"identifier":"a"}`, nil, http.StatusForbidden},
		{"public by non-admin", `{"identifier":"a","public":true}`, ts.owner, http.StatusForbidden},
		{"missing identifier", `{"title":"a"}`, ts.owner, http.StatusBadRequest},
		{"empty body", ``, ts.owner, http.StatusBadRequest},
		{"not an object", `[1]`, ts.owner, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.do(http.MethodPost, "/doc/save", tt.body, tt.user).Code)
		})
	}
}

func TestDocuments_List(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"a","category":"graph"}`, ts.owner).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"b","category":"table"}`, ts.owner).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"c","category":"graph"}`, ts.other).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"d","category":"graph","public":true}`, ts.admin).Code)

	identifiers := func(rec *httptest.ResponseRecorder) []string {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code)
		var docs []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d["identifier"].(string))
		}
		return ids
	}

	assert.ElementsMatch(t, []string{"a", "b", "d"}, identifiers(ts.do(http.MethodPost, "/doc/list", ``, ts.owner)))
	assert.ElementsMatch(t, []string{"a", "d"}, identifiers(ts.do(http.MethodPost, "/doc/list", `{"category":"graph"}`, ts.owner)))
	assert.ElementsMatch(t, []string{"d"}, identifiers(ts.do(http.MethodPost, "/doc/list", `{}`, nil)))

	// uid override only takes effect for admins
	override := `{"uid":"` + ts.other.ID.String() + `"}`
	assert.ElementsMatch(t, []string{"c", "d"}, identifiers(ts.do(http.MethodPost, "/doc/list", override, ts.admin)))
	assert.ElementsMatch(t, []string{"a", "b", "d"}, identifiers(ts.do(http.MethodPost, "/doc/list", override, ts.owner)))

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/doc/list", `{"uid":"nope"}`, ts.owner).Code)
}

func TestDocuments_Delete(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"a"}`, ts.owner).Code)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/doc/delete", `{"identifier":"a"}`, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/doc/delete", `{"identifier":"a"}`, ts.other).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/doc/delete", `{"identifier":"missing"}`, ts.owner).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/doc/delete", `{}`, ts.owner).Code)

	rec := ts.do(http.MethodPost, "/doc/delete", `{"identifier":"a"}`, ts.owner)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success.", rec.Body.String())

	_, err := ts.store.Documents().FindOne(context.Background(), query.Eq{Field: query.FieldIdentifier, Value: "a"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDocuments_ExportWithoutArchive(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"a"}`, ts.owner).Code)
	assert.Equal(t, http.StatusNotImplemented, ts.do(http.MethodPost, "/doc/export", `{"identifier":"a"}`, ts.owner).Code)
}

func TestDocuments_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/doc/list", "/doc/get", "/doc/save", "/doc/delete", "/doc/export"} {
		assert.Equal(t, http.StatusMethodNotAllowed, ts.do(http.MethodGet, path, ``, ts.owner).Code, path)
	}
}

func TestUsers_Whoami(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/user/whoami", ``, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/user/whoami", ``, ts.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"`+ts.owner.ID.String()+`","name":"Owner","email":"owner@example.com","subscribed":false,"authKey":"owner-key"}`, rec.Body.String())
}

func TestUsers_GenerateKey(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/user/generate_key", ``, nil).Code)

	rec := ts.do(http.MethodPost, "/user/generate_key", ``, ts.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success.", rec.Body.String())

	stored, err := ts.store.Users().GetByID(context.Background(), ts.owner.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "owner-key", stored.AuthKey)

	// the old key no longer identifies anyone
	assert.JSONEq(t, `{}`, ts.do(http.MethodPost, "/user/whoami", ``, ts.owner).Body.String())
}

func TestUsers_Update(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/user/update", `{"name":"x"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/user/update", `{"name":"  "}`, ts.owner).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/user/update", `{"name":`, ts.owner).Code)

	rec := ts.do(http.MethodPost, "/user/update", `{"name":" Ada ","subscribed":true}`, ts.owner)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := ts.store.Users().GetByID(context.Background(), ts.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
	assert.True(t, stored.Subscribed)
}

func TestUsers_Logout(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/user/logout", ``, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)

	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(http.MethodPost, "/user/logout", ``, nil).Code)
}

// startLogin begins the Google flow and returns the state handed to the
// provider together with the pinned state cookie.
func startLogin(t *testing.T, ts *testServer, redirect string) (string, *http.Cookie) {
	t.Helper()
	rec := ts.do(http.MethodGet, "/user/auth/google?redirectUrl="+url.QueryEscape(redirect), ``, nil)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	var pinned *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookieName {
			pinned = c
		}
	}
	require.NotNil(t, pinned)
	return state, pinned
}

func callback(ts *testServer, state string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/user/auth/google?code=abc&state="+url.QueryEscape(state), nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestGoogleAuth_FullFlow(t *testing.T) {
	ts := newTestServer(t)

	state, pinned := startLogin(t, ts, "/#/editor/notes")
	rec := callback(ts, state, pinned)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/#/editor/notes", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	user, err := ts.store.Users().FindOne(context.Background(), query.Eq{Field: query.FieldGoogleID, Value: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotEmpty(t, user.AuthKey)

	// the session alone identifies the caller
	req := httptest.NewRequest(http.MethodPost, "/user/whoami", nil)
	req.AddCookie(sessionCookie)
	who := httptest.NewRecorder()
	ts.handler.ServeHTTP(who, req)
	assert.Contains(t, who.Body.String(), user.ID.String())
}

func TestGoogleAuth_Failures(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodGet, "/user/auth/google?error=access_denied", ``, nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, loginErrorRedirect, rec.Header().Get("Location"))
	})

	t.Run("state cookie missing", func(t *testing.T) {
		ts := newTestServer(t)
		state, _ := startLogin(t, ts, "")
		assert.Equal(t, http.StatusBadRequest, callback(ts, state, nil).Code)
	})

	t.Run("state cookie mismatch", func(t *testing.T) {
		ts := newTestServer(t)
		state, _ := startLogin(t, ts, "")
		forged := &http.Cookie{Name: stateCookieName, Value: "forged"}
		assert.Equal(t, http.StatusBadRequest, callback(ts, state, forged).Code)
	})

	t.Run("exchange fails", func(t *testing.T) {
		ts := newTestServer(t)
		ts.provider.exchangeErr = errors.New("boom")
		state, pinned := startLogin(t, ts, "")
		assert.Equal(t, http.StatusInternalServerError, callback(ts, state, pinned).Code)
	})

	t.Run("profile without id", func(t *testing.T) {
		ts := newTestServer(t)
		ts.provider.profile = &services.GoogleUser{Email: "x@example.com"}
		state, pinned := startLogin(t, ts, "")
		assert.Equal(t, http.StatusNotFound, callback(ts, state, pinned).Code)
	})

	t.Run("offsite redirect falls back", func(t *testing.T) {
		ts := newTestServer(t)
		state, pinned := startLogin(t, ts, "//evil.example")
		rec := callback(ts, state, pinned)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, defaultLoginRedirect, rec.Header().Get("Location"))
	})
}

func TestState_RoundTrip(t *testing.T) {
	state, nonce, err := GenerateState(map[string]string{"redirectUrl": "/#/editor"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(state, nonce+"."))

	gotNonce, data, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, nonce, gotNonce)
	assert.Equal(t, "/#/editor", data["redirectUrl"])

	for _, bad := range []string{"", "onlyone", "a.b.c", ".e30", "abc.!!!"} {
		_, _, err := DecodeState(bad)
		assert.Error(t, err, bad)
	}
}

func TestSafeRedirect(t *testing.T) {
	tests := map[string]string{
		"":                     "/fallback",
		"/#/editor":            "/#/editor",
		"//evil.example":       "/fallback",
		"https://evil.example": "/fallback",
		"/\\evil.example":      "/fallback",
		"relative":             "/fallback",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirect(in, "/fallback"), in)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, statusFor(services.ErrUnauthenticated))
	assert.Equal(t, http.StatusUnauthorized, statusFor(services.ErrNotOwner))
	assert.Equal(t, http.StatusNotImplemented, statusFor(services.ErrArchiveDisabled))
	assert.Equal(t, http.StatusBadRequest, statusFor(services.ErrInvalidPayload))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("db down")))
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("save: %w", repositories.ErrDuplicate)))
}

func TestDocuments_GetPrefersOwnOverPublicNamesake(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"notes","public":true,"title":"admin's"}`, ts.admin).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/doc/save", `{"identifier":"notes","title":"mine"}`, ts.owner).Code)

	rec := ts.do(http.MethodPost, "/doc/get", `{"identifier":"notes"}`, ts.owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"identifier":"notes","title":"mine"}`, rec.Body.String())

	rec = ts.do(http.MethodPost, "/doc/get", `{"identifier":"notes"}`, ts.other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"identifier":"notes","public":true,"title":"admin's"}`, rec.Body.String())
}
