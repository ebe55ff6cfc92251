package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rohits-web03/folio/internal/api/services"
	"github.com/rohits-web03/folio/internal/api/session"
	"github.com/rohits-web03/folio/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultLoginRedirect = "/#/editor"
	loginErrorRedirect   = "/#/login"
)

// OAuthProvider is the part of the Google client the login flow needs.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, tok *oauth2.Token) (*services.GoogleUser, error)
}

type UserHandler struct {
	users    *services.UserService
	provider OAuthProvider
	sessions *session.Manager
	resolver *session.Resolver
	log      *zap.Logger
	secure   bool
}

func NewUserHandler(users *services.UserService, provider OAuthProvider, sessions *session.Manager, resolver *session.Resolver, log *zap.Logger, secure bool) *UserHandler {
	return &UserHandler{
		users:    users,
		provider: provider,
		sessions: sessions,
		resolver: resolver,
		log:      log,
		secure:   secure,
	}
}

type whoamiResponse struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Subscribed bool   `json:"subscribed"`
	AuthKey    string `json:"authKey"`
}

type updateRequest struct {
	Name       string `json:"name"`
	Subscribed bool   `json:"subscribed"`
}

// GoogleAuth godoc
// @Summary Sign in with Google
// @Description Without a code, redirects to Google. As the OAuth callback, exchanges the code, starts a session and redirects to redirectUrl.
// @Tags Users
// @Param redirectUrl query string false "Relative path to land on after signing in"
// @Param code query string false "Authorization code (callback)"
// @Param state query string false "OAuth state (callback)"
// @Success 302
// @Failure 400 {string} string "State mismatch"
// @Failure 404 {string} string "Google returned no profile id"
// @Router /user/auth/google [get]
func (h *UserHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	if r.FormValue("error") != "" {
		http.Redirect(w, r, loginErrorRedirect, http.StatusFound)
		return
	}

	code := r.FormValue("code")
	if code == "" {
		h.startGoogleLogin(w, r)
		return
	}

	nonce, data, err := DecodeState(r.FormValue("state"))
	if err != nil || !verifyStateCookie(r, nonce) {
		utils.Abort(w, http.StatusBadRequest)
		return
	}
	clearStateCookie(w, h.secure)

	tok, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.log.Error("Google code exchange failed", zap.Error(err))
		utils.Abort(w, http.StatusInternalServerError)
		return
	}

	profile, err := h.provider.Profile(r.Context(), tok)
	if err != nil {
		h.log.Error("Failed to fetch Google profile", zap.Error(err))
		utils.Abort(w, http.StatusInternalServerError)
		return
	}
	if profile.ID == "" {
		utils.Abort(w, http.StatusNotFound)
		return
	}

	user, err := h.users.LoginWithGoogle(r.Context(), *profile)
	if err != nil {
		writeError(w, h.log, "user.login", err)
		return
	}

	if err := h.sessions.Issue(w, user.ID, tok); err != nil {
		h.log.Error("Failed to issue session", zap.Error(err))
		utils.Abort(w, http.StatusInternalServerError)
		return
	}

	h.log.Info("User signed in", zap.String("uid", user.ID.String()))
	http.Redirect(w, r, safeRedirect(data["redirectUrl"], defaultLoginRedirect), http.StatusFound)
}

func (h *UserHandler) startGoogleLogin(w http.ResponseWriter, r *http.Request) {
	redirect := safeRedirect(r.FormValue("redirectUrl"), defaultLoginRedirect)

	state, nonce, err := GenerateState(map[string]string{"redirectUrl": redirect})
	if err != nil {
		h.log.Error("Failed to generate OAuth state", zap.Error(err))
		utils.Abort(w, http.StatusInternalServerError)
		return
	}

	setStateCookie(w, nonce, h.secure)
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Logout godoc
// @Summary Sign out
// @Tags Users
// @Success 302
// @Router /user/logout [get]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Whoami godoc
// @Summary Describe the caller
// @Description Returns the signed-in user, or an empty object.
// @Tags Users
// @Produce json
// @Success 200 {object} whoamiResponse
// @Router /user/whoami [post]
func (h *UserHandler) Whoami(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	user, ok := h.resolver.User(r)
	if !ok {
		utils.JSONResponse(w, http.StatusOK, struct{}{})
		return
	}

	utils.JSONResponse(w, http.StatusOK, whoamiResponse{
		UID:        user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		Subscribed: user.Subscribed,
		AuthKey:    user.AuthKey,
	})
}

// GenerateKey godoc
// @Summary Rotate the caller's API key
// @Tags Users
// @Produce plain
// @Success 200 {string} string "Success."
// @Failure 404 {string} string "Not signed in"
// @Router /user/generate_key [post]
func (h *UserHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	user, ok := h.resolver.User(r)
	if !ok {
		utils.Abort(w, http.StatusNotFound)
		return
	}

	if err := h.users.RotateKey(r.Context(), user); err != nil {
		writeError(w, h.log, "user.generate_key", err)
		return
	}
	utils.Success(w)
}

// Update godoc
// @Summary Update the caller's profile
// @Tags Users
// @Accept json
// @Produce plain
// @Param body body updateRequest true "New name and subscription flag"
// @Success 200 {string} string "Success."
// @Failure 400 {string} string "Invalid name or malformed body"
// @Failure 404 {string} string "Not signed in"
// @Router /user/update [post]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.Abort(w, http.StatusMethodNotAllowed)
		return
	}

	user, ok := h.resolver.User(r)
	if !ok {
		utils.Abort(w, http.StatusNotFound)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		utils.Abort(w, http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.Abort(w, http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateProfile(r.Context(), user, req.Name, req.Subscribed); err != nil {
		if errors.Is(err, services.ErrInvalidName) {
			utils.Abort(w, http.StatusBadRequest)
			return
		}
		writeError(w, h.log, "user.update", err)
		return
	}
	utils.Success(w)
}
