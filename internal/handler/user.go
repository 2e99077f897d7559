package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/arefin/newshub/internal/auth"
	"github.com/arefin/newshub/internal/service"
)

// UserHandler exposes registration, login and the two Google sign-in
// paths: the client-posted ID-token bridge and the server-side
// authorization-code flow.
type UserHandler struct {
	users  *service.UserService
	google *auth.GoogleProvider
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, google *auth.GoogleProvider, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, google: google, logger: logger}
}

// authResponse is the success body shared by every identity route.
func authResponse(message string, result *service.AuthResult) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"message": message,
		"user":    result.User.Public(),
		"token":   result.Token,
	}
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/users/register
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Invalid request body",
		})
		return
	}

	result, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse("User registered successfully", result))
}

// HandleLogin authenticates by username or email plus password.
//
// HTTP: POST /api/users/login
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Invalid request body",
		})
		return
	}

	result, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse("Login successful", result))
}

// HandleGoogleAuth signs in with a Google ID token posted by the client.
// The matching account is provisioned on first sight.
//
// The sign-in widget posts the credential as "token"; "idToken" is
// accepted as an alias.
//
// HTTP: POST /api/users/google-auth
func (h *UserHandler) HandleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token   string `json:"token"`
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Invalid request body",
		})
		return
	}

	idToken := req.Token
	if idToken == "" {
		idToken = req.IDToken
	}

	result, err := h.users.LoginWithGoogleIDToken(r.Context(), idToken)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse("Google authentication successful", result))
}

// HandleGoogleLogin starts the server-side Google code flow. The state
// value is stored in a short-lived cookie and checked on callback, so
// only callbacks this server initiated are accepted.
//
// HTTP: GET /api/users/google/login
func (h *UserHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"url": h.google.AuthURL(state)})
}

// HandleGoogleCallback completes the code flow: it verifies the state,
// exchanges the code for the Google profile, and issues a session token
// for the matching (or freshly provisioned) account.
//
// HTTP: GET /api/users/google/callback?code=xxx&state=yyy
func (h *UserHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Invalid OAuth state",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: authorization denied", slog.String("error", errParam))
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Google authorization was denied",
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "message": "Missing OAuth code",
		})
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "message": "Google authentication failed",
		})
		return
	}

	result, err := h.users.LoginWithGoogleIdentity(r.Context(), gUser)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse("Google authentication successful", result))
}
