package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/store"
	"sugarbeat/internal/tracker"
	"sugarbeat/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
)

var (
	sessionManager *scs.SessionManager
	service        *tracker.Service
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, svc *tracker.Service) {
	sessionManager = sm
	service = svc
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func projectUser(user models.User) userResponse {
	return userResponse{ID: user.ID, Email: user.Email, Name: user.Name}
}

// Signup creates an account and signs the new user in.
func Signup(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling signup request", "method", r.Method)
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !ready(w, r) {
		return
	}

	var payload credentialsRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := service.Store().CreateUser(r.Context(), payload.Email, payload.Name, payload.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			applog.Debug(r.Context(), "signup rejected, email in use", "email", strings.ToLower(payload.Email))
			writeJSONError(w, http.StatusConflict, "an account with that email already exists")
			return
		}
		writeServiceError(w, r, err, "unable to create account")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session after signup", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}
	applog.Info(r.Context(), "user signed up", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, projectUser(*user))
}

// Login verifies credentials and starts an authenticated session.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method)
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !ready(w, r) {
		return
	}

	var payload loginRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := service.Store().Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(payload.Email))
			writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeServiceError(w, r, err, "unable to sign in")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}
	applog.Debug(r.Context(), "authentication succeeded", "user_id", user.ID)
	writeJSON(w, http.StatusOK, projectUser(*user))
}

// Logout destroys the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Name)
	return nil
}

// RequireAuthentication rejects requests without an authenticated session.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			applog.Debug(r.Context(), "unauthenticated request rejected", "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentUserID(r *http.Request) (uint, bool) {
	if !ActiveSession(r) {
		return 0, false
	}
	return uint(sessionManager.GetInt(r.Context(), sessionUserIDKey)), true
}

// ready reports whether the handler dependencies are configured.
func ready(w http.ResponseWriter, r *http.Request) bool {
	if sessionManager == nil || service == nil {
		applog.Debug(r.Context(), "handler dependencies unavailable", "hasSession", sessionManager != nil, "hasService", service != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}

// authorize combines ready and currentUserID.
func authorize(w http.ResponseWriter, r *http.Request) (uint, bool) {
	if !ready(w, r) {
		return 0, false
	}
	userID, ok := currentUserID(r)
	if !ok {
		applog.Debug(r.Context(), "request missing authenticated user", "path", r.URL.Path)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}
