package vault

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/register", Handler: m.handleRegister},
		{Method: "POST", Path: "/login", Handler: m.handleLogin},
		{Method: "POST", Path: "/logout", Handler: m.handleLogout},
		{Method: "GET", Path: "/activity", Handler: m.handleActivity},
	}
}

// handleRegister creates an account and returns a session for it.
func (m *Module) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		vaultWriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		vaultWriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if len(req.Password) < 8 {
		vaultWriteError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := m.users.Create(r.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			vaultWriteError(w, http.StatusConflict, "username already exists")
			return
		}
		m.logger.Warn("user registration failed", zap.Error(err))
		vaultWriteError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	m.recordAndPublish(r, user.Username, ActionRegister, TopicUserRegistered)
	m.writeSession(w, http.StatusCreated, user)
}

// handleLogin checks credentials and returns a session token.
func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		vaultWriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := m.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			vaultWriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		m.logger.Warn("login failed", zap.Error(err))
		vaultWriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	m.recordAndPublish(r, user.Username, ActionLogin, TopicUserLogin)
	m.writeSession(w, http.StatusOK, user)
}

// handleLogout records the logout. Tokens are stateless; the entry exists
// for the activity trail, not for revocation.
func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, err := m.tokens.Verify(bearerToken(r))
	if err != nil {
		vaultWriteError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	m.recordAndPublish(r, claims.Username, ActionLogout, TopicUserLogout)
	w.WriteHeader(http.StatusNoContent)
}

// handleActivity lists recent account activity. Requires a valid session.
func (m *Module) handleActivity(w http.ResponseWriter, r *http.Request) {
	if _, err := m.tokens.Verify(bearerToken(r)); err != nil {
		vaultWriteError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := m.activity.List(r.Context(), limit)
	if err != nil {
		m.logger.Warn("activity list failed", zap.Error(err))
		vaultWriteError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	vaultWriteJSON(w, http.StatusOK, entries)
}

func (m *Module) writeSession(w http.ResponseWriter, status int, user *User) {
	token, expires, err := m.tokens.Issue(user)
	if err != nil {
		m.logger.Error("token issuance failed", zap.Error(err))
		vaultWriteError(w, http.StatusInternalServerError, "session creation failed")
		return
	}
	vaultWriteJSON(w, status, sessionResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  user.Username,
	})
}

// recordAndPublish appends to the activity log and emits a bus event.
// Neither failure blocks the request.
func (m *Module) recordAndPublish(r *http.Request, username, action, topic string) {
	ip := remoteIP(r)
	if err := m.activity.Record(r.Context(), username, action, ip); err != nil {
		m.logger.Warn("activity record failed",
			zap.String("action", action), zap.Error(err))
	}
	if m.bus != nil {
		m.bus.PublishAsync(context.WithoutCancel(r.Context()), plugin.Event{
			Topic:     topic,
			Source:    "vault",
			Timestamp: time.Now(),
			Payload:   UserEvent{Username: username, RemoteIP: ip},
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// -- helpers --

func vaultWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func vaultWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://lanscope.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
