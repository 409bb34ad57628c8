package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hollis/grocer/internal/auth"
	"github.com/hollis/grocer/internal/middleware"
	"github.com/hollis/grocer/internal/session"
)

const sessionCookieName = "grocer_session"

const (
	loginAttempts = 5
	loginWindow   = time.Minute
)

// AuthHandler signs the owner in and out. Login promotes the app session to
// authenticated, which flips the backend router to the remote store; logout
// drops it back to anonymous and the local store.
type AuthHandler struct {
	passphraseHash string
	userID         string
	broker         *session.Broker
	limiter        *middleware.RateLimiter
	logger         *slog.Logger

	mu     sync.Mutex
	tokens map[string]struct{}
}

func NewAuthHandler(passphraseHash, userID string, broker *session.Broker, limiter *middleware.RateLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		passphraseHash: passphraseHash,
		userID:         userID,
		broker:         broker,
		limiter:        limiter,
		logger:         logger,
		tokens:         make(map[string]struct{}),
	}
}

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.passphraseHash == "" {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no owner passphrase configured"})
		return
	}
	if !h.limiter.Allow(middleware.RealIP(r), loginAttempts, loginWindow) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ok, err := auth.VerifyPassphrase(req.Passphrase, h.passphraseHash)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "wrong passphrase"})
		return
	}

	token := uuid.NewString()
	h.mu.Lock()
	h.tokens[token] = struct{}{}
	h.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.broker.Set(session.Session{UserID: h.userID, Authenticated: true})
	h.logger.Info("signed in", "user", h.userID)

	writeJSON(w, http.StatusOK, map[string]string{"user_id": h.userID})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.mu.Lock()
		delete(h.tokens, cookie.Value)
		h.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	h.broker.Set(session.Anonymous())
	h.logger.Info("signed out")

	w.WriteHeader(http.StatusNoContent)
}

// Session reports the current trust level, so the UI knows which store it
// is talking to.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cur := h.broker.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": cur.Trusted(),
		"user_id":       cur.UserID,
	})
}
