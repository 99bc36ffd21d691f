// Package login authenticates existing accounts with email and password.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	userstore "github.com/markhold/markhold/internal/app/store/users"
	"github.com/markhold/markhold/internal/app/system/auth"
	"github.com/markhold/markhold/internal/app/system/ratelimit"
	"github.com/markhold/markhold/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limits     *ratelimit.AccountLimiter
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limits *ratelimit.AccountLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Limits:     limits,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// HandleLogin handles POST /login. Unknown email and wrong password get
// the same response so the endpoint doesn't confirm which emails exist.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if ok, reason := h.Limits.Check(r, req.Email); !ok {
		h.Log.Warn("login: rate limited",
			zap.String("ip", ratelimit.ClientIP(r)))
		writeError(w, http.StatusTooManyRequests, "Too Many Requests", reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}
	if err != nil {
		h.Log.Error("login: user lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server Error", "Login failed")
		return
	}
	if !userstore.VerifyPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	// A correct password clears the account's window so earlier typos
	// don't lock out the legitimate owner.
	h.Limits.ResetEmail(req.Email)

	su := &auth.SessionUser{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("login: session start failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server Error", "Login failed")
		return
	}
	if req.Remember {
		h.SessionMgr.SetRememberMe(w, su.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user": map[string]string{"id": su.ID, "name": su.Name, "email": su.Email},
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
