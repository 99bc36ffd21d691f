// Package signup creates accounts. Every new account also gets its
// starter group, so bookmark capture has somewhere to land from the first
// moment.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	groupstore "github.com/markhold/markhold/internal/app/store/groups"
	userstore "github.com/markhold/markhold/internal/app/store/users"
	"github.com/markhold/markhold/internal/app/system/auth"
	"github.com/markhold/markhold/internal/app/system/ratelimit"
	"github.com/markhold/markhold/internal/app/system/timeouts"
	"github.com/markhold/markhold/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const minPasswordLen = 8

type Handler struct {
	Users      *userstore.Store
	Groups     *groupstore.Store
	SessionMgr *auth.SessionManager
	Limits     *ratelimit.AccountLimiter
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limits *ratelimit.AccountLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Groups:     groupstore.New(db),
		SessionMgr: sessionMgr,
		Limits:     limits,
		Log:        logger,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleSignup handles POST /signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if msg := validate(req); msg != "" {
		writeError(w, http.StatusBadRequest, "Bad Request", msg)
		return
	}

	// Anonymous write endpoint, so it gets the same throttle as login;
	// the email window also slows probing for registered addresses.
	if ok, reason := h.Limits.Check(r, req.Email); !ok {
		h.Log.Warn("signup: rate limited",
			zap.String("ip", ratelimit.ClientIP(r)))
		writeError(w, http.StatusTooManyRequests, "Too Many Requests", reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, req.Name, req.Email, req.Password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "Conflict", "An account with this email already exists")
		return
	}
	if err != nil {
		h.Log.Error("signup: user create failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server Error", "Failed to create account")
		return
	}

	// The starter group. If this fails the account is unusable for
	// capture, so the whole signup is reported as failed.
	if _, err := h.Groups.Create(ctx, models.Group{
		UserID: user.ID,
		Name:   models.DefaultGroupName,
		Color:  models.DefaultGroupColor,
	}); err != nil {
		h.Log.Error("signup: starter group create failed",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server Error", "Failed to create account")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	}); err != nil {
		h.Log.Error("signup: session start failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Server Error", "Failed to create account")
		return
	}

	h.Log.Info("account created", zap.String("user_id", user.ID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user": userPayload{ID: user.ID.Hex(), Name: user.Name, Email: user.Email},
	})
}

func validate(req signupRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "Name is required"
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return "A valid email is required"
	}
	if len(req.Password) < minPasswordLen {
		return "Password must be at least 8 characters"
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
