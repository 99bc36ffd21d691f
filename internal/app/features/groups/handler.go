// Package groups serves the signed-in user's bookmark groups: listing,
// creation, and deletion with cascade of the group's bookmarks.
package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/markhold/markhold/internal/app/system/auth"
	"github.com/markhold/markhold/internal/app/system/timeouts"
	"github.com/markhold/markhold/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupStore is the slice of the group store these handlers need.
type GroupStore interface {
	Create(ctx context.Context, g models.Group) (models.Group, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) (int64, error)
}

// BookmarkSweeper removes a deleted group's bookmarks.
type BookmarkSweeper interface {
	DeleteByGroup(ctx context.Context, userID, groupID primitive.ObjectID) (int64, error)
}

type Handler struct {
	Groups    GroupStore
	Bookmarks BookmarkSweeper
	Log       *zap.Logger
}

func NewHandler(groups GroupStore, bookmarks BookmarkSweeper, logger *zap.Logger) *Handler {
	return &Handler{Groups: groups, Bookmarks: bookmarks, Log: logger}
}

type groupJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type createGroupRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleList returns the user's groups oldest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	list, err := h.Groups.ListByUser(ctx, userID)
	if err != nil {
		h.Log.Error("groups: list failed", zap.String("user_id", user.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Failed to load groups",
		})
		return
	}

	out := make([]groupJSON, 0, len(list))
	for _, g := range list {
		out = append(out, groupJSON{ID: g.ID.Hex(), Name: g.Name, Color: g.Color})
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

// HandleCreate adds a group. Name is required; color falls back to the
// default when omitted.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Bad Request", Message: "Invalid request body",
		})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Bad Request", Message: "Group name is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	group, err := h.Groups.Create(ctx, models.Group{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		h.Log.Error("groups: create failed", zap.String("user_id", user.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Failed to create group",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"group": groupJSON{ID: group.ID.Hex(), Name: group.Name, Color: group.Color},
	})
}

// HandleDelete removes a group and every bookmark filed in it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	groupID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Bad Request", Message: "Invalid group id",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	deleted, err := h.Groups.Delete(ctx, userID, groupID)
	if err != nil {
		h.Log.Error("groups: delete failed",
			zap.String("user_id", user.ID), zap.String("group_id", groupID.Hex()), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Failed to delete group",
		})
		return
	}
	if deleted == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "Not Found", Message: "Group not found",
		})
		return
	}

	if _, err := h.Bookmarks.DeleteByGroup(ctx, userID, groupID); err != nil {
		// The group is already gone; orphaned bookmarks are logged, not
		// surfaced, since the user's intent succeeded.
		h.Log.Error("groups: bookmark cascade failed",
			zap.String("user_id", user.ID), zap.String("group_id", groupID.Hex()), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// requireUserID pulls the session user and parses its id. Routes here sit
// behind RequireSignedIn, so a missing user means middleware misuse.
func requireUserID(w http.ResponseWriter, r *http.Request) (*auth.SessionUser, primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "Unauthorized", Message: "Please log in",
		})
		return nil, primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Invalid session",
		})
		return nil, primitive.NilObjectID, false
	}
	return user, id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
