// Package bookmarks serves the signed-in user's bookmarks over JSON:
// listing (optionally filtered by group), saving new links through the
// same normalize-enrich-persist pipeline the extension uses, and
// deletion.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/markhold/markhold/internal/app/system/auth"
	"github.com/markhold/markhold/internal/app/system/normalize"
	"github.com/markhold/markhold/internal/app/system/timeouts"
	"github.com/markhold/markhold/internal/app/system/urlmeta"
	"github.com/markhold/markhold/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BookmarkStore is the slice of the bookmark store these handlers need.
type BookmarkStore interface {
	Create(ctx context.Context, b models.Bookmark) (models.Bookmark, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Bookmark, error)
	ListByGroup(ctx context.Context, userID, groupID primitive.ObjectID) ([]models.Bookmark, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) (int64, error)
}

// GroupResolver resolves the target group for a save: an explicit group
// by id, or the user's earliest group when none is named.
type GroupResolver interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	FindEarliestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Group, error)
}

type Handler struct {
	Bookmarks BookmarkStore
	Groups    GroupResolver
	Meta      urlmeta.Fetcher
	Log       *zap.Logger
}

func NewHandler(bookmarks BookmarkStore, groups GroupResolver, meta urlmeta.Fetcher, logger *zap.Logger) *Handler {
	return &Handler{Bookmarks: bookmarks, Groups: groups, Meta: meta, Log: logger}
}

type bookmarkJSON struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Favicon *string `json:"favicon,omitempty"`
	GroupID string  `json:"groupId"`
}

type createBookmarkRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	GroupID string `json:"groupId,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleList returns the user's bookmarks newest first. A ?group=<id>
// query narrows the list to one group.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		list []models.Bookmark
		err  error
	)
	if raw := r.URL.Query().Get("group"); raw != "" {
		groupID, perr := primitive.ObjectIDFromHex(raw)
		if perr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "Bad Request", Message: "Invalid group id",
			})
			return
		}
		list, err = h.Bookmarks.ListByGroup(ctx, userID, groupID)
	} else {
		list, err = h.Bookmarks.ListByUser(ctx, userID)
	}
	if err != nil {
		h.Log.Error("bookmarks: list failed", zap.String("user_id", user.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Failed to load bookmarks",
		})
		return
	}

	out := make([]bookmarkJSON, 0, len(list))
	for _, b := range list {
		out = append(out, toJSON(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": out})
}

// HandleCreate saves a bookmark from the web app. The pipeline matches
// the extension's capture: normalize the URL, resolve the group, enrich
// best effort, persist once. The difference is that the web form may name
// a group explicitly.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validURL(req.URL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Bad Request", Message: "Invalid URL provided",
		})
		return
	}

	gctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	group, status, msg := h.resolveGroup(gctx, userID, req.GroupID)
	if group == nil {
		writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: msg})
		return
	}

	normalized := normalize.URL(req.URL)

	fctx, cancel := context.WithTimeout(r.Context(), timeouts.Fetch())
	defer cancel()
	meta, err := h.Meta.Fetch(fctx, normalized)
	if err != nil {
		h.Log.Debug("bookmarks: metadata fetch failed", zap.String("url", normalized), zap.Error(err))
	}

	title := req.Title
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = normalized
	}

	var favicon *string
	if meta.Favicon != "" {
		favicon = &meta.Favicon
	}

	cctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	bookmark, err := h.Bookmarks.Create(cctx, models.Bookmark{
		UserID:  userID,
		GroupID: group.ID,
		Title:   title,
		URL:     normalized,
		Favicon: favicon,
		Type:    models.BookmarkTypeLink,
	})
	if err != nil {
		h.Log.Error("bookmarks: create failed",
			zap.String("user_id", user.ID), zap.String("url", normalized), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Failed to save bookmark",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"bookmark": toJSON(bookmark)})
}

// HandleDelete removes one of the user's bookmarks.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookmarkID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Bad Request", Message: "Invalid bookmark id",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	deleted, err := h.Bookmarks.Delete(ctx, userID, id)
	if err != nil {
		h.Log.Error("bookmarks: delete failed",
			zap.String("user_id", user.ID), zap.String("bookmark_id", id.Hex()), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Server Error", Message: "Failed to delete bookmark",
		})
		return
	}
	if deleted == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "Not Found", Message: "Bookmark not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// resolveGroup returns the group a new bookmark belongs to. An explicit
// id must exist and belong to the user; with no id the earliest group is
// the default. A nil group comes back with the status and message to
// send.
func (h *Handler) resolveGroup(ctx context.Context, userID primitive.ObjectID, raw string) (*models.Group, int, string) {
	if raw == "" {
		group, err := h.Groups.FindEarliestByUser(ctx, userID)
		if err != nil {
			h.Log.Error("bookmarks: default group lookup failed",
				zap.String("user_id", userID.Hex()), zap.Error(err))
			return nil, http.StatusInternalServerError, "Failed to save bookmark"
		}
		if group == nil {
			return nil, http.StatusBadRequest, "No bookmark group found. Please create one first."
		}
		return group, 0, ""
	}

	groupID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid group id"
	}
	group, err := h.Groups.GetByID(ctx, groupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, http.StatusNotFound, "Group not found"
	}
	if err != nil {
		h.Log.Error("bookmarks: group lookup failed",
			zap.String("group_id", groupID.Hex()), zap.Error(err))
		return nil, http.StatusInternalServerError, "Failed to save bookmark"
	}
	if group.UserID != userID {
		// A group in someone else's account reads the same as no group.
		return nil, http.StatusNotFound, "Group not found"
	}
	return &group, 0, ""
}

func toJSON(b models.Bookmark) bookmarkJSON {
	return bookmarkJSON{
		ID:      b.ID.Hex(),
		Title:   b.Title,
		URL:     b.URL,
		Favicon: b.Favicon,
		GroupID: b.GroupID.Hex(),
	}
}

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

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
