// Package extension implements the browser-extension capture endpoint:
// a CORS-gated, session-authenticated POST that turns a URL into a stored
// bookmark in the user's default group.
package extension

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/markhold/markhold/internal/app/system/auth"
	"github.com/markhold/markhold/internal/app/system/normalize"
	"github.com/markhold/markhold/internal/app/system/origin"
	"github.com/markhold/markhold/internal/app/system/timeouts"
	"github.com/markhold/markhold/internal/app/system/urlmeta"
	"github.com/markhold/markhold/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupFinder resolves the user's default (earliest-created) group.
// A user with no groups yields (nil, nil), distinct from a lookup fault.
type GroupFinder interface {
	FindEarliestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Group, error)
}

// BookmarkCreator persists a bookmark as one atomic create.
type BookmarkCreator interface {
	Create(ctx context.Context, b models.Bookmark) (models.Bookmark, error)
}

// Handler orchestrates capture: origin gate, session check, input
// validation, default-group resolution, metadata enrichment, persist.
type Handler struct {
	Groups    GroupFinder
	Bookmarks BookmarkCreator
	Meta      urlmeta.Fetcher
	Origins   *origin.Policy
	Log       *zap.Logger
}

// NewHandler constructs the capture handler.
func NewHandler(groups GroupFinder, bookmarks BookmarkCreator, meta urlmeta.Fetcher, origins *origin.Policy, logger *zap.Logger) *Handler {
	return &Handler{
		Groups:    groups,
		Bookmarks: bookmarks,
		Meta:      meta,
		Origins:   origins,
		Log:       logger,
	}
}

// captureRequest is the POST body. Title is the page title the extension
// already has on hand; when present it beats anything we fetch.
type captureRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type capturedBookmark struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	GroupName string `json:"groupName"`
}

type captureResponse struct {
	Success  bool             `json:"success"`
	Bookmark capturedBookmark `json:"bookmark"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Preflight handles OPTIONS. Preflight itself always succeeds; the
// CORS headers carry the verdict, and the POST gate enforces it.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	h.Origins.Apply(w, r.Header.Get("Origin"))
	w.WriteHeader(http.StatusNoContent)
}

// Capture handles POST. Every response, including rejections, carries the
// CORS headers so the extension can read the error body.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	reqOrigin := r.Header.Get("Origin")
	h.Origins.Apply(w, reqOrigin)

	if !h.Origins.Allowed(reqOrigin) {
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error: "Forbidden", Message: "Origin not allowed",
		})
		return
	}

	user, ok := auth.CurrentUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "Unauthorized", Message: "Please log in to save bookmarks",
		})
		return
	}

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validURL(req.URL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Bad Request", Message: "Invalid URL provided",
		})
		return
	}

	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		h.Log.Error("capture: malformed user id in session", zap.String("user_id", user.ID))
		h.serverError(w)
		return
	}

	gctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	group, err := h.Groups.FindEarliestByUser(gctx, userID)
	if err != nil {
		h.Log.Error("capture: default group lookup failed",
			zap.String("user_id", user.ID), zap.Error(err))
		h.serverError(w)
		return
	}
	if group == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "No Group", Message: "No bookmark group found. Please create one first.",
		})
		return
	}

	normalized := normalize.URL(req.URL)

	// Enrichment is best effort: a dead page still deserves a bookmark.
	fctx, cancel := context.WithTimeout(r.Context(), timeouts.Fetch())
	defer cancel()
	meta, err := h.Meta.Fetch(fctx, normalized)
	if err != nil {
		h.Log.Debug("capture: metadata fetch failed", zap.String("url", normalized), zap.Error(err))
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
		h.Log.Error("capture: bookmark create failed",
			zap.String("user_id", user.ID), zap.String("url", normalized), zap.Error(err))
		h.serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, captureResponse{
		Success: true,
		Bookmark: capturedBookmark{
			ID:        bookmark.ID.Hex(),
			Title:     bookmark.Title,
			URL:       bookmark.URL,
			GroupName: group.Name,
		},
	})
}

func (h *Handler) serverError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "Server Error", Message: "Failed to save bookmark",
	})
}

// validURL requires an absolute URL with a scheme and host, the same bar
// the web app's own save form applies.
func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
