// internal/app/features/bookmarks/routes.go
package bookmarks

import "github.com/go-chi/chi/v5"

// Routes returns the bookmarks subrouter. Mounted under /bookmarks
// behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Delete("/{bookmarkID}", h.HandleDelete)
	return r
}
