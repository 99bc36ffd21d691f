// internal/app/features/extension/routes.go
package extension

import "github.com/go-chi/chi/v5"

// Routes returns the capture endpoint subrouter. Mounted under
// /bookmark-ingest; auth is checked inside the handler (not via
// RequireSignedIn) because the 401 body and CORS headers are part of the
// endpoint's contract with the extension.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Options("/", h.Preflight)
	r.Post("/", h.Capture)
	return r
}
