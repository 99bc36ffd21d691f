// internal/app/features/signup/routes.go
package signup

import "github.com/go-chi/chi/v5"

// Routes returns the signup subrouter. Mounted under /signup.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSignup)
	return r
}
