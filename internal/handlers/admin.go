package handlers

import (
	"net/http"

	"github.com/alfagnish/simple-crud/internal/users"
	"github.com/go-chi/chi/v5"
)

// AdminHandler exposes maintenance operations on the store.
type AdminHandler struct {
	store *users.Store
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store *users.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// Routes registers admin routes on the given chi router.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Post("/reset", h.Reset)
}

// Reset restores the seed data.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	n := h.store.Reset(r.Context())
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Store reset to seed data", Count: &n})
}
