package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// SystemHandler provides the health check endpoint.
type SystemHandler struct {
	started time.Time
	now     func() time.Time
}

// NewSystemHandler creates a new SystemHandler. Uptime is measured from
// started.
func NewSystemHandler(started time.Time) *SystemHandler {
	return &SystemHandler{started: started, now: time.Now}
}

// Routes registers all system routes on the given chi router.
func (h *SystemHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
}

type healthResponse struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

// Health reports that the service is up, with the current time and the
// process uptime in seconds.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, healthResponse{
		Success:   true,
		Message:   "Simple CRUD API is running",
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:    now.Sub(h.started).Seconds(),
	})
}
