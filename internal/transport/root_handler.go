package transport

import (
	"context"
	"net/http"

	"inventory-api/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// WelcomeMessage is served on the API root
const WelcomeMessage = "Welcome to Inventory Management System"

// HealthChecker reports the state of the backing store
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// RootHandler serves the welcome and health endpoints
type RootHandler struct {
	health HealthChecker
}

// NewRootHandler creates a new RootHandler
func NewRootHandler(health HealthChecker) *RootHandler {
	return &RootHandler{health: health}
}

// RegisterRoutes registers the root routes
func (h *RootHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Welcome)
	r.Get("/health", h.Health)
}

// Welcome answers with the JSON-encoded welcome string
func (h *RootHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, WelcomeMessage)
}

// Health answers 200 while the store is up and 503 otherwise
func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.health.Health(r.Context())
	if stats["status"] != "up" {
		middleware.RespondWithJSON(w, http.StatusServiceUnavailable, stats)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
