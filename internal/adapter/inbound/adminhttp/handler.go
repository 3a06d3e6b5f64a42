// Package adminhttp serves the small operational surface next to the SSE
// transport: liveness, connection status and a manual reconnect trigger.
package adminhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"odoo-mcp/internal/usecase"
)

// Handlers holds dependencies for the admin HTTP handlers.
type Handlers struct {
	service       *usecase.OdooService
	serverName    string
	serverVersion string
	logger        *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(service *usecase.OdooService, serverName, serverVersion string, logger *slog.Logger) *Handlers {
	return &Handlers{
		service:       service,
		serverName:    serverName,
		serverVersion: serverVersion,
		logger:        logger.With("component", "adminhttp"),
	}
}

// Router builds the chi router for the admin endpoints.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.handleHealthz)
	r.Get("/status", h.handleStatus)
	r.Post("/admin/reconnect", h.handleReconnect)
	return r
}

func (h *Handlers) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Connected bool   `json:"connected"`
}

func (h *Handlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Name:      h.serverName,
		Version:   h.serverVersion,
		Connected: h.service.Connected(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("Failed to write status response.", slog.Any("error", err))
	}
}

func (h *Handlers) handleReconnect(w http.ResponseWriter, r *http.Request) {
	version, err := h.service.Connect(r.Context())
	if err != nil {
		h.logger.Error("Reconnect failed.", slog.Any("error", err))
		http.Error(w, "failed to connect to Odoo", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":       "connected",
		"server_serie": version.Series,
	})
}
