// Package httptransport is the thin HTTP layer: action ingest from host
// processes, manager status and operational endpoints. No business logic
// lives here.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/internal/activity"
	"vigil/internal/activity/manager"
	"vigil/internal/registry"
)

type Handler struct {
	registry *registry.Registry
	manager  *manager.Manager
	logger   *slog.Logger
}

func NewHandler(reg *registry.Registry, mgr *manager.Manager, logger *slog.Logger) *Handler {
	return &Handler{registry: reg, manager: mgr, logger: logger}
}

// NewRouter wires all endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/v1/actions", h.HandleIngest)
	r.Get("/v1/manager/status", h.HandleStatus)
	r.Get("/healthz", h.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// HandleIngest accepts one user action and fans it out to the registered
// listeners. The caller gets a 202 immediately; listener processing is
// fire-and-forget and its failures never surface here.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var action activity.UserAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		h.logger.WarnContext(r.Context(), "rejecting malformed action",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed action"})
		return
	}

	enrichOrigin(&action, r)

	// Detach from the request context so an early client disconnect does
	// not cancel settings fetch or stream persistence mid-pipeline.
	go h.registry.Notify(context.WithoutCancel(r.Context()), action)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// enrichOrigin fills transport-derived origin fields the producer left
// blank. The socket discriminator is always the producer's call.
func enrichOrigin(action *activity.UserAction, r *http.Request) {
	origin := &action.User.Origin
	if origin.IP == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		origin.IP = host
	}
	if origin.UserAgent == "" {
		if raw := r.UserAgent(); raw != "" {
			ua := useragent.New(raw)
			name, version := ua.Browser()
			if name != "" {
				origin.UserAgent = name + "/" + version
			} else {
				origin.UserAgent = raw
			}
		}
	}
	if origin.Referer == "" {
		origin.Referer = r.Referer()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
