package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/dicearena-go/internal/api/apierr"
	"github.com/mcoot/dicearena-go/internal/api/handler"
	"github.com/mcoot/dicearena-go/internal/api/response"
	"github.com/mcoot/dicearena-go/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	Arena  handler.ArenaViews
	// WebSocket serves /ws (optional)
	WebSocket http.Handler
	// Clients reports open WebSocket connections (optional)
	Clients func() int
	// Gatherer backs /metrics (optional)
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	arenaHandler := handler.NewArenaHandler(cfg.Arena, cfg.Clients)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, apiPanicHandler)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/lobby", arenaHandler.Lobby).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", arenaHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", arenaHandler.Player).Methods(http.MethodGet)
	api.HandleFunc("/stats", arenaHandler.Stats).Methods(http.MethodGet)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if cfg.WebSocket != nil {
		r.Handle("/ws", loggingMiddleware(cfg.WebSocket)).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

// apiPanicHandler returns JSON error responses on panic
func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
