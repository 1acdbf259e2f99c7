package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/dicearena-go/internal/api/apierr"
	"github.com/mcoot/dicearena-go/internal/api/response"
	"github.com/mcoot/dicearena-go/internal/model"
)

// ArenaViews is the read side of the arena served over HTTP
type ArenaViews interface {
	Lobby(ctx context.Context) ([]model.PlayerView, error)
	Leaderboard(ctx context.Context) ([]model.PlayerView, error)
	Player(ctx context.Context, id model.PlayerID) (model.PlayerView, error)
	ActiveMatches(ctx context.Context) (int, error)
}

// ArenaHandler handles lobby, leaderboard and player endpoints
type ArenaHandler struct {
	views   ArenaViews
	clients func() int
}

// NewArenaHandler creates a new arena handler. clients reports the number
// of open WebSocket connections and may be nil.
func NewArenaHandler(views ArenaViews, clients func() int) *ArenaHandler {
	if clients == nil {
		clients = func() int { return 0 }
	}
	return &ArenaHandler{
		views:   views,
		clients: clients,
	}
}

// Lobby handles GET /api/v1/lobby
func (h *ArenaHandler) Lobby(w http.ResponseWriter, r *http.Request) {
	views, err := h.views.Lobby(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromViews(views))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *ArenaHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	views, err := h.views.Leaderboard(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayersFromViews(views))
}

// Player handles GET /api/v1/players/{id}
func (h *ArenaHandler) Player(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("player id is required"))
		return
	}

	view, err := h.views.Player(r.Context(), model.PlayerID(id))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromView(view))
}

// Stats handles GET /api/v1/stats
func (h *ArenaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	matches, err := h.views.ActiveMatches(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Stats{
		ActiveMatches:    matches,
		ConnectedClients: h.clients(),
	})
}
