package response

import (
	"github.com/mcoot/dicearena-go/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Balance int    `json:"balance"`
	Status  string `json:"status,omitempty"`
}

// PlayerFromView converts a model.PlayerView to a response Player
func PlayerFromView(v model.PlayerView) Player {
	return Player{
		ID:      string(v.ID),
		Name:    v.Name,
		Avatar:  v.Avatar,
		Balance: v.Balance,
		Status:  string(v.Status),
	}
}

// PlayersFromViews converts a list of views, never returning nil
func PlayersFromViews(views []model.PlayerView) []Player {
	players := make([]Player, len(views))
	for i, v := range views {
		players[i] = PlayerFromView(v)
	}
	return players
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}

// Stats summarises live arena activity
type Stats struct {
	ActiveMatches    int `json:"active_matches"`
	ConnectedClients int `json:"connected_clients"`
}
