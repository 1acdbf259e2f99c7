package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(os.Stderr, string(data))
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Lobby:
		o.printLobby(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case Stats:
		o.printStats(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Balance int    `json:"balance"`
	Status  string `json:"status,omitempty"`
}

// Lobby is the list of players open to invites
type Lobby []Player

// Leaderboard is the ranked list of top balances
type Leaderboard []Player

// Stats response type
type Stats struct {
	ActiveMatches    int `json:"active_matches"`
	ConnectedClients int `json:"connected_clients"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	if p.Avatar != "" {
		_, _ = fmt.Fprintf(o.w, "Avatar: %s\n", p.Avatar)
	}
	_, _ = fmt.Fprintf(o.w, "Balance: %d\n", p.Balance)
	if p.Status != "" {
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", p.Status)
	}
}

func (o *Output) printLobby(l Lobby) {
	if len(l) == 0 {
		_, _ = fmt.Fprintln(o.w, "Nobody is waiting in the lobby")
		return
	}
	_, _ = fmt.Fprintf(o.w, "Available players (%d):\n", len(l))
	for _, p := range l {
		_, _ = fmt.Fprintf(o.w, "  - %s (%s) %d\n", p.Name, p.ID, p.Balance)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l) == 0 {
		_, _ = fmt.Fprintln(o.w, "Leaderboard is empty")
		return
	}
	for i, p := range l {
		_, _ = fmt.Fprintf(o.w, "%2d. %-20s %6d\n", i+1, p.Name, p.Balance)
	}
}

func (o *Output) printStats(s Stats) {
	_, _ = fmt.Fprintf(o.w, "Active matches: %d\n", s.ActiveMatches)
	_, _ = fmt.Fprintf(o.w, "Connected clients: %d\n", s.ConnectedClients)
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
