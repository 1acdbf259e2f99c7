package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/dicearena-go/internal/model"
)

const playHelp = `Commands:
  invite <id>     invite a player to a match
  accept [id]     accept the latest invite, or the one from id
  decline [id]    decline the latest invite, or the one from id
  roll            roll the die in the current match
  help            show this help
  quit            leave the arena`

func newPlayCmd() *cobra.Command {
	var login model.LoginRequest
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join the arena and play interactively",
		Long: `Open a WebSocket session, log in and read commands from stdin.

` + playHelp + `

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if login.Name == "" {
				login.Name = string(login.ID)
			}
			return play(cmd.Context(), login, os.Stdin, cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().StringVar((*string)(&login.ID), "id", "", "Player id (required)")
	cmd.Flags().StringVar(&login.Name, "name", "", "Display name (default: the id)")
	cmd.Flags().StringVar(&login.Avatar, "avatar", "", "Avatar identifier")
	cmd.Flags().IntVar(&login.Balance, "balance", 1000, "Balance to report at login")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// frame is a single event on the arena socket
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newFrame(event model.EventType, payload any) (frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return frame{}, err
	}
	return frame{Event: string(event), Payload: data}, nil
}

// playState remembers what short commands refer to
type playState struct {
	mu      sync.Mutex
	inviter model.PlayerID
	match   model.MatchID
}

// observe updates the state from an incoming frame
func (s *playState) observe(f frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch model.EventType(f.Event) {
	case model.EventReceiveInvite:
		var p model.ReceiveInvitePayload
		if json.Unmarshal(f.Payload, &p) == nil {
			s.inviter = p.FromID
		}
	case model.EventGameStart:
		var p model.GameStartPayload
		if json.Unmarshal(f.Payload, &p) == nil {
			s.match = p.GameID
			s.inviter = ""
		}
	case model.EventGameOver:
		s.match = ""
	}
}

var errQuit = errors.New("quit")

// command turns a line of user input into a frame. A zero frame with no
// error means there is nothing to send.
func (s *playState) command(line string) (frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return frame{}, nil
	}

	arg := func() string {
		if len(fields) > 1 {
			return fields[1]
		}
		return ""
	}

	switch strings.ToLower(fields[0]) {
	case "invite":
		if arg() == "" {
			return frame{}, errors.New("usage: invite <id>")
		}
		return newFrame(model.EventSendInvite, arg())
	case "accept", "decline":
		from := model.PlayerID(arg())
		if from == "" {
			from = s.inviter
		}
		if from == "" {
			return frame{}, errors.New("no pending invite")
		}
		accepted := strings.ToLower(fields[0]) == "accept"
		if s.inviter == from {
			s.inviter = ""
		}
		return newFrame(model.EventInviteResponse, model.InviteResponsePayload{
			FromID:   from,
			Accepted: accepted,
		})
	case "roll":
		if s.match == "" {
			return frame{}, errors.New("not in a match")
		}
		return newFrame(model.EventRollDice, s.match)
	case "quit", "exit":
		return frame{}, errQuit
	default:
		return frame{}, fmt.Errorf("unknown command %q, type help", fields[0])
	}
}

func play(ctx context.Context, login model.LoginRequest, in io.Reader, w io.Writer, jsonOutput bool) error {
	if login.ID == "" {
		return errors.New("player id is required")
	}

	wsURL, err := cfg.WebSocketURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	state := &playState{}

	loginFrame, err := newFrame(model.EventLogin, login)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(loginFrame); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if !jsonOutput {
		_, _ = fmt.Fprintf(w, "Connected to %s as %s\n%s\n", wsURL, login.ID, playHelp)
	}

	// reader
	readErr := make(chan error, 1)
	go func() {
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				readErr <- err
				return
			}
			state.observe(f)
			printFrame(w, f, login.ID, jsonOutput)
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return closeSession(conn, w, jsonOutput)
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					_, _ = fmt.Fprintln(w, "Server closed the connection")
				}
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		case line, ok := <-lines:
			if !ok {
				return closeSession(conn, w, jsonOutput)
			}
			if strings.TrimSpace(line) == "help" {
				_, _ = fmt.Fprintln(w, playHelp)
				continue
			}
			f, err := state.command(line)
			if errors.Is(err, errQuit) {
				return closeSession(conn, w, jsonOutput)
			}
			if err != nil {
				_, _ = fmt.Fprintf(w, "Error: %s\n", err)
				continue
			}
			if f.Event == "" {
				continue
			}
			if err := conn.WriteJSON(f); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

func closeSession(conn *websocket.Conn, w io.Writer, jsonOutput bool) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	if !jsonOutput {
		_, _ = fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// eventLine is a JSON line in --json mode
type eventLine struct {
	Time    time.Time       `json:"time"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func printFrame(w io.Writer, f frame, me model.PlayerID, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(eventLine{Time: now, Event: f.Event, Payload: f.Payload})
		_, _ = fmt.Fprintln(w, string(data))
		return
	}

	_, _ = fmt.Fprintf(w, "[%s] %s\n", now.Format("15:04:05"), describeFrame(f, me))
}

// describeFrame renders an event as a single human readable line
func describeFrame(f frame, me model.PlayerID) string {
	switch model.EventType(f.Event) {
	case model.EventUpdatePlayerList:
		var players []model.PlayerView
		if json.Unmarshal(f.Payload, &players) == nil {
			names := make([]string, 0, len(players))
			for _, p := range players {
				if p.ID != me {
					names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.ID))
				}
			}
			if len(names) == 0 {
				return "lobby: nobody else is available"
			}
			return "lobby: " + strings.Join(names, ", ")
		}
	case model.EventUpdateLeaderboard:
		var players []model.PlayerView
		if json.Unmarshal(f.Payload, &players) == nil {
			ranks := make([]string, len(players))
			for i, p := range players {
				ranks[i] = fmt.Sprintf("%d. %s %d", i+1, p.Name, p.Balance)
			}
			return "leaderboard: " + strings.Join(ranks, " | ")
		}
	case model.EventReceiveInvite:
		var p model.ReceiveInvitePayload
		if json.Unmarshal(f.Payload, &p) == nil {
			return fmt.Sprintf("invite from %s (%s), type accept or decline", p.FromName, p.FromID)
		}
	case model.EventErrorMsg:
		var msg string
		if json.Unmarshal(f.Payload, &msg) == nil {
			return "! " + msg
		}
	case model.EventGameStart:
		var p model.GameStartPayload
		if json.Unmarshal(f.Payload, &p) == nil {
			return fmt.Sprintf("match %s against %s started, type roll", p.GameID, p.Opponent.Name)
		}
	case model.EventRollResult:
		var p model.RollResultPayload
		if json.Unmarshal(f.Payload, &p) == nil {
			who := string(p.Roller)
			if p.Roller == me {
				who = "you"
			}
			return fmt.Sprintf("%s rolled %d", who, p.Roll)
		}
	case model.EventHealthUpdate:
		var p model.HealthUpdatePayload
		if json.Unmarshal(f.Payload, &p) == nil {
			return fmt.Sprintf("hp %d vs %d: %s", p.MyHP, p.OppHP, p.Msg)
		}
	case model.EventNextRound:
		return "next round, type roll"
	case model.EventGameOver:
		var p model.GameOverPayload
		if json.Unmarshal(f.Payload, &p) == nil {
			result := "you lost"
			if p.Won {
				result = "you won"
			}
			return fmt.Sprintf("%s, balance now %d", result, p.NewBalance)
		}
	}
	return fmt.Sprintf("%s %s", f.Event, string(f.Payload))
}
