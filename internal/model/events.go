package model

// EventType names an event on the wire
type EventType string

const (
	// Inbound events
	EventLogin          EventType = "login"
	EventSendInvite     EventType = "sendInvite"
	EventInviteResponse EventType = "inviteResponse"
	EventRollDice       EventType = "rollDice"

	// Broadcast events
	EventUpdatePlayerList  EventType = "updatePlayerList"
	EventUpdateLeaderboard EventType = "updateLeaderboard"

	// Directed events
	EventReceiveInvite EventType = "receiveInvite"
	EventErrorMsg      EventType = "errorMsg"
	EventGameStart     EventType = "gameStart"
	EventRollResult    EventType = "rollResult"
	EventHealthUpdate  EventType = "healthUpdate"
	EventNextRound     EventType = "nextRound"
	EventGameOver      EventType = "gameOver"
)

// Event is a named notification with a type-specific payload.
// A nil Payload is sent as an event with no data.
type Event struct {
	Type    EventType
	Payload any
}

// PlayerView is the public snapshot of a player used in lobby and leaderboard lists
type PlayerView struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Avatar  string   `json:"avatar"`
	Balance int      `json:"balance"`
	Status  Presence `json:"status,omitempty"`
}

// NewPlayerView builds the public snapshot of a record
func NewPlayerView(p *PlayerRecord, status Presence) PlayerView {
	return PlayerView{
		ID:      p.ID,
		Name:    p.Name,
		Avatar:  p.Avatar,
		Balance: p.Balance,
		Status:  status,
	}
}

// InviteResponsePayload is sent by the invited player
type InviteResponsePayload struct {
	FromID   PlayerID `json:"fromId"`
	Accepted bool     `json:"accepted"`
}

// ReceiveInvitePayload tells the target who is inviting them
type ReceiveInvitePayload struct {
	FromID     PlayerID `json:"fromId"`
	FromName   string   `json:"fromName"`
	FromAvatar string   `json:"fromAvatar"`
}

// GameStartPayload is sent to each participant when a match begins
type GameStartPayload struct {
	GameID   MatchID    `json:"gameId"`
	Opponent PlayerView `json:"opponent"`
}

// RollResultPayload announces a single roll to both participants
type RollResultPayload struct {
	Roller PlayerID `json:"roller"`
	Roll   int      `json:"roll"`
}

// HealthUpdatePayload is mirrored per recipient after each round
type HealthUpdatePayload struct {
	MyHP  int    `json:"myHp"`
	OppHP int    `json:"oppHp"`
	Msg   string `json:"msg"`
}

// GameOverPayload tells a participant the outcome of their match
type GameOverPayload struct {
	Won        bool `json:"won"`
	NewBalance int  `json:"newBalance"`
}
