// Package protocol defines the JSON messages exchanged between the game
// server and its clients. Every message is a JSON object with a "type" field.
package protocol

import (
	"github.com/vovakirdan/multipong/internal/engine"
	"github.com/vovakirdan/multipong/internal/lobby"
)

// Message types.
const (
	// Client to server.
	TypeInput      = "input"
	TypeChat       = "chat" // both directions
	TypePing       = "ping"
	TypeJoinLobby  = "join_lobby"
	TypeChooseSlot = "choose_slot"
	TypeSetReady   = "set_ready"

	// Server to client.
	TypeConnected   = "connected"
	TypeSnapshot    = "snapshot"
	TypeLobbyUpdate = "lobby_update"
	TypeStartMatch  = "start_match"
	TypeMatchEnd    = "match_end"
	TypeError       = "error"
	TypePong        = "pong"
)

// ClientMessage is a message sent by a client.
type ClientMessage interface {
	clientMessage()
}

// ServerMessage is a message sent by the server.
type ServerMessage interface {
	serverMessage()
}

// Input carries the sender's paddle intent.
type Input struct {
	Type string `json:"type"`
	Up   bool   `json:"up"`
	Down bool   `json:"down"`
}

// NewInput creates an input message.
func NewInput(up, down bool) Input {
	return Input{Type: TypeInput, Up: up, Down: down}
}

// Intent converts the message to a paddle intent.
func (m Input) Intent() engine.Intent {
	return engine.Intent{Up: m.Up, Down: m.Down}
}

func (Input) clientMessage() {}

// Chat is a chat line. Clients send only Message; the server fills
// PlayerID when relaying it.
type Chat struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id,omitempty"`
	Message  string `json:"message"`
}

// NewChat creates a chat message.
func NewChat(playerID, message string) Chat {
	return Chat{Type: TypeChat, PlayerID: playerID, Message: message}
}

func (Chat) clientMessage() {}
func (Chat) serverMessage() {}

// Ping asks the server for a pong carrying the same id.
type Ping struct {
	Type   string `json:"type"`
	PingID string `json:"ping_id,omitempty"`
}

// NewPing creates a ping message.
func NewPing(id string) Ping {
	return Ping{Type: TypePing, PingID: id}
}

func (Ping) clientMessage() {}

// JoinLobby registers the sender's nickname.
type JoinLobby struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name"`
}

// NewJoinLobby creates a join_lobby message.
func NewJoinLobby(name string) JoinLobby {
	return JoinLobby{Type: TypeJoinLobby, PlayerName: name}
}

func (JoinLobby) clientMessage() {}

// ChooseSlot asks to move to a slot.
type ChooseSlot struct {
	Type string `json:"type"`
	Slot string `json:"slot"`
}

// NewChooseSlot creates a choose_slot message.
func NewChooseSlot(slot string) ChooseSlot {
	return ChooseSlot{Type: TypeChooseSlot, Slot: slot}
}

func (ChooseSlot) clientMessage() {}

// SetReady toggles the sender's ready flag.
type SetReady struct {
	Type  string `json:"type"`
	Ready bool   `json:"ready"`
}

// NewSetReady creates a set_ready message.
func NewSetReady(ready bool) SetReady {
	return SetReady{Type: TypeSetReady, Ready: ready}
}

func (SetReady) clientMessage() {}

// Connected confirms a connection and the slot it was given.
type Connected struct {
	Type         string       `json:"type"`
	AssignedSlot string       `json:"assigned_slot"`
	PlayerID     string       `json:"player_id"`
	LobbyStatus  lobby.Status `json:"lobby_status"`
}

// NewConnected creates a connected message.
func NewConnected(playerID, slot string, status lobby.Status) Connected {
	return Connected{Type: TypeConnected, AssignedSlot: slot, PlayerID: playerID, LobbyStatus: status}
}

func (Connected) serverMessage() {}

// Snapshot carries the full match state.
type Snapshot struct {
	Type string `json:"type"`
	engine.Snapshot
}

// NewSnapshot wraps an engine snapshot.
func NewSnapshot(s engine.Snapshot) Snapshot {
	return Snapshot{Type: TypeSnapshot, Snapshot: s}
}

func (Snapshot) serverMessage() {}

// LobbyUpdate carries the lobby slots and ready players.
type LobbyUpdate struct {
	Type string `json:"type"`
	lobby.Update
}

// NewLobbyUpdate wraps a lobby update.
func NewLobbyUpdate(u lobby.Update) LobbyUpdate {
	return LobbyUpdate{Type: TypeLobbyUpdate, Update: u}
}

func (LobbyUpdate) serverMessage() {}

// StartMatch announces that the match starts after Countdown seconds.
type StartMatch struct {
	Type      string `json:"type"`
	Countdown int    `json:"countdown"`
}

// NewStartMatch creates a start_match message.
func NewStartMatch(countdown int) StartMatch {
	return StartMatch{Type: TypeStartMatch, Countdown: countdown}
}

func (StartMatch) serverMessage() {}

// MatchEnd reports the final score when the match clock runs out.
type MatchEnd struct {
	Type            string         `json:"type"`
	Score           map[string]int `json:"score"`
	DurationSeconds float64        `json:"duration_seconds"`
}

// NewMatchEnd creates a match_end message.
func NewMatchEnd(score map[string]int, duration float64) MatchEnd {
	return MatchEnd{Type: TypeMatchEnd, Score: score, DurationSeconds: duration}
}

func (MatchEnd) serverMessage() {}

// Error reports a problem to the client.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError creates an error message.
func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

func (Error) serverMessage() {}

// Pong answers a ping.
type Pong struct {
	Type   string `json:"type"`
	PingID string `json:"ping_id,omitempty"`
}

// NewPong creates a pong message.
func NewPong(id string) Pong {
	return Pong{Type: TypePong, PingID: id}
}

func (Pong) serverMessage() {}
