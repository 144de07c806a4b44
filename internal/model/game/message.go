package game

import "encoding/json"

// Inbound message types sent by a player's client.
const (
	TypeJoinMatchmaking = "join_matchmaking"
	TypePaddleMove      = "paddle_move"
	TypePauseVote       = "pause_vote"
	TypeResumeVote      = "resume_vote"
	TypeChatMessage     = "chat_message"
)

// Outbound event types pushed to a player's client.
const (
	EventWaitingForOpponent   = "waiting_for_opponent"
	EventMatchFound           = "match_found"
	EventOpponentDisconnected = "opponent_disconnected"
	EventPausePendingOther    = "pause_pending_other"
	EventPausePendingBall     = "pause_pending_ball"
	EventPaused               = "paused"
	EventResumePending        = "resume_pending"
	EventCountdown            = "countdown"
	EventResumed              = "resumed"
	EventChatMessage          = "chat_message"
	EventGameState            = "game_state"
	EventError                = "error"
)

// Inbound is the envelope every client frame is decoded into.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RoomRef carries the room a vote is cast in.
type RoomRef struct {
	Room string `json:"room"`
}

// PaddleMove is the client's requested paddle offset.
type PaddleMove struct {
	Room string  `json:"room"`
	Y    float64 `json:"y"`
}

// ChatRequest is a chat line typed by a player.
type ChatRequest struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// Event is a single outbound message. Data is nil for bare notifications.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// MatchFound tells both players which room they were placed in.
type MatchFound struct {
	Room      string    `json:"room"`
	PlayerIDs [2]string `json:"playerIds"`
}

// Countdown is one step of the resume countdown.
type Countdown struct {
	N int `json:"n"`
}

// ChatLine is a chat message as rendered by clients.
type ChatLine struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Color  string `json:"color,omitempty"`
}

// ErrorNotice reports a frame the gateway could not decode.
type ErrorNotice struct {
	Message string `json:"message"`
}
