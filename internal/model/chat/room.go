package chat

import "time"

// Room captures the chat channel attached to a live match.
type Room struct {
	ID        string    `json:"id"`
	Players   [2]string `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}
