package chat

import "time"

// Message is one line of a room's chat, either typed by a player or emitted
// by the session as a system notice (empty Author).
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MaxTextRunes bounds a single chat line.
const MaxTextRunes = 500

// TruncateText cuts text to MaxTextRunes runes.
func TruncateText(text string) string {
	if runes := []rune(text); len(runes) > MaxTextRunes {
		return string(runes[:MaxTextRunes])
	}
	return text
}
