package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/pong-duel/backend/internal/model/chat"
)

var (
	ErrRoomRequired = errors.New("room id is required")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

// MaxMessageRunes bounds a single chat line.
const MaxMessageRunes = chat.MaxTextRunes

// Service keeps the chat transcript of every live room in memory.
type Service struct {
	mu       sync.RWMutex
	rooms    map[string]chat.Room
	messages map[string][]chat.Message
}

// NewService bootstraps an empty transcript store.
func NewService() *Service {
	return &Service{
		rooms:    make(map[string]chat.Room),
		messages: make(map[string][]chat.Message),
	}
}

// OpenRoom starts a transcript for a freshly matched room.
func (s *Service) OpenRoom(_ context.Context, roomID string, players [2]string) (chat.Room, error) {
	if roomID == "" {
		return chat.Room{}, ErrRoomRequired
	}

	room := chat.Room{
		ID:        roomID,
		Players:   players,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; ok {
		return chat.Room{}, ErrRoomExists
	}
	s.rooms[roomID] = room
	s.messages[roomID] = make([]chat.Message, 0, 16)

	return room, nil
}

// SaveMessage appends a message to the room history, truncating overlong text.
func (s *Service) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.RoomID == "" {
		return chat.Message{}, ErrRoomNotFound
	}

	message.Text = chat.TruncateText(message.Text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[message.RoomID]; !ok {
		return chat.Message{}, ErrRoomNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.RoomID] = append(s.messages[message.RoomID], message)
	return message, nil
}

// GetRoom retrieves a room by identifier.
func (s *Service) GetRoom(_ context.Context, roomID string) (chat.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return chat.Room{}, ErrRoomNotFound
	}
	return room, nil
}

// LoadTranscript returns stored messages for the provided room.
func (s *Service) LoadTranscript(_ context.Context, roomID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// CloseRoom drops the transcript of a destroyed room. Unknown ids are ignored.
func (s *Service) CloseRoom(_ context.Context, roomID string) {
	s.mu.Lock()
	delete(s.rooms, roomID)
	delete(s.messages, roomID)
	s.mu.Unlock()
}
