package matchmaking

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/pong-duel/backend/internal/model/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
	"github.com/zhouzirui/pong-duel/backend/internal/service/pong"
)

var (
	ErrAlreadyQueued = errors.New("connection already waiting or in a match")
	ErrRoomNotFound  = errors.New("room not found")
)

// Transcripts keeps the chat history of each live room.
type Transcripts interface {
	pong.Transcript
	OpenRoom(ctx context.Context, roomID string, players [2]string) (chat.Room, error)
	CloseRoom(ctx context.Context, roomID string)
}

// Director pairs waiting connections into sessions and keeps the registry of
// live sessions.
type Director struct {
	ctx    context.Context
	cfg    pong.Config
	notify pong.Notifier
	chat   Transcripts

	mu       sync.RWMutex
	waiting  string
	sessions map[string]*pong.Session
	byConn   map[string]string
	group    errgroup.Group
}

// NewDirector returns a director whose sessions live until ctx is done.
// transcripts may be nil.
func NewDirector(ctx context.Context, cfg pong.Config, notify pong.Notifier, transcripts Transcripts) *Director {
	return &Director{
		ctx:      ctx,
		cfg:      cfg,
		notify:   notify,
		chat:     transcripts,
		sessions: make(map[string]*pong.Session),
		byConn:   make(map[string]string),
	}
}

// RequestMatch queues conn, or pairs it with the connection already waiting
// and starts their session.
func (d *Director) RequestMatch(conn string) (*pong.Session, error) {
	d.mu.Lock()
	if d.waiting == conn {
		d.mu.Unlock()
		return nil, ErrAlreadyQueued
	}
	if _, busy := d.byConn[conn]; busy {
		d.mu.Unlock()
		return nil, ErrAlreadyQueued
	}

	if d.waiting == "" {
		d.waiting = conn
		d.mu.Unlock()
		log.Printf("[director] conn=%s waiting for opponent", conn)
		d.notify.Send(conn, game.Event{Type: game.EventWaitingForOpponent})
		return nil, nil
	}

	players := [2]string{d.waiting, conn}
	d.waiting = ""
	roomID := uuid.NewString()
	var transcript pong.Transcript
	if d.chat != nil {
		transcript = d.chat
	}
	session := pong.NewSession(roomID, players, d.cfg, d.notify, transcript)
	d.sessions[roomID] = session
	d.byConn[players[0]] = roomID
	d.byConn[players[1]] = roomID
	d.mu.Unlock()

	if d.chat != nil {
		if _, err := d.chat.OpenRoom(d.ctx, roomID, players); err != nil {
			log.Printf("[director] room=%s open transcript failed: %v", roomID, err)
		}
	}

	log.Printf("[director] room=%s matched %s vs %s", roomID, players[0], players[1])
	found := game.Event{Type: game.EventMatchFound, Data: game.MatchFound{Room: roomID, PlayerIDs: players}}
	d.notify.Send(players[0], found)
	d.notify.Send(players[1], found)

	d.group.Go(func() error {
		session.Run(d.ctx)
		d.remove(session)
		return nil
	})

	return session, nil
}

// Cancel withdraws conn from the waiting slot. Other connections are ignored.
func (d *Director) Cancel(conn string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.waiting == conn {
		d.waiting = ""
	}
}

// Disconnect handles a closed connection: it leaves the queue and its
// session, if any, hands the slot to the AI.
func (d *Director) Disconnect(conn string) {
	d.Cancel(conn)
	if s, ok := d.SessionOf(conn); ok {
		s.Disconnect(conn)
	}
}

// Waiting returns the connection waiting for an opponent, if any.
func (d *Director) Waiting() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.waiting, d.waiting != ""
}

// Session looks up a live session by room id.
func (d *Director) Session(roomID string) (*pong.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s, nil
}

// SessionOf returns the live session conn plays in.
func (d *Director) SessionOf(conn string) (*pong.Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	roomID, ok := d.byConn[conn]
	if !ok {
		return nil, false
	}
	s, ok := d.sessions[roomID]
	return s, ok
}

// Summaries lists live sessions ordered by room id.
func (d *Director) Summaries() []game.RoomSummary {
	d.mu.RLock()
	out := make([]game.RoomSummary, 0, len(d.sessions))
	for _, s := range d.sessions {
		out = append(out, s.Summary())
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Wait blocks until every session has stopped.
func (d *Director) Wait() {
	_ = d.group.Wait()
}

func (d *Director) remove(s *pong.Session) {
	d.mu.Lock()
	delete(d.sessions, s.ID())
	for _, p := range s.Players() {
		if d.byConn[p] == s.ID() {
			delete(d.byConn, p)
		}
	}
	d.mu.Unlock()

	if d.chat != nil {
		d.chat.CloseRoom(d.ctx, s.ID())
	}
	log.Printf("[director] room=%s removed", s.ID())
}
