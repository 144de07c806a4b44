package pong

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/pong-duel/backend/internal/model/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
)

var (
	ErrInvalidTickRate = errors.New("tick rate must be positive")
	ErrInvalidDuration = errors.New("timing values must be positive")
)

// Notice colours used for system chat lines.
const (
	colorVote   = "#FFD600"
	colorAlert  = "#D32F2F"
	colorResume = "#00ff00"
)

const inboxSize = 64

// Notifier delivers outbound events to a connection. Send must not block.
type Notifier interface {
	Send(connID string, ev game.Event)
}

// Transcript records chat lines for a room.
type Transcript interface {
	SaveMessage(ctx context.Context, msg chat.Message) (chat.Message, error)
}

// Config holds the timing of a session.
type Config struct {
	TickRate      int
	VoteTimeout   time.Duration
	CountdownStep time.Duration
	SpeedInterval time.Duration
	GoalFreeze    time.Duration
}

// DefaultConfig returns the stock 60Hz timing.
func DefaultConfig() Config {
	return Config{
		TickRate:      60,
		VoteTimeout:   60 * time.Second,
		CountdownStep: 800 * time.Millisecond,
		SpeedInterval: time.Second,
		GoalFreeze:    time.Second,
	}
}

// Validate rejects non-positive timing.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return ErrInvalidTickRate
	}
	if c.VoteTimeout <= 0 || c.CountdownStep <= 0 || c.SpeedInterval <= 0 || c.GoalFreeze < 0 {
		return ErrInvalidDuration
	}
	return nil
}

func (c Config) tickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c Config) freezeTicks() int {
	return int(c.GoalFreeze / c.tickInterval())
}

// Session owns one match. All state below inbox is touched only by the run
// loop; inbound calls are queued as commands and applied between ticks.
type Session struct {
	id      string
	players [2]string
	cfg     Config
	notify  Notifier
	chat    Transcript
	rng     Rand
	ai      Controller

	inbox chan func(*Session, time.Time)
	done  chan struct{}

	field      Field
	aiActive   [2]bool
	aiVelocity [2]float64
	votes      *Negotiator

	mu      sync.RWMutex
	summary game.RoomSummary
}

// NewSession builds a session for two matched connections. chat may be nil.
func NewSession(id string, players [2]string, cfg Config, notify Notifier, transcript Transcript) *Session {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(len(id))))
	return newSession(id, players, cfg, notify, transcript, rng)
}

func newSession(id string, players [2]string, cfg Config, notify Notifier, transcript Transcript, rng Rand) *Session {
	s := &Session{
		id:      id,
		players: players,
		cfg:     cfg,
		notify:  notify,
		chat:    transcript,
		rng:     rng,
		ai:      NewController(rng),
		inbox:   make(chan func(*Session, time.Time), inboxSize),
		done:    make(chan struct{}),
		field:   NewField(),
		votes:   NewNegotiator(cfg.VoteTimeout, cfg.CountdownStep),
	}
	s.publish()
	return s
}

// ID returns the room identifier.
func (s *Session) ID() string { return s.id }

// Players returns the connection ids in slot order.
func (s *Session) Players() [2]string { return s.players }

// Done is closed once the session has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Summary returns the state published after the last tick or command.
func (s *Session) Summary() game.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Run drives the tick loop until both players are gone or ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	tick := time.NewTicker(s.cfg.tickInterval())
	defer tick.Stop()
	speed := time.NewTicker(s.cfg.SpeedInterval)
	defer speed.Stop()

	log.Printf("[match] room=%s started players=%s,%s", s.id, s.players[0], s.players[1])
	defer func() {
		log.Printf("[match] room=%s finished scores=%d-%d", s.id, s.field.Scores[0], s.field.Scores[1])
	}()

	s.pushState()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.inbox:
			cmd(s, time.Now())
			s.publish()
			if s.abandoned() {
				return
			}
		case <-speed.C:
			s.field = Escalate(s.field)
		case now := <-tick.C:
			if !s.step(now) {
				return
			}
		}
	}
}

// Move sets the paddle of the connection's slot.
func (s *Session) Move(connID string, y float64) {
	s.post(connID, func(s *Session, slot int, _ time.Time) { s.move(slot, y) })
}

// VotePause casts a pause vote for the connection's slot.
func (s *Session) VotePause(connID string) {
	s.post(connID, (*Session).votePause)
}

// VoteResume casts a resume vote for the connection's slot.
func (s *Session) VoteResume(connID string) {
	s.post(connID, (*Session).voteResume)
}

// Chat broadcasts a player's chat line to the room.
func (s *Session) Chat(connID, text string) {
	s.post(connID, func(s *Session, slot int, _ time.Time) { s.chatFrom(slot, text) })
}

// Disconnect hands the connection's slot to the AI. Repeated calls are no-ops.
func (s *Session) Disconnect(connID string) {
	s.post(connID, func(s *Session, slot int, _ time.Time) { s.disconnect(slot) })
}

// post queues fn for the run loop. Messages from non-members or for a
// finished session are dropped.
func (s *Session) post(connID string, fn func(*Session, int, time.Time)) {
	slot := s.slotOf(connID)
	if slot < 0 {
		return
	}
	cmd := func(s *Session, now time.Time) { fn(s, slot, now) }

	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.inbox <- cmd:
	case <-s.done:
	}
}

func (s *Session) slotOf(connID string) int {
	for i, p := range s.players {
		if p != "" && p == connID {
			return i
		}
	}
	return -1
}

func (s *Session) abandoned() bool {
	return s.aiActive[0] && s.aiActive[1]
}

// step runs one tick and reports whether the session is still alive.
func (s *Session) step(now time.Time) bool {
	if s.votes.PauseIfAtWall(TouchingWall(s.field.Ball)) {
		log.Printf("[match] room=%s paused", s.id)
		s.broadcast(game.Event{Type: game.EventPaused})
		s.broadcastNotice("Game paused.", colorVote)
	} else if s.votes.Phase() == PhasePauseRequested {
		s.broadcast(game.Event{Type: game.EventPausePendingBall})
	}

	if round, ok := s.votes.Expire(now); ok {
		s.broadcastNotice(fmt.Sprintf("%s vote expired after %d seconds.", round, int(s.cfg.VoteTimeout.Seconds())), colorVote)
	}

	if s.votes.Phase().Frozen() {
		s.advanceCountdown(now)
	} else {
		for i := range s.aiActive {
			if s.aiActive[i] {
				s.field.Paddles[i], s.aiVelocity[i] = s.ai.Steer(i, s.field.Paddles[i], s.aiVelocity[i], s.field.Ball, s.field.SpeedMultiplier)
			}
		}
		s.field, _ = Step(s.field, s.rng, s.cfg.freezeTicks())
	}

	s.pushState()
	s.publish()

	return !s.abandoned()
}

func (s *Session) advanceCountdown(now time.Time) {
	n, resumed := s.votes.Countdown(now)
	switch {
	case resumed:
		log.Printf("[match] room=%s resumed", s.id)
		s.broadcast(game.Event{Type: game.EventResumed})
		s.broadcastNotice("Game resumed!", colorResume)
	case n > 0:
		s.broadcast(game.Event{Type: game.EventCountdown, Data: game.Countdown{N: n}})
		s.broadcastNotice(fmt.Sprintf("Resuming in %d...", n), colorVote)
	}
}

func (s *Session) move(slot int, y float64) {
	if s.aiActive[slot] || s.votes.Phase().Frozen() {
		return
	}
	s.field.Paddles[slot] = ClampPaddle(y)
}

func (s *Session) votePause(slot int, now time.Time) {
	if s.aiActive[slot] {
		return
	}
	other := 1 - slot
	tally := s.votes.CastPause(slot, s.aiActive[other], now)

	switch tally.Outcome {
	case OutcomeSatisfied:
		if tally.Solo {
			s.notice(slot, "Pause vote auto-confirmed (no other player connected).", colorVote)
		}
		s.broadcastNotice(fmt.Sprintf("Pause votes: %d/%d", tally.Votes, tally.Needed), colorVote)
		s.broadcast(game.Event{Type: game.EventPausePendingBall})
	case OutcomePartial:
		s.notice(slot, "Pause vote sent. Waiting for the other player to vote...", colorVote)
		s.notice(other, "Pause vote received. Press pause to vote.", colorVote)
		s.broadcastNotice(fmt.Sprintf("Pause votes: %d/%d", tally.Votes, tally.Needed), colorVote)
		s.send(slot, game.Event{Type: game.EventPausePendingOther})
	}
}

func (s *Session) voteResume(slot int, now time.Time) {
	if s.aiActive[slot] {
		return
	}
	other := 1 - slot
	tally := s.votes.CastResume(slot, s.aiActive[other], now)

	switch tally.Outcome {
	case OutcomeSatisfied:
		if tally.Solo {
			s.notice(slot, "Resume vote auto-confirmed (no other player connected).", colorVote)
		}
		s.broadcastNotice(fmt.Sprintf("Resume votes: %d/%d", tally.Votes, tally.Needed), colorVote)
		s.send(slot, game.Event{Type: game.EventResumePending})
	case OutcomePartial:
		s.notice(slot, "Resume vote sent. Waiting for the other player to vote...", colorVote)
		s.notice(other, "Resume vote received. Press resume to vote.", colorVote)
		s.broadcastNotice(fmt.Sprintf("Resume votes: %d/%d", tally.Votes, tally.Needed), colorVote)
		s.send(slot, game.Event{Type: game.EventResumePending})
	}
}

func (s *Session) chatFrom(slot int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	line := game.ChatLine{Text: chat.TruncateText(text), Author: fmt.Sprintf("Player %d", slot+1)}
	s.record(line)
	s.broadcast(game.Event{Type: game.EventChatMessage, Data: line})
}

func (s *Session) disconnect(slot int) {
	if s.aiActive[slot] {
		return
	}
	s.aiActive[slot] = true
	s.aiVelocity[slot] = 0
	log.Printf("[match] room=%s slot=%d disconnected, ai takeover", s.id, slot)

	s.broadcast(game.Event{Type: game.EventOpponentDisconnected})
	s.broadcastNotice("Opponent disconnected. AI will take over!", colorAlert)

	round, ok := s.votes.Forfeit(slot)
	if !ok {
		return
	}
	s.broadcastNotice(fmt.Sprintf("%s vote auto-confirmed (opponent disconnected).", round), colorVote)
	if round == RoundPause {
		s.broadcast(game.Event{Type: game.EventPausePendingBall})
	} else {
		s.broadcast(game.Event{Type: game.EventResumePending})
	}
}

func (s *Session) pushState() {
	for slot := range s.players {
		if !s.aiActive[slot] {
			s.send(slot, game.Event{Type: game.EventGameState, Data: Mirror(s.field, slot)})
		}
	}
}

// Mirror renders the field from slot's point of view: slot 1 sees the world
// flipped horizontally with the score order swapped.
func Mirror(f Field, slot int) game.State {
	if slot == 0 {
		return game.State{
			Ball:           f.Ball,
			MyPaddle:       f.Paddles[0],
			OpponentPaddle: f.Paddles[1],
			Scores:         f.Scores,
		}
	}
	return game.State{
		Ball: game.Ball{
			X:  WorldWidth - f.Ball.X,
			Y:  f.Ball.Y,
			VX: -f.Ball.VX,
			VY: f.Ball.VY,
		},
		MyPaddle:       f.Paddles[1],
		OpponentPaddle: f.Paddles[0],
		Scores:         [2]int{f.Scores[1], f.Scores[0]},
	}
}

func (s *Session) send(slot int, ev game.Event) {
	if s.aiActive[slot] || s.notify == nil {
		return
	}
	s.notify.Send(s.players[slot], ev)
}

func (s *Session) broadcast(ev game.Event) {
	for slot := range s.players {
		s.send(slot, ev)
	}
}

func (s *Session) notice(slot int, text, color string) {
	s.send(slot, game.Event{Type: game.EventChatMessage, Data: game.ChatLine{Text: text, Color: color}})
}

func (s *Session) broadcastNotice(text, color string) {
	line := game.ChatLine{Text: text, Color: color}
	s.record(line)
	s.broadcast(game.Event{Type: game.EventChatMessage, Data: line})
}

func (s *Session) record(line game.ChatLine) (chat.Message, bool) {
	if s.chat == nil {
		return chat.Message{}, false
	}
	saved, err := s.chat.SaveMessage(context.Background(), chat.Message{
		RoomID: s.id,
		Author: line.Author,
		Text:   line.Text,
		Color:  line.Color,
	})
	if err != nil {
		log.Printf("[match] room=%s save chat failed: %v", s.id, err)
		return chat.Message{}, false
	}
	return saved, true
}

func (s *Session) publish() {
	s.mu.Lock()
	s.summary = game.RoomSummary{
		ID:              s.id,
		Phase:           s.votes.Phase().String(),
		Scores:          s.field.Scores,
		AIActive:        s.aiActive,
		SpeedMultiplier: s.field.SpeedMultiplier,
		Players:         s.players,
	}
	s.mu.Unlock()
}
