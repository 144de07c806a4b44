package pong

import (
	"sync"

	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
)

// seqRand replays a fixed sequence of values.
type seqRand struct {
	vals []float64
	i    int
}

func fixedRand(vals ...float64) *seqRand {
	return &seqRand{vals: vals}
}

func (r *seqRand) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

type recorder struct {
	mu     sync.Mutex
	events map[string][]game.Event
}

func newRecorder() *recorder {
	return &recorder{events: make(map[string][]game.Event)}
}

func (r *recorder) Send(connID string, ev game.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[connID] = append(r.events[connID], ev)
}

func (r *recorder) of(connID, typ string) []game.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []game.Event
	for _, ev := range r.events[connID] {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) count(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[connID])
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[string][]game.Event)
}

func (r *recorder) notices(connID string) []string {
	var out []string
	for _, ev := range r.of(connID, game.EventChatMessage) {
		out = append(out, ev.Data.(game.ChatLine).Text)
	}
	return out
}
