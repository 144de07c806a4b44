package match

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
)

// client is one websocket connection and its outbound queues. Control events
// are queued in order and never dropped; game_state snapshots share a single
// slot where the newest replaces any unsent one.
type client struct {
	id      string
	conn    *websocket.Conn
	control chan []byte

	mu       sync.Mutex
	snapshot []byte
	ready    chan struct{}

	overflow  chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, outboxSize int) *client {
	return &client{
		id:       id,
		conn:     conn,
		control:  make(chan []byte, outboxSize),
		ready:    make(chan struct{}, 1),
		overflow: make(chan struct{}),
	}
}

func (c *client) pushSnapshot(data []byte) {
	c.mu.Lock()
	c.snapshot = data
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *client) takeSnapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	data := c.snapshot
	c.snapshot = nil
	return data
}

// pushControl queues a control event. A full queue means the peer has
// stopped reading; the connection is marked for closing.
func (c *client) pushControl(data []byte) bool {
	select {
	case c.control <- data:
		return true
	default:
		c.closeOnce.Do(func() { close(c.overflow) })
		return false
	}
}

// ConnectionManager tracks live connections and delivers session events to
// them. It implements pong.Notifier.
type ConnectionManager struct {
	mu         sync.RWMutex
	clients    map[string]*client
	outboxSize int
}

// NewConnectionManager creates a manager whose per-connection control queues
// hold outboxSize events.
func NewConnectionManager(outboxSize int) *ConnectionManager {
	if outboxSize <= 0 {
		outboxSize = 32
	}
	return &ConnectionManager{
		clients:    make(map[string]*client),
		outboxSize: outboxSize,
	}
}

func (cm *ConnectionManager) add(id string, conn *websocket.Conn) *client {
	c := newClient(id, conn, cm.outboxSize)
	cm.mu.Lock()
	cm.clients[id] = c
	cm.mu.Unlock()
	return c
}

func (cm *ConnectionManager) remove(id string) {
	cm.mu.Lock()
	delete(cm.clients, id)
	cm.mu.Unlock()
}

// Count returns the number of live connections.
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// Send queues ev for connID without blocking. Snapshots overwrite the unsent
// one; control events are never dropped, and a connection whose control
// queue overflows is closed. Unknown connections are ignored.
func (cm *ConnectionManager) Send(connID string, ev game.Event) {
	cm.mu.RLock()
	c, ok := cm.clients[connID]
	cm.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[websocket] marshal %s failed: %v", ev.Type, err)
		return
	}

	if ev.Type == game.EventGameState {
		c.pushSnapshot(data)
		return
	}
	if !c.pushControl(data) {
		log.Printf("[websocket] conn=%s control queue full at %s, closing", connID, ev.Type)
	}
}
