package match

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
	"github.com/zhouzirui/pong-duel/backend/internal/service/matchmaking"
	"github.com/zhouzirui/pong-duel/backend/internal/service/pong"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
	maxFrameSize = 4096
)

// WebSocketHandler is the gateway between player connections and sessions.
type WebSocketHandler struct {
	director *matchmaking.Director
	conns    *ConnectionManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the gateway. allowedOrigin "*" accepts any origin.
func NewWebSocketHandler(director *matchmaking.Director, conns *ConnectionManager, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		director: director,
		conns:    conns,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	c := h.conns.add(connID, conn)
	log.Printf("[websocket] conn=%s connected from %s", connID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.conns.remove(connID)
		h.director.Disconnect(connID)
		log.Printf("[websocket] conn=%s disconnected", connID)
	}()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.writeLoop(ctx, cancel, c)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] conn=%s read error: %v", connID, err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		select {
		case <-ctx.Done():
			return
		default:
		}

		var msg game.Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(connID, "invalid message")
			continue
		}

		h.handleMessage(connID, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(connID string, msg *game.Inbound) {
	switch msg.Type {
	case game.TypeJoinMatchmaking:
		if _, err := h.director.RequestMatch(connID); err != nil {
			log.Printf("[websocket] conn=%s join ignored: %v", connID, err)
		}
	case game.TypePaddleMove:
		var move game.PaddleMove
		if !h.decode(connID, msg.Data, &move) {
			return
		}
		if s := h.session(move.Room); s != nil {
			s.Move(connID, move.Y)
		}
	case game.TypePauseVote:
		var ref game.RoomRef
		if !h.decode(connID, msg.Data, &ref) {
			return
		}
		if s := h.session(ref.Room); s != nil {
			s.VotePause(connID)
		}
	case game.TypeResumeVote:
		var ref game.RoomRef
		if !h.decode(connID, msg.Data, &ref) {
			return
		}
		if s := h.session(ref.Room); s != nil {
			s.VoteResume(connID)
		}
	case game.TypeChatMessage:
		var req game.ChatRequest
		if !h.decode(connID, msg.Data, &req) {
			return
		}
		if s := h.session(req.Room); s != nil {
			s.Chat(connID, req.Message)
		}
	default:
		h.sendError(connID, "unsupported message type: "+msg.Type)
	}
}

// session resolves a room id; unknown or finished rooms yield nil.
func (h *WebSocketHandler) session(roomID string) *pong.Session {
	s, err := h.director.Session(roomID)
	if err != nil {
		return nil
	}
	return s
}

func (h *WebSocketHandler) decode(connID string, raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		h.sendError(connID, "missing payload")
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		h.sendError(connID, "invalid payload")
		return false
	}
	return true
}

func (h *WebSocketHandler) sendError(connID, message string) {
	h.conns.Send(connID, game.Event{Type: game.EventError, Data: game.ErrorNotice{Message: message}})
}

// writeLoop is the only writer on the connection: control events, the latest
// snapshot and pings. Queued control events go out before a snapshot so a
// client never sees state for a match it has not been told about.
func (h *WebSocketHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, c *client) {
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	write := func(messageType int, data []byte) bool {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(messageType, data); err != nil {
			log.Printf("[websocket] conn=%s write failed: %v", c.id, err)
			c.conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.overflow:
			c.conn.Close()
			return
		case data := <-c.control:
			if !write(websocket.TextMessage, data) {
				return
			}
		case <-c.ready:
			if !h.flushControl(c, write) {
				return
			}
			if data := c.takeSnapshot(); data != nil {
				if !write(websocket.TextMessage, data) {
					return
				}
			}
		case <-ticker.C:
			if !write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (h *WebSocketHandler) flushControl(c *client, write func(int, []byte) bool) bool {
	for {
		select {
		case data := <-c.control:
			if !write(websocket.TextMessage, data) {
				return false
			}
		default:
			return true
		}
	}
}
