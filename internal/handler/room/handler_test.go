package room

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/zhouzirui/pong-duel/backend/internal/model/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/model/game"
	chatservice "github.com/zhouzirui/pong-duel/backend/internal/service/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/service/matchmaking"
	"github.com/zhouzirui/pong-duel/backend/internal/service/pong"
)

type discard struct{}

func (discard) Send(string, game.Event) {}

func setupRouter(t *testing.T) (*chi.Mux, *matchmaking.Director, *chatservice.Service) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	chatSvc := chatservice.NewService()
	director := matchmaking.NewDirector(ctx, pong.DefaultConfig(), discard{}, chatSvc)
	t.Cleanup(func() {
		cancel()
		director.Wait()
	})

	r := chi.NewRouter()
	New(director, chatSvc).RegisterRoutes(r)
	return r, director, chatSvc
}

func startMatch(t *testing.T, director *matchmaking.Director) *pong.Session {
	t.Helper()
	if _, err := director.RequestMatch("a"); err != nil {
		t.Fatalf("RequestMatch err: %v", err)
	}
	s, err := director.RequestMatch("b")
	if err != nil || s == nil {
		t.Fatalf("expected session, got %v (err %v)", s, err)
	}
	return s
}

func TestListRooms(t *testing.T) {
	r, director, _ := setupRouter(t)
	s := startMatch(t, director)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var rooms []game.RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != s.ID() {
		t.Fatalf("expected room %s, got %+v", s.ID(), rooms)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/rooms/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetRoom(t *testing.T) {
	r, director, _ := setupRouter(t)
	s := startMatch(t, director)

	req := httptest.NewRequest(http.MethodGet, "/rooms/"+s.ID(), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var room game.RoomSummary
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if room.Players != [2]string{"a", "b"} {
		t.Fatalf("unexpected players %v", room.Players)
	}
}

func TestTranscript(t *testing.T) {
	r, director, chatSvc := setupRouter(t)
	s := startMatch(t, director)
	if _, err := chatSvc.SaveMessage(context.Background(), chatModel.Message{RoomID: s.ID(), Author: "Player 1", Text: "hi"}); err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/rooms/"+s.ID()+"/chat", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var messages []chatModel.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "hi" {
		t.Fatalf("unexpected transcript %+v", messages)
	}

	req = httptest.NewRequest(http.MethodGet, "/rooms/missing/chat", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
