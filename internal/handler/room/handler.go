package room

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/pong-duel/backend/internal/service/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/service/matchmaking"
	"github.com/zhouzirui/pong-duel/backend/pkg/utils"
)

// Handler exposes read-only views of live rooms.
type Handler struct {
	director *matchmaking.Director
	chatSvc  *chat.Service
}

// New creates a room handler.
func New(director *matchmaking.Director, chatSvc *chat.Service) *Handler {
	return &Handler{
		director: director,
		chatSvc:  chatSvc,
	}
}

// RegisterRoutes registers room routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms", h.handleListRooms)
	r.Get("/rooms/{roomID}", h.handleGetRoom)
	r.Get("/rooms/{roomID}/chat", h.handleTranscript)
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.director.Summaries())
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, err := h.director.Session(chi.URLParam(r, "roomID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, session.Summary())
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chat.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}
