package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/pong-duel/backend/internal/handler/match"
	"github.com/zhouzirui/pong-duel/backend/internal/handler/room"
	middlewarePkg "github.com/zhouzirui/pong-duel/backend/internal/middleware"
	chatService "github.com/zhouzirui/pong-duel/backend/internal/service/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/service/matchmaking"
	"github.com/zhouzirui/pong-duel/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(director *matchmaking.Director, chatSvc *chatService.Service, conns *match.ConnectionManager, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigin))

	roomHandler := room.New(director, chatSvc)
	wsHandler := match.NewWebSocketHandler(director, conns, allowedOrigin)

	// The websocket gateway lives outside /api so the upgrade is not wrapped
	// by JSON handlers.
	wsHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		roomHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":      "ok",
				"connections": conns.Count(),
				"rooms":       len(director.Summaries()),
			})
		})
	})

	return r
}
