package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/pong-duel/backend/internal/config"
	"github.com/zhouzirui/pong-duel/backend/internal/handler"
	"github.com/zhouzirui/pong-duel/backend/internal/handler/match"
	"github.com/zhouzirui/pong-duel/backend/internal/service/chat"
	"github.com/zhouzirui/pong-duel/backend/internal/service/matchmaking"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatService := chat.NewService()
	conns := match.NewConnectionManager(cfg.Game.OutboxSize)
	director := matchmaking.NewDirector(ctx, cfg.Game.Session(), conns, chatService)
	log.Printf("game sessions tick at %dHz, vote timeout %s", cfg.Game.TickRate, cfg.Game.VoteTimeout)

	router := handler.NewRouter(director, chatService, conns, cfg.Server.AllowedOrigin)

	startServer(ctx, cfg.Server, router)

	// Sessions observe ctx and stop on their own once the server is down.
	director.Wait()
	log.Println("all sessions stopped")
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Pong Duel backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
