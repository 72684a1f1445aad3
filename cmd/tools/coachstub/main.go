package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/luoxingyu/mockview/internal/coach"
	"github.com/luoxingyu/mockview/internal/config"
	"github.com/luoxingyu/mockview/internal/model/chat"
	"github.com/luoxingyu/mockview/internal/model/interview"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	profiles := interview.NewMemoryStore(interview.Seed())
	sessionType := resolveSessionType()

	var responder coach.Responder
	if cfg.AI.Enabled() {
		llm, err := coach.NewLLMResponder(ctx, profiles, sessionType, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI responder: %v", err)
			log.Println("falling back to the scripted question bank - 请检查 Ark 模型相关环境变量")
		} else {
			responder = llm
			log.Println("AI responder initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，使用脚本化题库")
	}
	if responder == nil {
		responder = coach.NewScriptedResponder(profiles, sessionType)
	}

	router := coach.NewRouter(responder, profiles)

	startServer(ctx, cfg.Server, router)
}

// resolveSessionType 解析桩服务扮演的面试类型，默认 General。
func resolveSessionType() chat.SessionType {
	raw := strings.TrimSpace(os.Getenv("COACH_SESSION_TYPE"))
	if raw == "" {
		return chat.General
	}
	for _, t := range chat.SessionTypes() {
		if strings.EqualFold(string(t), raw) {
			return t
		}
	}
	log.Printf("warning: unknown COACH_SESSION_TYPE %q, using general", raw)
	return chat.General
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("mockview coach stub listening on %s", addr)
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
