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

	"github.com/emochi/emochi/internal/config"
	"github.com/emochi/emochi/internal/engine"
	"github.com/emochi/emochi/internal/handler"
	"github.com/emochi/emochi/internal/service/llm"
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

	stateStore, err := engine.NewStateStore(cfg.Store.ServerDir)
	if err != nil {
		log.Fatalf("failed to open state store: %v", err)
	}

	registry := llm.NewRegistry(buildProviders(ctx, cfg.AI)...)
	if registry.Empty() {
		log.Println("warning: no LLM provider configured; replies will be apologies only")
	}

	eng := engine.New(stateStore, registry)
	router := handler.NewRouter(eng)

	startServer(ctx, cfg.Server, router)
}

// buildProviders assembles the provider list in fallback-priority order:
// OpenAI-compatible first when a key is present, then Ark, then the local
// Ollama daemon.
func buildProviders(ctx context.Context, cfg config.AIConfig) []llm.Provider {
	var providers []llm.Provider

	if cfg.OpenAIEnabled() {
		providers = append(providers, llm.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL))
		log.Println("OpenAI provider configured")
	}

	if cfg.ArkEnabled() {
		chatModel, err := cfg.NewArkChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize Ark chat model: %v", err)
		} else {
			providers = append(providers, llm.NewArkProvider(chatModel))
			log.Println("Ark provider configured")
		}
	}

	providers = append(providers, llm.NewOllamaProvider(cfg.OllamaURL))
	return providers
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Emochi backend listening on %s", serverCfg.Addr)
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
