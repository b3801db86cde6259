package handler

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emochi/emochi/internal/engine"
	chathandler "github.com/emochi/emochi/internal/handler/chat"
	"github.com/emochi/emochi/internal/handler/stream"
	middlewarePkg "github.com/emochi/emochi/internal/middleware"
	"github.com/emochi/emochi/pkg/utils"
)

const appName = "Emochi Chatbot Backend"

// NewRouter wires HTTP routes to the roleplay engine.
func NewRouter(eng *engine.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)

	chatHandler := chathandler.New(eng)
	chatHandler.RegisterRoutes(r)

	streamHandler := stream.New(eng)
	streamHandler.RegisterRoutes(r)
	stream.NewWebSocketHandler(streamHandler).RegisterRoutes(r)

	return r
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     appName,
		"version": "1.0.0",
	})
}

// handleHealth reports which provider credentials are present, without
// leaking their values.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"app":    appName,
		"config_check": map[string]string{
			"openai_key": keyStatus("OPENAI_API_KEY"),
			"ark_key":    keyStatus("ARK_API_KEY"),
			"ollama_url": envOr("OLLAMA_URL", "http://localhost:11434"),
		},
	})
}

func keyStatus(key string) string {
	if os.Getenv(key) != "" {
		return "Loaded"
	}
	return "MISSING"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
