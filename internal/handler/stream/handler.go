// Package stream delivers replies incrementally, over Server-Sent Events or
// a websocket relay.
package stream

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/emochi/emochi/internal/engine"
	"github.com/emochi/emochi/pkg/utils"
)

// Handler serves the streaming chat endpoints.
type Handler struct {
	engine *engine.Engine
}

// New creates a stream handler over the engine.
func New(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// RegisterRoutes mounts the SSE endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/{chatID}/stream", h.handleStream)
}

// chunkEvent is one SSE frame of a streamed reply.
type chunkEvent struct {
	Event       string `json:"event"`
	Content     string `json:"content,omitempty"`
	ChatID      string `json:"chat_id,omitempty"`
	Model       string `json:"model,omitempty"`
	EmotionHint any    `json:"emotion_hint,omitempty"`
	Error       string `json:"error,omitempty"`
}

// handleStream streams the reply for ?message= as SSE frames: a start
// event, raw chunk events while the provider generates, then a complete
// event carrying the final styled reply and emotion hint.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	provider := r.URL.Query().Get("provider")
	modelHint := r.URL.Query().Get("model_hint")

	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	utils.SendSSEChunk(w, flusher, chunkEvent{Event: "start", ChatID: chatID})

	resp, err := h.engine.StreamReply(r.Context(), chatID, message, provider, modelHint, func(chunk string) {
		utils.SendSSEChunk(w, flusher, chunkEvent{Event: "chunk", Content: chunk})
	})
	if err != nil {
		utils.SendSSEChunk(w, flusher, chunkEvent{Event: "error", Error: fmt.Sprintf("generation failed: %v", err)})
		return
	}

	utils.SendSSEChunk(w, flusher, chunkEvent{
		Event:       "complete",
		ChatID:      resp.ChatID,
		Model:       resp.Model,
		Content:     resp.Reply,
		EmotionHint: resp.EmotionHint,
	})
}
