package stream

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/emochi/emochi/internal/model/chat"
)

// WebSocketHandler relays chat turns over a persistent connection: the
// client sends text frames, the server answers with full reply envelopes.
type WebSocketHandler struct {
	handler  *Handler
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the relay over the same engine as the SSE
// handler.
func NewWebSocketHandler(h *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		handler: h,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint on r.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/{chatID}/ws", h.handleWebSocket)
}

type inboundFrame struct {
	Text      string `json:"text"`
	Provider  string `json:"provider,omitempty"`
	ModelHint string `json:"model_hint,omitempty"`
}

type outboundFrame struct {
	Type      string                `json:"type"`
	Response  *chat.MessageResponse `json:"response,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for chat=%s: %v", chatID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened chat=%s", chatID)

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error chat=%s: %v", chatID, err)
			}
			return
		}

		if strings.TrimSpace(frame.Text) == "" {
			h.write(conn, outboundFrame{Type: "error", Error: "text is required"})
			continue
		}

		resp, err := h.handler.engine.GenerateReply(r.Context(), chatID, frame.Text, frame.Provider, frame.ModelHint)
		if err != nil {
			h.write(conn, outboundFrame{Type: "error", Error: err.Error()})
			continue
		}

		h.write(conn, outboundFrame{Type: "reply", Response: resp})
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, frame outboundFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write error: %v", err)
	}
}
