// Package chat exposes the REST surface of the roleplay engine.
package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/emochi/emochi/internal/engine"
	"github.com/emochi/emochi/internal/model/chat"
	"github.com/emochi/emochi/internal/personality"
	"github.com/emochi/emochi/pkg/utils"
)

// Handler serves the per-chat message, model, and settings endpoints.
type Handler struct {
	engine *engine.Engine
}

// New creates a chat handler over the engine.
func New(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat/{chatID}", func(cr chi.Router) {
		cr.Post("/message", h.handleMessage)
		cr.Post("/model", h.handleModel)
		cr.Post("/settings", h.handleSettings)
		cr.Get("/state", h.handleState)
	})
	r.Get("/models", h.handleListModels)
	r.Get("/tags", h.handleListTags)
}

// handleMessage generates one reply turn.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var payload chat.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.engine.GenerateReply(r.Context(), chatID, payload.Text, payload.Provider, payload.ModelHint)
	if err != nil {
		log.Printf("[chat] error generating reply for chat %s: %v", chatID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleModel switches the active personality model.
func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var payload chat.ModelRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.engine.SetModel(chatID, payload.Model)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownModel) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[chat] error updating model for chat %s: %v", chatID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"ok": true, "state": state})
}

// handleSettings applies a sparse character-settings update.
func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var payload chat.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.engine.SetSettings(chatID, payload)
	if err != nil {
		log.Printf("[chat] error updating settings for chat %s: %v", chatID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"ok": true, "state": state})
}

// handleState returns the chat's full durable state.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	state, err := h.engine.State(chatID)
	if err != nil {
		log.Printf("[chat] error getting state for chat %s: %v", chatID, err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, state)
}

// handleListModels lists the personality model vocabulary.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"models":       chat.PersonalityModels,
		"descriptions": personality.ModelPrompts,
	})
}

// handleListTags lists the behavior tag vocabulary.
func (h *Handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"tags": chat.BehaviorTags})
}
