// internal/handlers/chat.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"safari-connect/internal/models"
	"safari-connect/internal/responder"
)

const maxChatMessage = 2000

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON data: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	if len(msg) > maxChatMessage {
		http.Error(w, "Message too long", http.StatusRequestEntityTooLarge)
		return
	}

	reply := h.responder.Reply(r.Context(), msg)
	writeJSON(w, http.StatusOK, models.ChatResponse{
		Category:      reply.Category.String(),
		Reply:         reply.Text,
		Source:        reply.Source,
		TypingDelayMs: reply.TypingDelay.Milliseconds(),
	})
}

func (h *Handler) GetQuickReplies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.responder.QuickReplies())
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories := make([]string, 0, len(responder.Categories))
	for _, c := range responder.Categories {
		categories = append(categories, c.String())
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetChatRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.responder.Rules())
}
