package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wachat-backend/internal/models"
	"wachat-backend/internal/services"
)

// ConversationHandlers handles HTTP requests for the derived conversation view.
type ConversationHandlers struct {
	messageService *services.MessageService
}

// NewConversationHandlers creates a new ConversationHandlers instance.
func NewConversationHandlers(ms *services.MessageService) *ConversationHandlers {
	return &ConversationHandlers{
		messageService: ms,
	}
}

// HandleListConversations handles requests to list all conversations with
// their last message and unread count.
func (h *ConversationHandlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.messageService.ListConversations(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch chats")
		return
	}

	RespondWithJSON(w, http.StatusOK, conversations)
}

// HandleMarkRead handles requests to mark a conversation's inbound messages read.
func (h *ConversationHandlers) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing conversation ID")
		return
	}

	updated, err := h.messageService.MarkConversationRead(r.Context(), conversationID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to mark messages as read")
		return
	}

	RespondWithJSON(w, http.StatusOK, models.MarkReadResponse{Success: true, Updated: updated})
}
