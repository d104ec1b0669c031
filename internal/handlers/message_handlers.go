package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"wachat-backend/internal/models"
	"wachat-backend/internal/services"
	"wachat-backend/internal/store"
)

// MessageHandlers handles HTTP requests related to messages.
type MessageHandlers struct {
	messageService *services.MessageService
}

// NewMessageHandlers creates a new MessageHandlers instance.
func NewMessageHandlers(ms *services.MessageService) *MessageHandlers {
	return &MessageHandlers{
		messageService: ms,
	}
}

// HandleSendMessage handles requests to send a new outgoing message.
func (h *MessageHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.messageService.SendMessage(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			RespondWithError(w, http.StatusBadRequest, "wa_id and text are required")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	RespondWithJSON(w, http.StatusCreated, message)
}

// HandleUpdateStatus handles requests to overwrite a message's delivery status.
func (h *MessageHandlers) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "messageID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.messageService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			RespondWithError(w, http.StatusBadRequest, "Invalid status value")
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Message not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to update message status")
		return
	}

	RespondWithJSON(w, http.StatusOK, message)
}

// HandleGetMessages handles requests for one conversation's message history.
func (h *MessageHandlers) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing conversation ID")
		return
	}

	messages, err := h.messageService.GetHistory(r.Context(), conversationID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	RespondWithJSON(w, http.StatusOK, messages)
}
