package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wachat-backend/internal/models"
	"wachat-backend/internal/realtime"
	"wachat-backend/internal/store"
)

// Message history responses are capped at the 100 most recent messages.
const historyLimit = 100

// MessageService handles the explicit request paths: sending outgoing
// messages, direct status updates, and the read-side conversation queries.
// Unlike the webhook pipeline, failures here are surfaced to the caller.
type MessageService struct {
	store       store.Store
	broadcaster realtime.Broadcaster
}

// NewMessageService creates a new MessageService.
func NewMessageService(store store.Store, broadcaster realtime.Broadcaster) *MessageService {
	return &MessageService{
		store:       store,
		broadcaster: broadcaster,
	}
}

// SendMessage creates an outgoing message record and publishes a newMessage
// notification. ConversationID and Body are required.
func (s *MessageService) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	if req.ConversationID == "" || req.Body == "" {
		return nil, ErrValidation
	}

	params := store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: req.ConversationID,
		Sender:         nil, // Outgoing messages carry no sender
		Body:           req.Body,
		Kind:           models.MessageKindOutgoing,
		Status:         models.MessageStatusSent,
		OccurredAt:     time.Now(),
	}

	created, err := s.store.CreateMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create outgoing message: %w", err)
	}

	s.broadcaster.Publish(EventNewMessage, created)

	return created, nil
}

// UpdateStatus overwrites the delivery status of one record by id and publishes
// a messageStatusUpdate notification. Unlike webhook reconciliation, an unknown
// id is a reportable failure (store.ErrNotFound).
func (s *MessageService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error) {
	if !models.ValidMessageStatus(status) {
		return nil, ErrValidation
	}

	updated, err := s.store.UpdateMessageStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(EventMessageStatusUpdate, updated)

	return updated, nil
}

// GetHistory returns one conversation's messages, oldest-first, capped at the
// 100 most recent.
func (s *MessageService) GetHistory(ctx context.Context, conversationID string) ([]models.Message, error) {
	messages, err := s.store.ListMessagesByConversation(ctx, conversationID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// ListConversations returns the derived conversation view: per conversation,
// its most recent message and the count of inbound messages not yet read.
func (s *MessageService) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	summaries, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	return summaries, nil
}

// MarkConversationRead bulk-updates every inbound, non-read message of a
// conversation to read and returns how many records changed.
func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID string) (int64, error) {
	updated, err := s.store.MarkConversationRead(ctx, conversationID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return updated, nil
}
