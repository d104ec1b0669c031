package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"wachat-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateMessageParams contains parameters for appending a message record.
type CreateMessageParams struct {
	ID                uuid.UUID
	ConversationID    string
	Sender            *string // Nil for outgoing messages
	Body              string
	Kind              models.MessageKind
	Status            models.MessageStatus
	ExternalMessageID *string
	DisplayName       *string
	OccurredAt        time.Time
}

// Store defines the interface for message persistence.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// CreateMessage appends a new message record.
	CreateMessage(ctx context.Context, arg CreateMessageParams) (*models.Message, error)

	// GetMessageByExternalID fetches the record whose external_message_id matches.
	// Returns ErrNotFound when no record matches.
	GetMessageByExternalID(ctx context.Context, externalID string) (*models.Message, error)

	// UpdateMessageStatus overwrites the delivery status of the record with the
	// given id and returns the updated record. Returns ErrNotFound when the id
	// is unknown.
	UpdateMessageStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error)

	// UpdateMessageStatusByExternalID overwrites the delivery status of the
	// record matching external_message_id and returns the updated record.
	// Returns ErrNotFound when no record matches.
	UpdateMessageStatusByExternalID(ctx context.Context, externalID string, status models.MessageStatus) (*models.Message, error)

	// ListMessagesByConversation returns the `limit` most recent messages of one
	// conversation, ordered oldest-first.
	ListMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error)

	// ListConversations returns one summary per distinct conversation: the most
	// recent message and the count of inbound messages not yet read, ordered by
	// most recent message time descending.
	ListConversations(ctx context.Context) ([]models.ConversationSummary, error)

	// MarkConversationRead sets every inbound, non-read message of the
	// conversation to read and returns the number of rows updated.
	MarkConversationRead(ctx context.Context, conversationID string) (int64, error)
}
