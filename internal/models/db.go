package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind describes how a message entered the log.
type MessageKind string

const (
	MessageKindText     MessageKind = "text"
	MessageKindImage    MessageKind = "image"
	MessageKindDocument MessageKind = "document"
	MessageKindOutgoing MessageKind = "outgoing"
)

// MessageStatus is the delivery state of a message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// ValidMessageStatus reports whether s is one of the known delivery states.
func ValidMessageStatus(s MessageStatus) bool {
	switch s {
	case MessageStatusSent, MessageStatusDelivered, MessageStatusRead:
		return true
	}
	return false
}

// Message is the persisted message record. Records are append-only: once written,
// only Status may change (via status reconciliation or an explicit status update).
type Message struct {
	ID                uuid.UUID     `json:"id"`
	ConversationID    string        `json:"wa_id"`   // External counterparty identifier
	Sender            *string       `json:"from"`    // Nil for outgoing messages
	Body              string        `json:"text"`
	Kind              MessageKind   `json:"type"`
	Status            MessageStatus `json:"status"`
	ExternalMessageID *string       `json:"meta_msg_id,omitempty"` // Correlates later status events
	DisplayName       *string       `json:"profile_name"`          // Captured at ingestion, never updated
	OccurredAt        time.Time     `json:"timestamp"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
