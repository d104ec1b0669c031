package models

import "time"

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendMessageRequest is the body for POST /api/messages/send.
type SendMessageRequest struct {
	ConversationID string `json:"wa_id"`
	Body           string `json:"text"`
}

// UpdateStatusRequest is the body for PATCH /api/messages/{id}/status.
type UpdateStatusRequest struct {
	Status MessageStatus `json:"status"`
}

// ConversationSummary is one row of the conversation list: the most recent
// message of a conversation plus its unread count. Conversations are a derived
// view over messages, not a stored entity.
type ConversationSummary struct {
	ConversationID string  `json:"wa_id"`
	DisplayName    *string `json:"profile_name"`
	LastMessage    Message `json:"lastMessage"`
	UnreadCount    int     `json:"unreadCount"`
}

// MarkReadResponse is the body for PATCH /api/chats/{wa_id}/read.
type MarkReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
