package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wachat-backend/internal/models"
	"wachat-backend/internal/store"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const messageColumns = `id, conversation_id, sender, body, kind, status, external_message_id, display_name, occurred_at, created_at, updated_at`

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.Sender,
		&m.Body,
		&m.Kind,
		&m.Status,
		&m.ExternalMessageID,
		&m.DisplayName,
		&m.OccurredAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const createMessage = `-- name: CreateMessage :one
INSERT INTO messages (
    id, conversation_id, sender, body, kind, status, external_message_id, display_name, occurred_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
RETURNING ` + messageColumns + `;
`

// CreateMessage appends a new message record.
func (s *PostgresStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	row := s.db.QueryRow(ctx, createMessage,
		arg.ID,
		arg.ConversationID,
		arg.Sender, // pgx handles *string to NULL automatically
		arg.Body,
		arg.Kind,
		arg.Status,
		arg.ExternalMessageID,
		arg.DisplayName,
		arg.OccurredAt,
	)

	m, err := scanMessage(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			log.Printf("ERROR [PostgresStore] CreateMessage: PostgreSQL error inserting message for conversation %s: Code=%s, Message=%s, Detail=%s",
				arg.ConversationID, pgErr.Code, pgErr.Message, pgErr.Detail)
		} else {
			log.Printf("ERROR [PostgresStore] CreateMessage: Failed to insert message for conversation %s: %v", arg.ConversationID, err)
		}
		return nil, fmt.Errorf("database error creating message: %w", err)
	}

	return m, nil
}

const getMessageByExternalID = `-- name: GetMessageByExternalID :one
SELECT ` + messageColumns + `
FROM messages
WHERE external_message_id = $1;
`

// GetMessageByExternalID fetches the record correlated to a status event.
// Returns store.ErrNotFound if no record matches.
func (s *PostgresStore) GetMessageByExternalID(ctx context.Context, externalID string) (*models.Message, error) {
	m, err := scanMessage(s.db.QueryRow(ctx, getMessageByExternalID, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error fetching message by external id: %w", err)
	}
	return m, nil
}

const updateMessageStatus = `-- name: UpdateMessageStatus :one
UPDATE messages
SET status = $1, updated_at = NOW()
WHERE id = $2
RETURNING ` + messageColumns + `;
`

// UpdateMessageStatus overwrites the delivery status of one record by id.
func (s *PostgresStore) UpdateMessageStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error) {
	m, err := scanMessage(s.db.QueryRow(ctx, updateMessageStatus, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error updating message status: %w", err)
	}
	return m, nil
}

const updateMessageStatusByExternalID = `-- name: UpdateMessageStatusByExternalID :one
UPDATE messages
SET status = $1, updated_at = NOW()
WHERE external_message_id = $2
RETURNING ` + messageColumns + `;
`

// UpdateMessageStatusByExternalID overwrites the delivery status of the record
// matching external_message_id. The overwrite is unconditional: no forward-only
// transition check is applied, last write wins.
func (s *PostgresStore) UpdateMessageStatusByExternalID(ctx context.Context, externalID string, status models.MessageStatus) (*models.Message, error) {
	m, err := scanMessage(s.db.QueryRow(ctx, updateMessageStatusByExternalID, status, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error reconciling message status: %w", err)
	}
	return m, nil
}

const listMessagesByConversation = `-- name: ListMessagesByConversation :many
SELECT ` + messageColumns + `
FROM (
    SELECT ` + messageColumns + `
    FROM messages
    WHERE conversation_id = $1
    ORDER BY occurred_at DESC
    LIMIT $2
) recent
ORDER BY occurred_at ASC;
`

// ListMessagesByConversation returns the `limit` most recent messages of a
// conversation, oldest-first.
func (s *PostgresStore) ListMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(ctx, listMessagesByConversation, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var items []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		items = append(items, *m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return items, nil
}

const listConversations = `-- name: ListConversations :many
SELECT id, conversation_id, sender, body, kind, status, external_message_id, display_name, occurred_at, created_at, updated_at, unread_count
FROM (
    SELECT DISTINCT ON (m.conversation_id)
        m.id, m.conversation_id, m.sender, m.body, m.kind, m.status,
        m.external_message_id, m.display_name, m.occurred_at, m.created_at, m.updated_at,
        c.unread_count
    FROM messages m
    JOIN (
        SELECT conversation_id,
               COUNT(*) FILTER (WHERE kind <> 'outgoing' AND status <> 'read') AS unread_count
        FROM messages
        GROUP BY conversation_id
    ) c ON c.conversation_id = m.conversation_id
    ORDER BY m.conversation_id, m.occurred_at DESC
) latest
ORDER BY occurred_at DESC;
`

// ListConversations returns one summary per distinct conversation_id: its most
// recent message plus the count of inbound messages not yet read. Conversations
// are derived from messages, there is no separate table.
func (s *PostgresStore) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	rows, err := s.db.Query(ctx, listConversations)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	var items []models.ConversationSummary
	for rows.Next() {
		var m models.Message
		var unread int
		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.Sender,
			&m.Body,
			&m.Kind,
			&m.Status,
			&m.ExternalMessageID,
			&m.DisplayName,
			&m.OccurredAt,
			&m.CreatedAt,
			&m.UpdatedAt,
			&unread,
		); err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}
		items = append(items, models.ConversationSummary{
			ConversationID: m.ConversationID,
			DisplayName:    m.DisplayName,
			LastMessage:    m,
			UnreadCount:    unread,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return items, nil
}

const markConversationRead = `-- name: MarkConversationRead :exec
UPDATE messages
SET status = 'read', updated_at = NOW()
WHERE conversation_id = $1
  AND kind <> 'outgoing'
  AND status <> 'read';
`

// MarkConversationRead bulk-updates every inbound, non-read message of one
// conversation to read. Zero rows affected is not an error: the conversation
// may simply have nothing unread.
func (s *PostgresStore) MarkConversationRead(ctx context.Context, conversationID string) (int64, error) {
	tag, err := s.db.Exec(ctx, markConversationRead, conversationID)
	if err != nil {
		return 0, fmt.Errorf("error marking conversation read: %w", err)
	}
	return tag.RowsAffected(), nil
}
