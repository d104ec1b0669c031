package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"wachat-backend/internal/models"
	"wachat-backend/internal/realtime"
	"wachat-backend/internal/store"
)

// Realtime event names carried on the broadcast channel.
const (
	EventNewMessage          = "newMessage"
	EventMessageStatusUpdate = "messageStatusUpdate"
)

// Body placeholder for media messages that carry neither text nor a caption.
const mediaPlaceholder = "Media message"

// StatusOutcome is the result of applying one status event.
type StatusOutcome int

const (
	StatusApplied  StatusOutcome = iota // Matching record found and updated
	StatusNotFound                      // No record matched the correlation id
	StatusFailed                        // Persistence failed
)

// ProcessResult summarizes one webhook delivery. The caller logs or counts it;
// failures are never surfaced past the fixed webhook acknowledgment.
type ProcessResult struct {
	Ingested   int // Message events persisted
	Failed     int // Message events that hit a persistence error
	Reconciled int // Status events applied to a stored record
	Missed     int // Status events with no matching record
}

// WebhookService is the ingestion and reconciliation pipeline: it normalizes
// inbound webhook payloads, persists message events, reconciles status events
// against stored records, and publishes realtime notifications.
type WebhookService struct {
	store       store.Store
	broadcaster realtime.Broadcaster
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(store store.Store, broadcaster realtime.Broadcaster) *WebhookService {
	return &WebhookService{
		store:       store,
		broadcaster: broadcaster,
	}
}

// Normalize unwraps an arbitrary webhook payload into a uniform event list.
// It is a pure function and never fails: payloads that do not match the
// expected envelope shape yield an empty result.
func Normalize(body []byte) models.NormalizedEvents {
	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.NormalizedEvents{}
	}

	env := payload.Envelope()
	if len(env.Entry) == 0 || len(env.Entry[0].Changes) == 0 {
		return models.NormalizedEvents{}
	}

	value := env.Entry[0].Changes[0].Value
	return models.NormalizedEvents{
		Messages: value.Messages,
		Statuses: value.Statuses,
		Contacts: value.Contacts,
	}
}

// ProcessWebhook runs one webhook delivery through the full pipeline.
// Processing is best-effort per event: a failure on one event never aborts its
// siblings, and the returned result is informational only.
func (s *WebhookService) ProcessWebhook(ctx context.Context, body []byte) ProcessResult {
	events := Normalize(body)
	if events.Empty() {
		log.Println("[WebhookService] ProcessWebhook: payload contained no events, ignoring")
		return ProcessResult{}
	}

	var result ProcessResult

	for _, msg := range events.Messages {
		if _, err := s.IngestMessage(ctx, msg, events.Contacts); err != nil {
			log.Printf("ERROR [WebhookService] ProcessWebhook: failed to ingest message %s: %v", msg.ID, err)
			result.Failed++
			continue
		}
		result.Ingested++
	}

	for _, st := range events.Statuses {
		switch s.ApplyStatus(ctx, st) {
		case StatusApplied:
			result.Reconciled++
		case StatusNotFound:
			result.Missed++
		case StatusFailed:
			result.Failed++
		}
	}

	return result
}

// IngestMessage persists one inbound message event as a message record and
// publishes a newMessage notification.
func (s *WebhookService) IngestMessage(ctx context.Context, msg models.WebhookMessage, contacts []models.WebhookContact) (*models.Message, error) {
	sender := msg.From
	externalID := msg.ID

	params := store.CreateMessageParams{
		ID:             uuid.New(),
		ConversationID: msg.From,
		Sender:         &sender,
		Body:           resolveBody(msg),
		Kind:           resolveKind(msg.Type),
		// The provider only delivers this event once the message reached the
		// server, so inbound records start at delivered rather than sent.
		Status:     models.MessageStatusDelivered,
		OccurredAt: resolveTimestamp(msg.Timestamp),
	}
	if externalID != "" {
		params.ExternalMessageID = &externalID
	}
	if name := resolveDisplayName(msg.From, contacts); name != "" {
		params.DisplayName = &name
	}

	created, err := s.store.CreateMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	s.broadcaster.Publish(EventNewMessage, created)

	log.Printf("[WebhookService] Message processed: %s from %s", created.ID, senderLabel(created))
	return created, nil
}

// ApplyStatus reconciles one status event against the stored record it
// correlates to. The incoming status is applied unconditionally: a stale event
// arriving late can regress a record (e.g. read back to sent), matching the
// provider's last-write-wins contract. A miss is a logged no-op, never an
// error: the status may have raced ahead of its message.
func (s *WebhookService) ApplyStatus(ctx context.Context, st models.WebhookStatus) StatusOutcome {
	correlationID := st.CorrelationID()

	status := models.MessageStatus(st.Status)
	if !models.ValidMessageStatus(status) {
		log.Printf("WARN [WebhookService] ApplyStatus: unknown status %q for %s, ignoring", st.Status, correlationID)
		return StatusNotFound
	}

	updated, err := s.store.UpdateMessageStatusByExternalID(ctx, correlationID, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("[WebhookService] Message not found for status update: %s", correlationID)
			return StatusNotFound
		}
		log.Printf("ERROR [WebhookService] ApplyStatus: failed to update status for %s: %v", correlationID, err)
		return StatusFailed
	}

	s.broadcaster.Publish(EventMessageStatusUpdate, updated)

	log.Printf("[WebhookService] Status updated: %s -> %s", correlationID, status)
	return StatusApplied
}

// resolveBody prefers a text body, then an image caption, then a fixed
// placeholder so ingestion is total over unsupported media kinds.
func resolveBody(msg models.WebhookMessage) string {
	if msg.Text != nil && msg.Text.Body != "" {
		return msg.Text.Body
	}
	if msg.Image != nil && msg.Image.Caption != "" {
		return msg.Image.Caption
	}
	return mediaPlaceholder
}

// resolveKind maps the event's type onto a stored message kind, defaulting to text.
func resolveKind(eventType string) models.MessageKind {
	switch models.MessageKind(eventType) {
	case models.MessageKindText, models.MessageKindImage, models.MessageKindDocument:
		return models.MessageKind(eventType)
	}
	return models.MessageKindText
}

// resolveTimestamp converts the event's whole-second epoch timestamp to an
// absolute instant, falling back to ingestion time when absent or unparseable.
func resolveTimestamp(ts string) time.Time {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(sec, 0)
}

// resolveDisplayName matches the sender against the event's contact list.
// Absence is not an error; the display name simply stays unset.
func resolveDisplayName(sender string, contacts []models.WebhookContact) string {
	for _, c := range contacts {
		if c.WaID == sender {
			return c.Profile.Name
		}
	}
	return ""
}

func senderLabel(m *models.Message) string {
	if m.DisplayName != nil {
		return *m.DisplayName
	}
	if m.Sender != nil {
		return *m.Sender
	}
	return m.ConversationID
}
