package models

// WebhookPayload is the outer structure a messaging provider posts to /webhook.
// Some providers wrap the real envelope in a metaData container; both forms are
// accepted and normalize identically. Every field is optional: a payload that
// matches none of them simply yields zero events.
type WebhookPayload struct {
	MetaData *WebhookEnvelope `json:"metaData"`
	WebhookEnvelope
}

// Envelope returns the effective envelope, unwrapping the metaData container
// when present.
func (p *WebhookPayload) Envelope() *WebhookEnvelope {
	if p.MetaData != nil {
		return p.MetaData
	}
	return &p.WebhookEnvelope
}

// WebhookEnvelope mirrors the provider's entry/changes/value nesting.
type WebhookEnvelope struct {
	Entry []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string             `json:"field"`
	Value WebhookChangeValue `json:"value"`
}

// WebhookChangeValue carries the actual event data: new inbound messages,
// delivery status updates, and the contact metadata associated with messages.
type WebhookChangeValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages"`
	Statuses         []WebhookStatus  `json:"statuses"`
	Contacts         []WebhookContact `json:"contacts"`
}

// WebhookMessage is one inbound message event.
type WebhookMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"` // Whole seconds since epoch, as a string
	Type      string        `json:"type"`
	Text      *WebhookText  `json:"text"`
	Image     *WebhookMedia `json:"image"`
	Document  *WebhookMedia `json:"document"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookMedia struct {
	ID       string `json:"id"`
	Caption  string `json:"caption"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
}

// WebhookStatus is one delivery-state change event for a previously seen message.
type WebhookStatus struct {
	ID          string `json:"id"`
	MetaMsgID   string `json:"meta_msg_id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// CorrelationID returns the identifier used to match this status event against a
// stored message: the explicit correlation id when present, else the event's own id.
func (s WebhookStatus) CorrelationID() string {
	if s.MetaMsgID != "" {
		return s.MetaMsgID
	}
	return s.ID
}

// WebhookContact associates a sender identifier with profile metadata.
type WebhookContact struct {
	WaID    string         `json:"wa_id"`
	Profile WebhookProfile `json:"profile"`
}

type WebhookProfile struct {
	Name string `json:"name"`
}

// NormalizedEvents is the uniform result of unwrapping a webhook payload:
// the message events with their contact list, plus the status events.
type NormalizedEvents struct {
	Messages []WebhookMessage
	Statuses []WebhookStatus
	Contacts []WebhookContact
}

// Empty reports whether normalization produced no events at all.
func (e NormalizedEvents) Empty() bool {
	return len(e.Messages) == 0 && len(e.Statuses) == 0
}
