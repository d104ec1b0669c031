package handlers

import (
	"io"
	"log"
	"net/http"

	"wachat-backend/internal/services"
)

// WebhookHandlers handles inbound messaging-provider webhook deliveries.
type WebhookHandlers struct {
	webhookService *services.WebhookService
}

// NewWebhookHandlers creates a new WebhookHandlers instance.
func NewWebhookHandlers(ws *services.WebhookService) *WebhookHandlers {
	return &WebhookHandlers{
		webhookService: ws,
	}
}

// HandleWebhook accepts a webhook delivery and runs it through the ingestion
// pipeline. The response is always a fixed 200 acknowledgment: the source is
// an unauthenticated push channel with no negotiated retry contract, so
// processing outcomes are logged, never surfaced.
func (h *WebhookHandlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("ERROR [WebhookHandlers] HandleWebhook: failed to read request body: %v", err)
		body = nil
	}
	defer r.Body.Close()

	result := h.webhookService.ProcessWebhook(r.Context(), body)
	log.Printf("[WebhookHandlers] Webhook processed: ingested=%d reconciled=%d missed=%d failed=%d",
		result.Ingested, result.Reconciled, result.Missed, result.Failed)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
