package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wachat-backend/internal/api"
	"wachat-backend/internal/config"
	"wachat-backend/internal/handlers"
	"wachat-backend/internal/models"
	"wachat-backend/internal/realtime"
	"wachat-backend/internal/services"
	"wachat-backend/internal/store"
)

// memStore is a minimal in-memory store.Store for exercising the HTTP surface.
type memStore struct {
	messages []*models.Message
}

func (m *memStore) CreateMessage(ctx context.Context, arg store.CreateMessageParams) (*models.Message, error) {
	msg := &models.Message{
		ID:                arg.ID,
		ConversationID:    arg.ConversationID,
		Sender:            arg.Sender,
		Body:              arg.Body,
		Kind:              arg.Kind,
		Status:            arg.Status,
		ExternalMessageID: arg.ExternalMessageID,
		DisplayName:       arg.DisplayName,
		OccurredAt:        arg.OccurredAt,
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) GetMessageByExternalID(ctx context.Context, externalID string) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ExternalMessageID != nil && *msg.ExternalMessageID == externalID {
			return msg, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateMessageStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.Status = status
			return msg, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) UpdateMessageStatusByExternalID(ctx context.Context, externalID string, status models.MessageStatus) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ExternalMessageID != nil && *msg.ExternalMessageID == externalID {
			msg.Status = status
			return msg, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memStore) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	unread := make(map[string]int)
	latest := make(map[string]*models.Message)
	for _, msg := range m.messages {
		if msg.Kind != models.MessageKindOutgoing && msg.Status != models.MessageStatusRead {
			unread[msg.ConversationID]++
		}
		if cur, ok := latest[msg.ConversationID]; !ok || msg.OccurredAt.After(cur.OccurredAt) {
			latest[msg.ConversationID] = msg
		}
	}
	var out []models.ConversationSummary
	for id, msg := range latest {
		out = append(out, models.ConversationSummary{
			ConversationID: id,
			DisplayName:    msg.DisplayName,
			LastMessage:    *msg,
			UnreadCount:    unread[id],
		})
	}
	return out, nil
}

func (m *memStore) MarkConversationRead(ctx context.Context, conversationID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.Kind != models.MessageKindOutgoing && msg.Status != models.MessageStatusRead {
			msg.Status = models.MessageStatusRead
			n++
		}
	}
	return n, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	st := &memStore{}
	hub := realtime.NewHub()
	go hub.Run()

	webhookService := services.NewWebhookService(st, hub)
	messageService := services.NewMessageService(st, hub)

	router := api.NewRouter(api.RouterDependencies{
		WebhookHandler:      handlers.NewWebhookHandlers(webhookService),
		MessageHandler:      handlers.NewMessageHandlers(messageService),
		ConversationHandler: handlers.NewConversationHandlers(messageService),
		Hub:                 hub,
		Config:              &config.Config{HTTPPort: "0", ClientURL: "http://localhost:5173"},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func patchJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "OK", health.Status)
	require.False(t, health.Timestamp.IsZero())
}

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	srv, st := newTestServer(t)

	// Garbage payload: still a fixed 200, no record created.
	resp := postJSON(t, srv.URL+"/webhook", `not even json`)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, st.messages)
}

func TestWebhook_IngestsMessage(t *testing.T) {
	srv, st := newTestServer(t)

	payload := `{"entry":[{"changes":[{"value":{
		"messages":[{"from":"111","id":"wamid.A","timestamp":"1700000000","type":"text","text":{"body":"hi"}}],
		"contacts":[{"wa_id":"111","profile":{"name":"Alice"}}]
	}}]}]}`

	resp := postJSON(t, srv.URL+"/webhook", payload)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, st.messages, 1)
	got := st.messages[0]
	require.Equal(t, "111", got.ConversationID)
	require.Equal(t, "hi", got.Body)
	require.Equal(t, models.MessageStatusDelivered, got.Status)
	require.NotNil(t, got.DisplayName)
	require.Equal(t, "Alice", *got.DisplayName)
}

func TestWebhook_StatusReconciliation(t *testing.T) {
	srv, st := newTestServer(t)

	messagePayload := `{"entry":[{"changes":[{"value":{
		"messages":[{"from":"111","id":"wamid.A","timestamp":"1700000000","type":"text","text":{"body":"hi"}}]
	}}]}]}`
	statusPayload := `{"entry":[{"changes":[{"value":{
		"statuses":[{"id":"wamid.A","status":"read"}]
	}}]}]}`

	resp := postJSON(t, srv.URL+"/webhook", messagePayload)
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/webhook", statusPayload)
	resp.Body.Close()

	require.Len(t, st.messages, 1)
	require.Equal(t, models.MessageStatusRead, st.messages[0].Status)
}

func TestSendMessage_Created(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/messages/send", `{"wa_id":"222","text":"hello"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var msg models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	require.Equal(t, models.MessageKindOutgoing, msg.Kind)
	require.Equal(t, models.MessageStatusSent, msg.Status)
}

func TestSendMessage_MissingBodyRejected(t *testing.T) {
	srv, st := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/messages/send", `{"wa_id":"222"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, st.messages)
}

func TestUpdateStatus_UnknownIDReturns404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := patchJSON(t, srv.URL+"/api/messages/"+uuid.NewString()+"/status", `{"status":"read"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateStatus_InvalidIDReturns400(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := patchJSON(t, srv.URL+"/api/messages/not-a-uuid/status", `{"status":"read"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMessageHistoryAndConversationList(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, payload := range []string{
		`{"entry":[{"changes":[{"value":{"messages":[{"from":"111","id":"wamid.A","timestamp":"1700000000","type":"text","text":{"body":"one"}}]}}]}]}`,
		`{"entry":[{"changes":[{"value":{"messages":[{"from":"111","id":"wamid.B","timestamp":"1700000010","type":"text","text":{"body":"two"}}]}}]}]}`,
	} {
		resp := postJSON(t, srv.URL+"/webhook", payload)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/messages/111")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 2)
	require.Equal(t, "one", history[0].Body)
	require.Equal(t, "two", history[1].Body)

	resp, err = http.Get(srv.URL + "/api/chats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chats []models.ConversationSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chats))
	require.Len(t, chats, 1)
	require.Equal(t, "111", chats[0].ConversationID)
	require.Equal(t, 2, chats[0].UnreadCount)
	require.Equal(t, "two", chats[0].LastMessage.Body)
}

func TestMarkConversationRead(t *testing.T) {
	srv, st := newTestServer(t)

	payload := `{"entry":[{"changes":[{"value":{"messages":[{"from":"111","id":"wamid.A","timestamp":"1700000000","type":"text","text":{"body":"hi"}}]}}]}]}`
	resp := postJSON(t, srv.URL+"/webhook", payload)
	resp.Body.Close()

	resp = patchJSON(t, srv.URL+"/api/chats/111/read", ``)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.MarkReadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.True(t, result.Success)
	require.EqualValues(t, 1, result.Updated)

	require.Equal(t, models.MessageStatusRead, st.messages[0].Status)
}
