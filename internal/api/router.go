package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wachat-backend/internal/config"
	"wachat-backend/internal/handlers"
	"wachat-backend/internal/models"
	"wachat-backend/internal/realtime"
	"wachat-backend/pkg/httputil"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	WebhookHandler      *handlers.WebhookHandlers
	MessageHandler      *handlers.MessageHandlers
	ConversationHandler *handlers.ConversationHandlers
	Hub                 *realtime.Hub
	Config              *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.Config.ClientURL, "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC(),
		})
	})

	// --- Inbound Provider Webhook ---
	// Public by necessity: the provider pushes events here. Always acknowledged
	// with a fixed 200 regardless of processing outcome.
	r.Post("/webhook", deps.WebhookHandler.HandleWebhook)

	// --- Realtime Channel ---
	r.Get("/ws", deps.Hub.ServeWS)

	// --- REST API ---
	r.Route("/api", func(r chi.Router) {
		r.Route("/messages", func(r chi.Router) {
			r.Post("/send", deps.MessageHandler.HandleSendMessage)
			r.Patch("/{messageID}/status", deps.MessageHandler.HandleUpdateStatus)
			r.Get("/{conversationID}", deps.MessageHandler.HandleGetMessages)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", deps.ConversationHandler.HandleListConversations)
			r.Patch("/{conversationID}/read", deps.ConversationHandler.HandleMarkRead)
		})
	})

	return r
}
