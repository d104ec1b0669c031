package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"wachat-backend/internal/api"
	"wachat-backend/internal/config"
	"wachat-backend/internal/handlers"
	"wachat-backend/internal/realtime"
	"wachat-backend/internal/replay"
	"wachat-backend/internal/services"
	"wachat-backend/internal/store/postgres"
)

func main() {
	log.Println("Starting WaChat Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	dbpool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Unable to create database connection pool: %v\n", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(dbCtx); err != nil {
		log.Fatalf("FATAL: Unable to ping database: %v\n", err)
	}
	log.Println("Database connection pool established and pinged successfully.")

	// 3. Initialize Dependencies (Store, Hub, Services, Handlers)
	pgStore := postgres.NewPostgresStore(dbpool)
	log.Println("Postgres store initialized.")

	hub := realtime.NewHub()
	go hub.Run()
	log.Println("Realtime hub started.")

	webhookService := services.NewWebhookService(pgStore, hub)
	log.Println("WebhookService initialized.")
	messageService := services.NewMessageService(pgStore, hub)
	log.Println("MessageService initialized.")

	webhookHandler := handlers.NewWebhookHandlers(webhookService)
	messageHandler := handlers.NewMessageHandlers(messageService)
	conversationHandler := handlers.NewConversationHandlers(messageService)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		WebhookHandler:      webhookHandler,
		MessageHandler:      messageHandler,
		ConversationHandler: conversationHandler,
		Hub:                 hub,
		Config:              cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// 6. Seed the store from recorded sample payloads shortly after boot.
	// Replay shares the live webhook pipeline and may run concurrently with
	// live traffic.
	replayer := replay.NewReplayer(webhookService, cfg.SampleDataDir, cfg.ReplayDelay)
	go func() {
		time.Sleep(cfg.ReplayStartupDelay)
		if err := replayer.Run(context.Background()); err != nil {
			log.Printf("ERROR: Sample payload replay failed: %v", err)
			return
		}
		log.Println("Sample payloads processed successfully.")
	}()

	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
