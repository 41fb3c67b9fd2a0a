package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"latchbot/clients/latch"
	"latchbot/config"
	"latchbot/core/log"
	"latchbot/handlers"
	"latchbot/middleware"
	"latchbot/services/commands"
)

func main() {
	if err := run(); err != nil {
		log.Error("❌ Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log.SetLevel(cfg.SlogLevel())

	client, err := latch.NewClient(
		cfg.BotToken,
		latch.WithBaseURL(cfg.BaseURL),
		latch.WithTimeout(cfg.Timeout),
		latch.WithMaxRetries(cfg.MaxRetries),
	)
	if err != nil {
		return err
	}
	log.Info("✅ Latch client ready", "base_url", client.BaseURL())

	alertMiddleware := middleware.NewErrorAlertMiddleware(client, middleware.AlertConfig{
		ConversationID: cfg.AlertConversationID,
		Environment:    cfg.Environment,
		AppName:        cfg.AppName,
	})

	commandRouter := commands.NewRouter(client, commands.WithObserver(alertMiddleware))
	registerCommands(commandRouter)
	log.Info("✅ Commands registered", "commands", commandRouter.Commands())

	router := mux.NewRouter()
	webhookHandler := handlers.NewWebhookHandler(commandRouter, cfg.WebhookKey)
	webhookHandler.SetupEndpoints(router, cfg.WebhookPath)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", handlers.WebhookKeyHeader, handlers.RequestIDHeader},
		ExposedHeaders: []string{handlers.RequestIDHeader},
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(c.Handler(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	err = handleGracefulShutdown(server)
	alertMiddleware.Wait()
	return err
}

func handleGracefulShutdown(server *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("✅ Listening", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error("❌ Server error", "error", err)
		return err
	case <-stop:
	}
	log.Info("🛑 Shutdown signal received, cleaning up...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("❌ Server shutdown error", "error", err)
		return err
	}

	log.Info("✅ Server stopped gracefully")
	return nil
}
