// lingochat - language-learning chat backend
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mateoias/lingochat/internal/api"
	"github.com/mateoias/lingochat/internal/chat"
	"github.com/mateoias/lingochat/internal/chatlog"
	"github.com/mateoias/lingochat/internal/config"
	"github.com/mateoias/lingochat/internal/identity"
	"github.com/mateoias/lingochat/internal/llm"
	"github.com/mateoias/lingochat/internal/middleware"
	"github.com/mateoias/lingochat/internal/session"
	"github.com/mateoias/lingochat/internal/speech"
	"github.com/mateoias/lingochat/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.UserStore, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	users, err := newUserStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize user store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := users.Close(); closeErr != nil {
			slog.Error("Failed to close user store", "error", closeErr)
		}
	}()

	model := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel)

	instructions, err := chat.LoadInstructions()
	if err != nil {
		slog.Error("Failed to load instruction catalog", "error", err)
		os.Exit(1)
	}

	var selector chat.InstructionSelector = chat.FixedSelector{}
	if cfg.InstructionSelector == config.SelectorClassifier {
		selector = chat.ClassifierSelector{Model: model}
		slog.Info("Classifier-driven instruction selection enabled")
	}

	chatService := chat.NewService(model, instructions, selector, cfg.ModelTimeout)

	var synthesizer speech.Synthesizer
	if cfg.SpeechEnabled {
		synthesizer = speech.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.SpeechModel)
		slog.Info("Speech synthesis enabled")
	}

	sessions := session.NewManager()

	chatLog, err := chatlog.New(chatlog.Config{
		Enabled:   cfg.ChatLogEnabled,
		Dir:       cfg.ChatLogDir,
		QueueSize: cfg.ChatLogQueueSize,
	})
	if err != nil {
		slog.Error("Failed to initialize chat log", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := chatLog.Close(); closeErr != nil {
			slog.Error("Failed to close chat log", "error", closeErr)
		}
	}()
	if cfg.ChatLogEnabled {
		slog.Info("Chat turn logging enabled", "dir", cfg.ChatLogDir)
	}

	handler := api.NewHandler(users, sessions, chatService, synthesizer, chatLog, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))
	r.Use(identity.Middleware())

	handler.RegisterRoutes(r)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ModelTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start session TTL worker.
	session.StartTTLWorker(ctx, sessions, cfg.SessionTTL)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

func newUserStore(cfg *config.Config) (store.UserStore, error) {
	switch cfg.UserStore {
	case config.StoreSQLite:
		return store.NewSQLite(cfg.DBPath)
	default:
		return store.NewJSONFile(cfg.UsersPath)
	}
}
