// Package main is the entry point for the chatbot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wondertoys/support-chatbot/internal/augment"
	"github.com/wondertoys/support-chatbot/internal/config"
	"github.com/wondertoys/support-chatbot/internal/conversation"
	"github.com/wondertoys/support-chatbot/internal/handler"
	"github.com/wondertoys/support-chatbot/internal/middleware"
	natsclient "github.com/wondertoys/support-chatbot/internal/nats"
	"github.com/wondertoys/support-chatbot/internal/nlp"
	"github.com/wondertoys/support-chatbot/internal/response"
	"github.com/wondertoys/support-chatbot/internal/service"
	"github.com/wondertoys/support-chatbot/internal/store"
	"github.com/wondertoys/support-chatbot/pkg/logger"
	"github.com/wondertoys/support-chatbot/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chatbot API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-chatbot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the store. The server cannot run without persistence.
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// Connect to NATS when event mirroring is enabled. A failed connection is
	// fatal only because the operator asked for it explicitly.
	var (
		nc        *natsclient.Client
		publisher conversation.Publisher
	)
	if cfg.NATSEnabled {
		nc, err = natsclient.Connect(natsclient.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()

		pub := natsclient.NewPublisher(nc)
		if err := pub.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		publisher = pub
	}

	// Entity augmenter: no-op unless a provider and key are configured.
	augmenterKey := cfg.OpenAIAPIKey
	if augment.Provider(cfg.AugmenterProvider) == augment.ProviderAnthropic {
		augmenterKey = cfg.AnthropicAPIKey
	}
	augmenter, err := augment.New(augment.Provider(cfg.AugmenterProvider), augmenterKey)
	if err != nil {
		log.Warn("failed to create entity augmenter, continuing without it", zap.Error(err))
		augmenter = augment.Noop{}
	}
	log.Info("entity augmenter configured", zap.String("provider", augmenter.Name()))

	// The classifier must train before serving; an untrainable corpus is a
	// build defect.
	classifier := nlp.NewClassifier(log)
	if err := classifier.Train(nlp.DefaultTrainingData); err != nil {
		log.Error("failed to train intent classifier", zap.Error(err))
		os.Exit(1)
	}

	// Fail fast on an incomplete template table rather than at first use.
	composer := response.NewComposer()
	if err := composer.Validate(nlp.SupportedLanguages); err != nil {
		log.Error("response template table incomplete", zap.Error(err))
		os.Exit(1)
	}

	extractor := nlp.NewExtractor(augmenter, log)

	conversations := conversation.NewManager(st, publisher, log, conversation.Config{
		InactivityWindow: cfg.InactivityWindow,
		ContextWindow:    cfg.ContextWindow,
		MaxHistory:       cfg.MaxHistory,
		DefaultLanguage:  cfg.DefaultLanguage,
	})

	chatSvc := service.NewChatService(
		classifier,
		extractor,
		conversations,
		composer,
		log,
		cfg.ConfidenceThreshold,
		cfg.DebugInfo,
	)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(st, nc)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	analyticsHandler := handler.NewAnalyticsHandler(chatSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Health endpoints (no auth required)
	r.Get("/", healthHandler.Index)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Chat endpoint
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/chat", chatHandler.Chat)
	})

	// Analytics endpoints
	r.Route("/analytics", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.RequireScope("analytics:read"))
		}
		r.Get("/{session_id}", analyticsHandler.History)
		r.Get("/{session_id}/stats", analyticsHandler.Stats)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
