package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/Eugenepoly/market-agent/internal/api"
	"github.com/Eugenepoly/market-agent/internal/auth"
	"github.com/Eugenepoly/market-agent/internal/config"
	"github.com/Eugenepoly/market-agent/internal/drafts"
	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/internal/mailer"
	"github.com/Eugenepoly/market-agent/internal/orchestrator"
	"github.com/Eugenepoly/market-agent/internal/reports"
	"github.com/Eugenepoly/market-agent/internal/statestore"
	"github.com/Eugenepoly/market-agent/internal/tracing"
	"github.com/Eugenepoly/market-agent/internal/validator"
	"github.com/Eugenepoly/market-agent/internal/watchlist"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the workflow server. All configuration comes from environment
variables; see the README for the full list.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	tracer, err := tracing.Init(ctx, cfg.TracingEnabled, cfg.OTLPEndpoint, logger)
	if err != nil {
		// Tracing is optional; the server runs without it.
		logger.Error("tracing init failed", "error", err)
	}

	store, err := newStateStore(cfg)
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}

	client := llm.NewGeminiClient(llm.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.ModelName,
		BaseURL:           cfg.ModelBaseURL,
		RequestsPerMinute: cfg.RequestsPerMinute,
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         cfg.RetryBaseDelay,
		MaxDelay:          cfg.RetryMaxDelay,
	})

	draftStore, err := drafts.NewStore(cfg.PendingDir, cfg.ApprovedDir)
	if err != nil {
		return fmt.Errorf("draft store: %w", err)
	}

	archive, err := newArchive(cfg)
	if err != nil {
		return fmt.Errorf("report archive: %w", err)
	}

	mail := mailer.New(mailer.Config{
		Enabled:  cfg.MailEnabled,
		TestMode: cfg.MailTestMode,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		To:       cfg.MailTo,
	}, logger)

	registry := orchestrator.DefaultRegistry(orchestrator.Deps{
		LLM:       client,
		Watchlist: watchlist.Default(),
		DataDir:   cfg.DataDir,
		Logger:    logger,
	})

	orch := orchestrator.New(store, registry, orchestrator.Config{
		Drafts:  draftStore,
		Archive: archive,
		Mailer:  mail,
		Logger:  logger,
	})

	v, err := validator.New()
	if err != nil {
		return fmt.Errorf("request validator: %w", err)
	}

	extra := []mux.MiddlewareFunc{
		auth.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler,
	}
	if cfg.OIDCEnabled {
		provider, err := auth.NewProvider(ctx, auth.Config{
			Issuer:   cfg.OIDCIssuer,
			ClientID: cfg.OIDCClientID,
		})
		if err != nil {
			return fmt.Errorf("oidc provider: %w", err)
		}
		extra = append(extra, auth.NewMiddleware(provider, true).Handler)
	}

	handlers := api.NewHandlers(orch, store, v, cfg.CORSOrigins, logger)
	server := api.NewServer(handlers, extra...)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("model", cfg.ModelName),
			slog.String("state_store", cfg.StateStoreType),
			slog.String("archive", cfg.ArchiveBackend),
			slog.Bool("auth_enabled", cfg.OIDCEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if tracer != nil {
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newStateStore(cfg *config.Config) (statestore.Store, error) {
	switch cfg.StateStoreType {
	case "memory":
		return statestore.NewMemoryStore(), nil
	case "redis":
		return statestore.NewRedisStore(&statestore.RedisConfig{
			URL: cfg.RedisURL,
			TTL: cfg.RedisTTL,
		})
	default:
		return statestore.NewFileStore(cfg.StateDir)
	}
}

func newArchive(cfg *config.Config) (reports.Archive, error) {
	if cfg.ArchiveBackend == "s3" {
		return reports.NewS3Archive(&reports.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			UseSSL:          cfg.S3UseSSL,
			PathPrefix:      cfg.S3PathPrefix,
		})
	}
	return reports.NewLocalArchive(cfg.ReportsDir, cfg.ReportMaxFiles)
}
