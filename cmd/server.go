package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rbc-easyrent/signiflow-order-service/internal/api"
	"github.com/rbc-easyrent/signiflow-order-service/internal/config"
	"github.com/rbc-easyrent/signiflow-order-service/internal/handlers"
	"github.com/rbc-easyrent/signiflow-order-service/internal/logging"
	"github.com/rbc-easyrent/signiflow-order-service/internal/orders"
	"github.com/rbc-easyrent/signiflow-order-service/internal/payload"
	"github.com/rbc-easyrent/signiflow-order-service/internal/pdf"
	"github.com/rbc-easyrent/signiflow-order-service/internal/service"
	"github.com/rbc-easyrent/signiflow-order-service/internal/tokencache"
	"github.com/rbc-easyrent/signiflow-order-service/internal/worker"
)

// Map zap levels onto GCP Cloud Logging severities.
func zapLevelToGCPSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		enc.AppendString("CRITICAL")
	case zapcore.FatalLevel:
		enc.AppendString("EMERGENCY")
	default:
		enc.AppendString("DEFAULT")
	}
}

func main() {
	// Structured JSON logs compatible with Cloud Logging.
	logCfg := zap.NewProductionConfig()
	logCfg.EncoderConfig.MessageKey = "message"
	logCfg.EncoderConfig.LevelKey = "severity"
	logCfg.EncoderConfig.TimeKey = "timestamp"
	logCfg.EncoderConfig.EncodeLevel = zapLevelToGCPSeverity
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Error("configuration invalid", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store orders.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			zap.L().Error("failed to connect to database", zap.Error(err))
			os.Exit(1)
		}
		defer pool.Close()
		store = orders.NewPostgresStore(pool)
		zap.L().Info("using postgres order store")
	} else {
		store = orders.NewMemoryStore()
		zap.L().Warn("DATABASE_URL not set, using in-memory order store")
	}

	cache := tokencache.NewMemory()
	client := api.NewSigniFlowClient(cfg, cache)
	builder := payload.NewBuilder(pdf.NewResolver(cfg.UploadsBaseURL, cfg.UploadsBaseDir))
	signingService := service.NewSigningService(store, client, builder, cfg)

	pool := worker.NewPool(signingService, 3)
	pool.Start(ctx)

	processHandler := handlers.NewProcessHandler(signingService, pool, client)
	webhookHandler := handlers.NewWebhookHandler(store)

	router := chi.NewRouter()
	router.Use(withLogging)
	router.Get("/health", healthHandler)
	router.Post("/events/order", processHandler.HandleEvent)
	router.Post("/process", processHandler.ProcessOrder)
	router.Post("/test/login", processHandler.TestLogin)
	router.Post("/webhooks/signiflow", webhookHandler.HandleNotification)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// GRACEFUL SHUTDOWN
	go func() {
		<-ctx.Done()
		zap.L().Info("Shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("Server started", zap.String("port", cfg.Port))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.L().Error("Server stopped unexpectedly", zap.Error(err))
	}
}

// withLogging attaches a trace id and logs request start/completion.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get("X-Request-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := logging.WithTraceID(r.Context(), traceID)

		zap.L().Info("Request started",
			zap.String("trace_id", traceID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
		)

		next.ServeHTTP(w, r.WithContext(ctx))

		zap.L().Info("Request completed",
			zap.String("trace_id", traceID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Service: "signiflow-order-service",
		Version: "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
