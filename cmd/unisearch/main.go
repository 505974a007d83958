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
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/unisearch/internal/config"
	dbRedis "github.com/kailas-cloud/unisearch/internal/db/redis"
	"github.com/kailas-cloud/unisearch/internal/domain/complexity"
	logpkg "github.com/kailas-cloud/unisearch/internal/logger"
	"github.com/kailas-cloud/unisearch/internal/metrics"
	"github.com/kailas-cloud/unisearch/internal/repository/answercache"
	chiTransport "github.com/kailas-cloud/unisearch/internal/transport/chi"
	docindexTransport "github.com/kailas-cloud/unisearch/internal/transport/docindex"
	websearchTransport "github.com/kailas-cloud/unisearch/internal/transport/websearch"
	"github.com/kailas-cloud/unisearch/internal/usecase/classify"
	"github.com/kailas-cloud/unisearch/internal/usecase/docsearch"
	healthuc "github.com/kailas-cloud/unisearch/internal/usecase/health"
	"github.com/kailas-cloud/unisearch/internal/usecase/orchestrate"
	"github.com/kailas-cloud/unisearch/internal/usecase/stream"
	"github.com/kailas-cloud/unisearch/internal/usecase/synthesis"
	websearchuc "github.com/kailas-cloud/unisearch/internal/usecase/websearch"
	"github.com/kailas-cloud/unisearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting unisearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Answer cache store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Collaborator clients
	docClient := docindexTransport.New(
		cfg.Adapters.Document.BaseURL,
		time.Duration(cfg.Adapters.Document.TimeoutSec)*time.Second,
	)
	webClient := websearchTransport.New(
		cfg.Adapters.Web.BaseURL,
		time.Duration(cfg.Adapters.Web.TimeoutSec)*time.Second,
	)

	// Use case services
	classifier := classify.New(cfg.Routing.ConfidenceThreshold)
	docSvc := docsearch.New(docClient, time.Duration(cfg.Adapters.Document.TimeoutSec)*time.Second)
	webSvc := websearchuc.New(webClient, websearchuc.Config{
		Timeout:         time.Duration(cfg.Adapters.Web.TimeoutSec) * time.Second,
		CostPerQuery:    cfg.Adapters.Web.CostPerQuery,
		RateLimitPerSec: cfg.Adapters.Web.RateLimitPerSec,
		Burst:           cfg.Adapters.Web.Burst,
	})
	synthSvc := synthesis.New()

	// Answer cache with complexity-based TTLs
	var cache orchestrate.AnswerCache
	var history chiTransport.History
	if cfg.Cache.Enabled {
		policy := complexity.TTLPolicy{
			complexity.Simple:   time.Duration(cfg.Cache.SimpleTTLSec) * time.Second,
			complexity.Standard: time.Duration(cfg.Cache.StandardTTL) * time.Second,
			complexity.Open:     time.Duration(cfg.Cache.OpenTTLSec) * time.Second,
		}
		repo := answercache.New(store, policy,
			time.Duration(cfg.Cache.HistoryTTLSec)*time.Second, logger)
		cache = repo
		history = repo
	}

	orchestrator := orchestrate.New(
		classifier, docSvc, webSvc, synthSvc, cache,
		time.Duration(cfg.Routing.PipelineTimeoutSec)*time.Second,
	)

	chunker := stream.New(stream.Config{
		MinChunkWords:    cfg.Stream.MinChunkWords,
		TargetChunkCount: cfg.Stream.TargetChunkCount,
		FirstDelay:       time.Duration(cfg.Stream.FirstDelayMS) * time.Millisecond,
		EarlyDelay:       time.Duration(cfg.Stream.EarlyDelayMS) * time.Millisecond,
		LateDelay:        time.Duration(cfg.Stream.LateDelayMS) * time.Millisecond,
		CachedDelay:      time.Duration(cfg.Stream.CachedDelayMS) * time.Millisecond,
	})

	healthSvc := healthuc.New(store, docClient, webClient)

	server := chiTransport.NewServer(orchestrator, history, healthSvc, chunker, cfg.Stream.Model, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"status":  "error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
