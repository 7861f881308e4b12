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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/config"
	dbRedis "github.com/kailas-cloud/campusbot/internal/db/redis"
	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/knowledge"
	logpkg "github.com/kailas-cloud/campusbot/internal/logger"
	"github.com/kailas-cloud/campusbot/internal/metrics"
	"github.com/kailas-cloud/campusbot/internal/repository/embcache"
	"github.com/kailas-cloud/campusbot/internal/repository/sheets"
	chiTransport "github.com/kailas-cloud/campusbot/internal/transport/chi"
	lineTransport "github.com/kailas-cloud/campusbot/internal/transport/line"
	openaiTransport "github.com/kailas-cloud/campusbot/internal/transport/openai"
	answeruc "github.com/kailas-cloud/campusbot/internal/usecase/answer"
	"github.com/kailas-cloud/campusbot/internal/usecase/contextbuild"
	"github.com/kailas-cloud/campusbot/internal/usecase/memory"
	reloaduc "github.com/kailas-cloud/campusbot/internal/usecase/reload"
	"github.com/kailas-cloud/campusbot/internal/version"
)

const cacheReadinessTimeout = 10 * time.Second

func main() {
	// .env first, so ${VAR} expansion in the YAML config sees it.
	_ = godotenv.Load()

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

	logger.Info("Starting campusbot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
	)

	// Register LLM metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	providerCfg := &openaiTransport.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.EmbeddingModel,
		ChatModel: cfg.LLM.ChatModel,
		Provider:  cfg.LLM.Provider,
		Logger:    logger,
	}

	embedder := buildEmbedder(cfg, providerCfg, logger)
	chatClient := openaiTransport.NewChatClient(providerCfg)

	store := knowledge.NewStore()
	history := memory.NewHistory()

	source := sheets.NewClient(sheets.Config{
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		GIDs:          gidMap(cfg.Sheets.GIDs),
	}, logger)

	reloadSvc := reloaduc.New(source, embedder, store, cfg.Retrieval.BuildConcurrency, logger)

	contexts := contextbuild.NewBuilder(store, cfg.Campus, cfg.Retrieval.ContextFanOut)
	answerSvc := answeruc.New(embedder, chatClient, contexts, history, logger)

	var webhook http.Handler
	if cfg.Line.Enabled() {
		handler, err := lineTransport.NewHandler(lineTransport.Config{
			ChannelSecret:      cfg.Line.ChannelSecret,
			ChannelAccessToken: cfg.Line.ChannelAccessToken,
		}, answerSvc, logger)
		if err != nil {
			logger.Fatal("Failed to create LINE handler", zap.Error(err))
		}
		webhook = handler
	} else {
		logger.Warn("LINE credentials missing, webhook disabled")
	}

	server := chiTransport.NewServer(answerSvc, reloadSvc, store, history, webhook)

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

	// Initial load happens after the server is up, like the original boot
	// sequence: endpoints answer immediately, against an empty state until
	// the first build finishes.
	go func() {
		reloadSvc.Reload(context.Background())
		logger.Info("System ready")
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

// buildEmbedder assembles the embedder chain: OpenAI-compatible provider,
// optionally wrapped in the Redis cache. An unreachable cache downgrades to
// no cache instead of aborting startup.
func buildEmbedder(cfg config.Config, providerCfg *openaiTransport.Config, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(providerCfg)

	if len(cfg.Cache.Addrs) == 0 {
		return base
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache unavailable, continuing without it", zap.Error(err))
		return base
	}

	if err := store.WaitForReady(context.Background(), cacheReadinessTimeout); err != nil {
		logger.Warn("Embedding cache not ready, continuing without it", zap.Error(err))
		store.Close()
		return base
	}

	logger.Info("Embedding cache connected", zap.Strings("addrs", cfg.Cache.Addrs))
	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	return embcache.New(base, store, ttl, metrics.EmbeddingCacheTotal, logger)
}

// gidMap converts the YAML gid block into the per-category map the sheet
// client consumes. Unset gids leave their category out of the load.
func gidMap(g config.GIDConfig) map[domain.Category]string {
	m := make(map[domain.Category]string)
	set := func(cat domain.Category, gid string) {
		if gid != "" {
			m[cat] = gid
		}
	}
	set(domain.CategoryStudent, g.Students)
	set(domain.CategoryTeacher, g.Teachers)
	set(domain.CategoryGuestTeacher, g.GuestTeachers)
	set(domain.CategorySchedule, g.Schedule)
	set(domain.CategorySubject, g.Subjects)
	set(domain.CategoryFAQ, g.FAQ)
	set(domain.CategoryRoom, g.Rooms)
	return m
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
						"code":    "internal_error",
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
