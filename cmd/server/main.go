package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/auth"
	"github.com/ayush/science-tutor/internal/config"
	"github.com/ayush/science-tutor/internal/conversation"
	"github.com/ayush/science-tutor/internal/document"
	"github.com/ayush/science-tutor/internal/llm"
	"github.com/ayush/science-tutor/internal/logger"
	"github.com/ayush/science-tutor/internal/middleware"
	"github.com/ayush/science-tutor/internal/store"
	"github.com/ayush/science-tutor/internal/tutor"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogFilePath, cfg.IsProduction())
	defer log.Sync()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatal("postgres migrate", zap.Error(err))
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("mongo connect", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatal("minio connect", zap.Error(err))
	}

	// ── Completion service ───────────────────────────────────
	var completer llm.Completer
	if cfg.LLM.APIKey != "" {
		completer = llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	} else {
		log.Warn("LLM_API_KEY not set, every reply and document will use offline fallbacks")
	}

	// ── Tutor sessions ───────────────────────────────────────
	archive := tutor.NewArchive(mongoStore, minioStore, cfg.LLM.Model, log)
	registry := tutor.NewRegistry(cfg.Tutor.SessionIdleTTL, func(userID string) *conversation.Controller {
		return conversation.New(completer, controllerOptions(cfg, userID, pgStore, archive), log)
	}, log)
	defer registry.Close()

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(pgStore, sessions, log)
	tutorHandler := tutor.NewHandler(registry, mongoStore, minioStore, pgStore, log)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(middleware.RequireAuth(sessions)).Get("/me", authHandler.Me)
	})

	r.Route("/api/tutor", func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		tutorHandler.Routes(r)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
	}

	go func() {
		log.Info("tutor listening", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func controllerOptions(cfg *config.Config, userID string, outcomes conversation.OutcomeRecorder, archive *tutor.Archive) conversation.Options {
	opts := conversation.DefaultOptions()
	opts.SessionID = userID
	opts.TokenLimit = cfg.Tutor.TokenLimit
	opts.RevealTick = cfg.Timing.RevealTick
	opts.RevealDelay = cfg.Timing.RevealDelay
	opts.Document = document.Options{
		PlanTick:     cfg.Timing.PlanProgressTick,
		ReportTick:   cfg.Timing.ReportProgressTick,
		PlanSettle:   cfg.Timing.PlanSettleDelay,
		ReportSettle: cfg.Timing.ReportSettleDelay,
	}
	opts.Outcomes = outcomes
	opts.Archive = archive.ForUser(userID)
	return opts
}
