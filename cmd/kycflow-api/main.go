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

	"kycflow/internal/analyzer"
	"kycflow/internal/api"
	"kycflow/internal/auth"
	"kycflow/internal/certificate"
	"kycflow/internal/config"
	"kycflow/internal/db"
	"kycflow/internal/jobs"
	"kycflow/internal/memstore"
	"kycflow/internal/metrics"
	"kycflow/internal/pubsub"
	"kycflow/internal/schema"
	"kycflow/internal/service"
	"kycflow/internal/storage"
	"kycflow/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "migrate":
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	case "goose-migrate":
		if err := runGooseMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Goose migration failed: %v", err)
		}
		return
	case "serve":
	default:
		log.Fatalf("Unknown command: %s (use 'serve', 'migrate' or 'goose-migrate')", command)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := serve(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func serve(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// Store
	var store service.Store
	var rdb *redis.Client
	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := memstore.New()
		mem.Seed()
		store = mem
		logger.Warn("Using in-memory store with demo users; data is lost on restart")
	default:
		dbPool, err := db.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		store = dbPool.Queries

		// Redis connection
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	for _, role := range []string{"Worker", "Supervisor"} {
		if _, err := store.GetRoleByName(ctx, role); err != nil {
			logger.Warn("Role missing; run migrations", zap.String("role", role), zap.Error(err))
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Pub/sub bus and WebSocket hub
	bus := pubsub.New(rdb, logger)
	hub := ws.NewHub(logger)
	go hub.Run()
	defer hub.Close()
	bus.SetWSHub(hub)

	// Collaborators
	var files storage.Storage
	switch {
	case cfg.AWS.Bucket != "" && cfg.AWS.PublicBucket:
		logger.Info("Serving documents from public bucket", zap.String("bucket", cfg.AWS.Bucket))
		files = storage.NewBucketStorage(cfg.AWS.Bucket, cfg.AWS.Region)
	case cfg.AWS.Bucket != "":
		s3Store, err := storage.NewS3(ctx, storage.S3Config{
			Region:   cfg.AWS.Region,
			Bucket:   cfg.AWS.Bucket,
			Endpoint: cfg.AWS.Endpoint,
			TTL:      cfg.AWS.PresignTTL,
		})
		if err != nil {
			return err
		}
		files = s3Store
	default:
		logger.Warn("AWS_BUCKET_NAME not set; serving documents unsigned", zap.String("url", cfg.AWS.PublicURL))
		files = storage.NewPublicStorage(cfg.AWS.PublicURL)
	}

	schemas := schema.NewCompilerWithCache(64)
	docAnalyzer := analyzer.New(analyzer.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	}, schemas)
	renderer := certificate.New(certificate.Config{
		BaseURL:    cfg.Renderer.URL,
		APIKey:     cfg.Renderer.APIKey,
		TemplateID: cfg.Renderer.TemplateID,
	})

	// Services
	cases := service.NewCaseService(store, bus, m, logger)
	documents := service.NewDocumentService(store, store)
	verification := service.NewVerificationService(cases, documents, files, docAnalyzer, m, logger)
	verification.SetAutoComplete(cfg.AIAutoComplete)

	// Background jobs need Redis
	if rdb != nil {
		jobServer, client := jobs.NewJobServer(cfg.RedisAddr, verification, cases, bus, logger)
		go func() {
			if err := jobServer.Start(); err != nil {
				logger.Error("Job server failed", zap.Error(err))
			}
		}()
		defer jobServer.Stop()

		jobClient := service.NewAsynqJobClient(client)
		cases.SetJobClient(jobClient)
		verification.SetJobClient(jobClient)
	}

	// HTTP router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Timeout middleware - skip for WebSocket upgrades
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, req)
				return
			}
			middleware.Timeout(60 * time.Second)(next).ServeHTTP(w, req)
		})
	})

	r.Mount("/v1", api.Routes(api.Dependencies{
		Cases:        cases,
		Assignments:  service.NewAssignmentService(store, store, bus, m, logger),
		Verification: verification,
		Certificates: service.NewCertificateService(store, store, renderer, m),
		Permissions:  service.NewPermissionService(store),
		Storage:      files,
		PDFs:         renderer,
		Schemas:      schemas,
		Hub:          hub,
		JWT:          auth.NewJWTConfig(cfg.JWTSecret, cfg.AllowDevHeader),
		Log:          logger,
	}))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	logger.Info("Starting server", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}
