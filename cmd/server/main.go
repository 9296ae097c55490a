package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-editorial/pkg/editorial/api"
	"github.com/tendant/simple-editorial/pkg/editorial/config"
	"github.com/tendant/simple-editorial/pkg/editorial/tasks"
)

const devJWTSecret = "editorial-dev-secret"

func main() {
	configFile := flag.String("config", "", "optional yaml/json/toml config file; environment variables override it")
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	source := config.WithEnv()
	if *configFile != "" {
		source = config.WithFile(*configFile)
	}
	serverConfig, err := config.Load(source)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := serverConfig.NewLogger()
	slog.SetDefault(logger)

	if err := run(serverConfig, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := cfg.Build(ctx, logger)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Warn("Failed to close components", "error", err)
		}
	}()

	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = devJWTSecret
	}

	scheduler := tasks.New(logger, tasks.WithJobTimeout(cfg.JobTimeout))
	if err := scheduler.AddJob(tasks.JobPublishScheduled, cfg.PublishSchedule, tasks.PublishScheduled(comps.Service, time.Now, logger)); err != nil {
		return err
	}
	if comps.ViewCounter != nil {
		if err := scheduler.AddJob(tasks.JobFlushViewCounts, cfg.FlushSchedule, tasks.FlushViewCounts(comps.ViewCounter)); err != nil {
			return err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if comps.Pool != nil {
			if err := comps.Pool.Ping(r.Context()); err != nil {
				logger.Error("Health check failed", "error", err)
				render.Status(r, http.StatusServiceUnavailable)
				render.PlainText(w, r, http.StatusText(http.StatusServiceUnavailable))
				return
			}
		}
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})
	r.Mount("/", api.NewRouter(comps.Service, api.NewJWTAuth(secret), logger))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, "editorial-server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Editorial server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.Storage.Type,
			"redis", cfg.RedisURL != "",
			"kafka", len(cfg.KafkaBrokers) > 0,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := scheduler.Run(gctx); err != nil {
			return err
		}
		if comps.ViewCounter == nil {
			return nil
		}
		// Buffered views would otherwise wait for the next process
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := comps.ViewCounter.Flush(flushCtx)
		logger.Info("Flushed view counts on shutdown", "posts", n)
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
