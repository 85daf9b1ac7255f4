package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/books"
	"bookshelf/internal/config"
	"bookshelf/internal/http_server/handlers/books/list"
	"bookshelf/internal/http_server/handlers/books/remove"
	"bookshelf/internal/http_server/handlers/books/save"
	"bookshelf/internal/http_server/handlers/books/update"
	"bookshelf/internal/http_server/handlers/login"
	"bookshelf/internal/http_server/handlers/profile"
	"bookshelf/internal/http_server/handlers/signup"
	"bookshelf/internal/lib/notify"
	"bookshelf/internal/middleware/authn"
	rateLimit "bookshelf/internal/middleware/ratelimit"
	"bookshelf/internal/rabbitmq"
	"bookshelf/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting bookshelf service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	var mailer notify.Publisher = notify.Noop{}
	if cfg.RabbitMQ.URL != "" {
		msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer msgBroker.Close()

		mailer = msgBroker
	}

	authService := auth.New(log, storage, storage, cfg.Tokens.Secret, cfg.Tokens.TokenTTL)
	bookService := books.New(log, storage, storage, storage)

	router := setupRouter(log, authService, bookService, mailer, cfg.Tokens.Secret)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	bookService *books.Books,
	mailer notify.Publisher,
	tokenSecret string,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	validate := validator.New()
	requireAuth := authn.New(log, tokenSecret)

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Signup()).Post("/signup",
			signup.New(log, validate, authService, mailer),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService),
		)
		r.With(requireAuth).Get("/user",
			profile.New(log, authService),
		)
	})

	r.Route("/books", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/", save.New(log, validate, bookService))
		r.Get("/", list.New(log, bookService))
		r.Put("/{id}", update.New(log, validate, bookService))
		r.Delete("/{id}", remove.New(log, bookService))
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
