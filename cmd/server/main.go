package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"Commentary/internal/akismet"
	"Commentary/internal/api/middleware"
	"Commentary/internal/api/routes"
	"Commentary/internal/config"
	"Commentary/internal/core/comments"
	"Commentary/internal/core/moderation"
	"Commentary/internal/core/pages"
	"Commentary/internal/db/postgres"
	"Commentary/internal/markdown"
	"Commentary/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Connected to database")

	// Run migrations
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect:", err)
	}

	if err := goose.Up(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	log.Println("Migrations completed successfully")

	// Repositories
	commentRepo := postgres.NewCommentRepository(db)
	pageRepo := postgres.NewPageRepository(db)

	// Moderation collaborators
	render := markdown.New(cfg.Comments.Markdown, logger)

	var classifier moderation.Classifier
	if cfg.Comments.Akismet.Key != "" {
		client := akismet.NewClient(cfg.Comments.Akismet.Key, cfg.Server.BaseURL)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.VerifyKey(ctx); err != nil {
			log.Fatal("Akismet key verification failed:", err)
		}
		cancel()
		classifier = client
		log.Println("Akismet classification enabled")
	}

	pipeline := moderation.NewPipeline(
		commentRepo, classifier, nil, render,
		cfg.Comments, cfg.Server.BaseURL, logger,
	)

	// Services
	commentService := comments.NewCommentService(commentRepo, pipeline, render, cfg.Comments, logger)
	pageService := pages.NewService(pageRepo, logger)

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	r.Use(rateLimiter.Middleware)

	auth := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	flash := middleware.NewFlashStore(cfg.Auth.SessionSecret)

	routes.RegisterCommentRoutes(r, commentService, pageService, auth, flash)
	routes.RegisterPageRoutes(r, pageService, auth)

	// Server-rendered thread pages for sites without the script widget
	templates, err := web.NewTemplates()
	if err != nil {
		log.Fatal("Failed to parse templates:", err)
	}
	webHandlers := web.NewHandlers(templates, commentService, pageService, flash, cfg.Comments, logger)
	r.With(auth.OptionalAuth).Get("/pages/{hash}", webHandlers.ThreadPageHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	fmt.Printf("Commentary server starting on %s\n", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, r))
}
