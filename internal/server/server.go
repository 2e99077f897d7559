// Package server wires the stores, services, handlers and middleware
// into one HTTP server, and owns its lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arefin/newshub/internal/auth"
	"github.com/arefin/newshub/internal/config"
	"github.com/arefin/newshub/internal/handler"
	"github.com/arefin/newshub/internal/middleware"
	"github.com/arefin/newshub/internal/notify"
	"github.com/arefin/newshub/internal/repository"
	"github.com/arefin/newshub/internal/repository/jsonfile"
	sqliteRepo "github.com/arefin/newshub/internal/repository/sqlite"
	"github.com/arefin/newshub/internal/service"
)

// Server holds the router and the resources it must release on
// shutdown. db is nil when the JSON file driver is active.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: stores, token and password
// services, the notification dispatcher, domain services, handlers and
// routes. Each layer receives interfaces, never the layer below it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	articles, users, err := s.openStores()
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		s.closeDB()
		return nil, fmt.Errorf("configuring tokens: %w", err)
	}

	var sender notify.Sender
	if cfg.SMTPEnabled() {
		sender = &notify.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}
	} else {
		logger.Info("SMTP not configured, notifications go to the log")
		sender = &notify.LogSender{Logger: logger}
	}
	dispatcher := notify.NewDispatcher(sender, logger)

	var google *auth.GoogleProvider
	if cfg.GoogleEnabled() {
		google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}

	articleService := service.NewArticleService(articles, logger)
	userService := service.NewUserService(
		users, tokens, auth.NewPasswordService(), dispatcher, cfg.GoogleClientID, logger)
	adminService := service.NewAdminService(cfg.AdminPassword, tokens, logger)

	s.setupRoutes(
		handler.NewArticleHandler(articleService, logger),
		handler.NewUserHandler(userService, google, logger),
		handler.NewAdminHandler(adminService, logger),
		tokens,
		google != nil,
	)

	return s, nil
}

// openStores creates the repositories for the configured driver.
func (s *Server) openStores() (repository.ArticleRepository, repository.UserRepository, error) {
	switch s.config.StoreDriver {
	case config.DriverSQLite:
		db, err := sqliteRepo.New(s.config.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db
		return db.Articles(), db.Users(), nil

	default:
		if err := os.MkdirAll(s.config.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data dir: %w", err)
		}
		articles := jsonfile.NewArticleStore(filepath.Join(s.config.DataDir, "news.json"), s.logger)
		users := jsonfile.NewUserStore(filepath.Join(s.config.DataDir, "users.json"), s.logger)
		return articles, users, nil
	}
}

func (s *Server) closeDB() {
	if s.db != nil {
		s.db.Close()
	}
}

// setupRoutes configures global middleware and the route tree.
//
// Middleware order: RequestID first so every later log line can carry
// it, then RealIP, the request logger, panic recovery, and CORS.
func (s *Server) setupRoutes(
	articles *handler.ArticleHandler,
	users *handler.UserHandler,
	admin *handler.AdminHandler,
	tokens *auth.TokenService,
	googleFlow bool,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api/news", func(r chi.Router) {
		r.Get("/", articles.HandleList)
		r.Get("/category/{category}", articles.HandleListByCategory)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/mine", articles.HandleListMine)
			r.Post("/", articles.HandleCreate)
			r.Put("/{id}", articles.HandleUpdate)
			r.Delete("/{id}", articles.HandleDelete)
		})
	})

	s.router.Route("/api/users", func(r chi.Router) {
		r.Post("/register", users.HandleRegister)
		r.Post("/login", users.HandleLogin)
		r.Post("/google-auth", users.HandleGoogleAuth)

		if googleFlow {
			r.Get("/google/login", users.HandleGoogleLogin)
			r.Get("/google/callback", users.HandleGoogleCallback)
		}
	})

	s.router.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", admin.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens))
			r.Post("/password", admin.HandleChangePassword)
		})
	})
}

// Start runs the HTTP server until SIGINT or SIGTERM, then drains
// in-flight requests and closes the store.
func (s *Server) Start() error {
	defer s.closeDB()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.ServerPort),
			slog.String("store", s.config.StoreDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
