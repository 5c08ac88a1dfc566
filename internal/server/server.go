// Package server wires the application together: it is the composition
// root where the database, services, and handlers are constructed and
// bound to routes, and it owns startup and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/datavault/internal/auth"
	"github.com/sakif/datavault/internal/config"
	"github.com/sakif/datavault/internal/handler"
	"github.com/sakif/datavault/internal/middleware"
	sqliteRepo "github.com/sakif/datavault/internal/repository/sqlite"
	"github.com/sakif/datavault/internal/service"
)

// Server holds the HTTP router and the resources it owns. The database
// connection is owned here and closed during shutdown so the WAL is
// flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph from configuration:
//
//	sqlite.DB → AuthService/RecordService → handlers → routes
//
// Secrets and TTLs are injected here, at construction — nothing in the
// graph reads globals, which is what lets tests stand up isolated
// instances in parallel.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the configured router. Integration tests mount it on
// httptest.Server instead of binding a real port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// signal loop. Tests use it; production shutdown happens inside Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and binds handlers to routes.
//
// Route map:
//
//	GET    /healthz              liveness probe (no auth)
//	POST   /api/register         create account (no auth)
//	POST   /api/token            issue bearer token (basic credentials)
//	POST   /api/data             store key-value pair      (bearer)
//	GET    /api/data/{key}       read value                (bearer)
//	PUT    /api/data/{key}       update value              (bearer)
//	DELETE /api/data/{key}       delete pair               (bearer)
//
// Middleware order matters: RequestID and RealIP first so the logger can
// use them, Recover outermost-but-one so a panic in the logger's wrapped
// handler is still caught and answered as a JSON envelope.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)
	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	recordService := service.NewRecordService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, validate, s.logger)
	recordHandler := handler.NewRecordHandler(recordService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Recover(s.logger))
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/token", authHandler.HandleToken)

		// Protected: token verification short-circuits before any store
		// access; a bad token never reaches a handler.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/data", recordHandler.HandleStore)
			r.Get("/data/{key}", recordHandler.HandleGet)
			r.Put("/data/{key}", recordHandler.HandleUpdate)
			r.Delete("/data/{key}", recordHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests (30s budget) and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Duration("tokenTTL", s.config.TokenTTL),
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
