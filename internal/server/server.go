// Package server wires handlers, middleware and routes, and runs the HTTP
// server with graceful shutdown.
//
// The dependency graph is assembled once in New:
//
//	sqlite.DB ──► services ──► handlers ──► chi routes under /api/v1
//
// External collaborators (database, OAuth provider, GitHub client factory,
// Redis state guard, mailer) are built by cmd/server and passed in as Deps,
// so tests can substitute any of them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/devdesk/internal/auth"
	"github.com/sakif/devdesk/internal/config"
	"github.com/sakif/devdesk/internal/handler"
	"github.com/sakif/devdesk/internal/markdown"
	"github.com/sakif/devdesk/internal/middleware"
	"github.com/sakif/devdesk/internal/repository/sqlite"
	"github.com/sakif/devdesk/internal/service"
)

// Deps are the collaborators the server does not construct itself.
// OAuth, StateGuard and Mailer may be nil.
type Deps struct {
	DB            *sqlite.DB
	OAuth         service.OAuthExchanger
	GitHubClients service.GitHubClientFactory
	StateGuard    service.StateGuard
	Mailer        service.Mailer
}

type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	deps   Deps
}

func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, errors.New("server: database is required")
	}
	if deps.GitHubClients == nil {
		return nil, errors.New("server: GitHub client factory is required")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	db := s.deps.DB
	log := s.logger

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     s.config.Auth.JWTSecret,
		Issuer:     s.config.Auth.Issuer,
		AccessTTL:  s.config.Auth.AccessTTL,
		RefreshTTL: s.config.Auth.RefreshTTL,
	})
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService(s.config.Auth.BcryptCost)

	authService := service.NewAuthService(db, tokens, passwords, log)
	githubAuth := service.NewGitHubAuthService(
		service.GitHubAuthConfig{
			FrontendURL:    s.config.Server.FrontendURL,
			AllowedOrigins: s.config.Server.AllowedOrigins,
			StateTTL:       s.config.GitHub.StateTTL,
		},
		s.deps.OAuth, s.deps.GitHubClients, s.deps.StateGuard,
		tokens, authService, db, db, log,
	)
	notifier := service.NewNotifier(db, db, s.deps.Mailer, log)

	authHandler := handler.NewAuthHandler(authService, githubAuth, log)
	profiles := handler.NewProfileHandler(service.NewProfileService(db, log))
	projects := handler.NewProjectHandler(service.NewProjectService(db, log))
	tickets := handler.NewTicketHandler(service.NewTicketService(db, db, notifier, log))
	comments := handler.NewCommentHandler(service.NewCommentService(db, db, db, markdown.NewRenderer(), notifier, log))
	activity := handler.NewActivityHandler(service.NewActivityService(db, db, db))
	github := handler.NewGitHubHandler(service.NewGitHubService(db, db, s.deps.GitHubClients, log))
	notifications := handler.NewNotificationHandler(service.NewNotificationService(db))

	serve := func(fn handler.Func) http.HandlerFunc { return handler.Serve(log, fn) }
	requireAuth := auth.RequireAuth(authService)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(log))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Get("/healthz", serve(handler.Health(db)))

	s.router.Route("/api/v1", func(r chi.Router) {
		// Public.
		r.Post("/auth/signup", serve(authHandler.SignUp))
		r.Post("/auth/login", serve(authHandler.Login))
		r.Post("/auth/refresh", serve(authHandler.Refresh))
		r.Get("/auth/github", authHandler.GitHubLogin)
		r.Get("/auth/github/callback", authHandler.GitHubCallback)
		r.Get("/auth/github/error", authHandler.GitHubError)
		r.Get("/profiles", serve(profiles.List))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/auth/github/link", serve(authHandler.GitHubLink))
			r.Delete("/auth/github/unlink", serve(authHandler.GitHubUnlink))

			r.Post("/profiles", serve(profiles.Create))
			r.Get("/profiles/{id}", serve(profiles.Get))
			r.Patch("/profiles/{id}", serve(profiles.Update))
			r.Delete("/profiles/{id}", serve(profiles.Delete))

			r.Get("/projects", serve(projects.List))
			r.Post("/projects", serve(projects.Create))
			r.Get("/projects/{id}", serve(projects.Get))
			r.Patch("/projects/{id}", serve(projects.Update))
			r.Delete("/projects/{id}", serve(projects.Delete))

			r.Get("/ticket", serve(tickets.ListMine))
			r.Get("/ticket/{project_id}/tickets", serve(tickets.ListByProject))
			r.Post("/ticket/{project_id}/tickets", serve(tickets.Create))
			r.Get("/ticket/{ticket_id}", serve(tickets.Get))
			r.Patch("/ticket/{ticket_id}", serve(tickets.Update))
			r.Delete("/ticket/{ticket_id}", serve(tickets.Delete))

			r.Get("/ticketcomment/{ticket_id}", serve(comments.List))
			r.Post("/ticketcomment/{ticket_id}", serve(comments.Create))
			r.Get("/ticketcomment/{ticket_id}/user", serve(comments.ListMine))
			r.Delete("/ticketcomment/{ticket_id}/{comment_id}", serve(comments.Delete))

			r.Get("/ticketAction/user/{ticket_id}", serve(activity.ListMine))
			r.Get("/ticketAction/{ticket_id}", serve(activity.List))
			r.Post("/ticketAction/{ticket_id}", serve(activity.Create))
			r.Delete("/ticketAction/{ticket_id}/{activity_id}", serve(activity.Delete))

			r.Get("/github/connection", serve(github.Connection))
			r.Get("/github/repositories", serve(github.Repositories))
			r.Get("/github/projects/{project_id}/repositories", serve(github.LinkedRepos))
			r.Post("/github/projects/{project_id}/repositories", serve(github.Link))
			r.Delete("/github/projects/{project_id}/repositories/{repo_id}", serve(github.Unlink))

			r.Get("/notifications", serve(notifications.List))
			r.Put("/notifications/read/all", serve(notifications.MarkAllRead))
			r.Put("/notifications/{id}/read", serve(notifications.MarkRead))
		})
	})

	return nil
}

func (s *Server) allowedOrigins() []string {
	origins := []string{s.config.Server.FrontendURL}
	return append(origins, s.config.Server.AllowedOrigins...)
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to the configured shutdown timeout.
func (s *Server) Start() error {
	cfg := s.config.Server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("mode", cfg.Mode),
			slog.Bool("github", s.deps.OAuth != nil),
			slog.Bool("redis", s.deps.StateGuard != nil),
			slog.Bool("mail", s.deps.Mailer != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		timeout := cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
