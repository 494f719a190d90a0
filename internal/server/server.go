package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/userdesk/internal/config"
	"github.com/hongminglow/userdesk/internal/http/apidoc"
	"github.com/hongminglow/userdesk/internal/http/handlers"
	"github.com/hongminglow/userdesk/internal/middleware"
	"github.com/hongminglow/userdesk/internal/web"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, docs and the landing page.
func New(cfg config.Config, svc handlers.Accounts, db handlers.Pinger, logger *slog.Logger) (*Server, error) {
	handler, err := Routes(cfg, svc, db, logger)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	return &Server{inner: httpServer}, nil
}

// Routes builds the full handler chain. Exposed for tests.
func Routes(cfg config.Config, svc handlers.Accounts, db handlers.Pinger, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()
	cookie := handlers.SessionCookie{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		TTL:    cfg.SessionTTL,
	}

	health := handlers.NewHealthHandler(time.Now(), db)
	health.Register(mux)

	authH := handlers.NewAuthHandler(svc, cookie, logger)
	adminH := handlers.NewAdminHandler(svc, cookie, logger)
	listH := handlers.NewListHandler(svc, cookie, logger)
	authH.Register(mux)
	adminH.Register(mux)
	listH.Register(mux)

	docs := apidoc.New(cfg.APIName, cfg.APIVer, cfg.SessionCookieName)
	docs.AddNamespace(apidoc.Namespace{Name: "auth", Description: "Authentication endpoints"})
	docs.AddNamespace(apidoc.Namespace{Name: "admin", Description: "Admin endpoints"})
	docs.AddNamespace(apidoc.Namespace{Name: "List", Description: "List things"})
	docs.AddRoutes(authH.Routes()...)
	docs.AddRoutes(adminH.Routes()...)
	docs.AddRoutes(listH.Routes()...)
	docs.Register(mux)

	landing, err := web.NewLanding(cfg.APIName)
	if err != nil {
		return nil, fmt.Errorf("landing page: %w", err)
	}
	mux.Handle("GET /{$}", landing)

	return middleware.Recover(logger, middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))), nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
