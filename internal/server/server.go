// ABOUTME: Echo HTTP server exposing the restaurant map API and change stream
// ABOUTME: Wires middleware, optional bearer auth, routes, and graceful shutdown

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/harper/matjip/internal/bookmarks"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// JWTSecret turns on bearer auth for /api and /ws when non-empty.
	JWTSecret string
	Logger    *slog.Logger
}

// Server is the HTTP front end of a bookmarks.Service.
type Server struct {
	echo     *echo.Echo
	svc      *bookmarks.Service
	hub      *Hub
	auth     *Authenticator
	errors   *ErrorMapper
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New builds the server and registers the hub as the service's notifier.
func New(svc *bookmarks.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		echo:   echo.New(),
		svc:    svc,
		hub:    NewHub(logger),
		errors: domainErrors(),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: sameOrigin,
		},
	}
	if opts.JWTSecret != "" {
		s.auth = NewAuthenticator(opts.JWTSecret)
	}
	svc.SetNotifier(s.hub)

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.errorHandler
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("requestId", v.RequestID))
			return nil
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.handleHealth)

	var guard []echo.MiddlewareFunc
	if s.auth != nil {
		guard = append(guard, s.auth.Middleware())
	}

	api := s.echo.Group("/api", append([]echo.MiddlewareFunc{originGuard()}, guard...)...)
	api.GET("/restaurants", s.handleList)
	api.POST("/restaurants", s.handleCreate)
	api.GET("/restaurants/:id", s.handleGet)
	api.PUT("/restaurants/:id", s.handleUpdate)
	api.DELETE("/restaurants/:id", s.handleDelete)
	api.POST("/restaurants/:id/favorite", s.handleFavorite)
	api.GET("/categories", s.handleCategories)
	api.GET("/stats", s.handleStats)
	api.GET("/geocode", s.handleGeocode)
	api.GET("/export.csv", s.handleExportCSV)
	api.POST("/import", s.handleImport)
	api.GET("/map", s.handleMap)
	api.POST("/map/click", s.handleMapClick)

	s.echo.GET("/ws", s.handleWebsocket, guard...)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Hub returns the change notification hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.CloseAll()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
