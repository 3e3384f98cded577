// Package web serves the task list as an HTML page and a small JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"mytasks/internal/log"
	"mytasks/internal/service"
	"mytasks/internal/task"
	"mytasks/internal/theme"
)

const shutdownTimeout = 5 * time.Second

// Server exposes a Service over HTTP. Requests are handled one at a time,
// and each one starts from the list currently in storage so writes made by
// other processes are never overwritten.
type Server struct {
	mu      sync.Mutex
	svc     service.Service
	echo    *echo.Echo
	limiter *rateLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits each client to requestsPerMin writes. Zero disables it.
func WithRateLimit(requestsPerMin int) Option {
	return func(s *Server) {
		if requestsPerMin > 0 {
			s.limiter = newRateLimiter(requestsPerMin)
		}
	}
}

// New creates a Server and registers its routes.
func New(svc service.Service, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// The page is served directly, so forwarding headers are client input.
	e.IPExtractor = echo.ExtractIPDirect()
	e.Renderer = &templateRenderer{tmpl: pageTemplate}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Msg("request")
			return nil
		},
	}))

	s := &Server{svc: svc, echo: e}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter != nil {
		e.Use(s.limiter.middleware)
	}
	s.register(e)
	return s
}

func (s *Server) register(e *echo.Echo) {
	e.GET("/", s.index)
	e.POST("/tasks", s.createTask)
	e.POST("/tasks/:index/delete", s.deleteTask)
	e.POST("/theme", s.setTheme)
	e.GET("/api/tasks", s.listTasks)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ErrorLog:          log.StdErrorLogger(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info().Str("addr", addr).Msg("http server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) index(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request().Context()
	if err := s.svc.Reload(ctx); err != nil {
		return storageError(err)
	}
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		return storageError(err)
	}
	th, err := s.svc.Theme(ctx)
	if err != nil {
		return storageError(err)
	}
	return c.Render(http.StatusOK, "index", newPageData(tasks, th))
}

func (s *Server) createTask(c echo.Context) error {
	title := c.FormValue("title")
	if strings.TrimSpace(title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request().Context()
	if err := s.svc.Reload(ctx); err != nil {
		return storageError(err)
	}
	if err := s.svc.CreateTask(ctx, title, c.FormValue("summary")); err != nil {
		return storageError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) deleteTask(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task index")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request().Context()
	if err := s.svc.Reload(ctx); err != nil {
		return storageError(err)
	}
	if err := s.svc.DeleteTask(ctx, index); err != nil {
		if errors.Is(err, task.ErrIndexOutOfRange) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return storageError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) setTheme(c echo.Context) error {
	var value theme.Theme
	if raw := c.FormValue("theme"); raw != "" {
		t, err := theme.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		value = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.svc.ToggleTheme(c.Request().Context(), value); err != nil {
		return storageError(err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) listTasks(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request().Context()
	if err := s.svc.Reload(ctx); err != nil {
		return storageError(err)
	}
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		return storageError(err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

func storageError(err error) error {
	log.Error().Err(err).Msg("storage request failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "storage error").SetInternal(err)
}
