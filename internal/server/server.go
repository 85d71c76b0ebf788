package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/models"
)

// Server serves the todos resource over HTTP.
type Server struct {
	echo  *echo.Echo
	store Store
	log   logrus.FieldLogger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a server over store.
func New(store Store, opts ...Option) *Server {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Server{store: store, log: discard}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	s.register(e)
	s.echo = e
	return s
}

func (s *Server) register(e *echo.Echo) {
	e.GET("/healthz", s.healthz)
	e.GET("/todos", s.listTodos)
	e.POST("/todos", s.createTodo)
	e.GET("/todos/:id", s.getTodo)
	e.PUT("/todos/:id", s.updateTodo)
	e.DELETE("/todos/:id", s.deleteTodo)
}

// Handler exposes the server for httptest and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// todoRequest is the body of POST and PUT. PUT replaces the whole record.
type todoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

func (r todoRequest) task() (models.Task, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return models.Task{}, echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	t := models.Task{Title: title, Completed: r.Completed}
	if r.Description != nil {
		t.Description = models.Describe(*r.Description)
	}
	return t, nil
}

func (s *Server) healthz(c echo.Context) error {
	if _, err := s.store.List(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable").SetInternal(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) listTodos(c echo.Context) error {
	todos, err := s.store.List(c.Request().Context())
	if err != nil {
		return storeError(err)
	}
	if todos == nil {
		todos = []models.Task{}
	}
	return c.JSON(http.StatusOK, todos)
}

func (s *Server) getTodo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	todo, err := s.store.Get(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, todo)
}

func (s *Server) createTodo(c echo.Context) error {
	var req todoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	task, err := req.task()
	if err != nil {
		return err
	}
	created, err := s.store.Create(c.Request().Context(), task)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTodo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req todoRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	task, err := req.task()
	if err != nil {
		return err
	}
	updated, err := s.store.Update(c.Request().Context(), id, task)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTodo(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.store.Delete(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid todo id")
	}
	return id, nil
}

func storeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "todo not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "store error").SetInternal(err)
}
