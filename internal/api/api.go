package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/pfrederiksen/campus-events/internal/cache"
	"github.com/pfrederiksen/campus-events/internal/calendar"
	"github.com/pfrederiksen/campus-events/internal/event"
	"github.com/pfrederiksen/campus-events/internal/logger"
	"github.com/pfrederiksen/campus-events/internal/metrics"
)

const serviceName = "campus-events"

// EventService is the part of cache.Gate the handlers use.
type EventService interface {
	State() cache.State
	GetSnapshot(ctx context.Context) (*event.Snapshot, error)
	RefreshEvents(ctx context.Context) ([]*event.Event, error)
	Status() cache.Status
}

type Handler struct {
	events EventService
	log    *logger.Logger
	now    func() time.Time
}

func NewHandler(events EventService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{events: events, log: log, now: time.Now}
}

// NewServer registers every route on a new echo instance.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	e.Use(requestLogger(h.log))

	e.GET("/api/events", h.GetEvents)
	e.GET("/api/events/health", h.Health)
	e.POST("/api/events/refresh", h.Refresh)
	e.GET("/api/events/calendar.ics", h.Calendar)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	return e
}

type eventsResponse struct {
	Success     bool           `json:"success"`
	Events      []*event.Event `json:"events"`
	Count       int            `json:"count"`
	ScrapedAt   time.Time      `json:"scraped_at"`
	Cached      bool           `json:"cached"`
	CacheStatus cache.State    `json:"cache_status"`
}

type errorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Events  []*event.Event `json:"events"`
	Count   int            `json:"count"`
}

func (h *Handler) fail(c echo.Context, err error) error {
	h.log.Error("Request failed", logger.Fields{"path": c.Request().URL.Path}, err)
	return c.JSON(http.StatusInternalServerError, errorResponse{
		Error:  err.Error(),
		Events: []*event.Event{},
	})
}

// GetEvents serves today's events. cached reports whether the list was
// already fresh when the request arrived.
func (h *Handler) GetEvents(c echo.Context) error {
	state := h.events.State()
	snap, err := h.events.GetSnapshot(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, eventsResponse{
		Success:     true,
		Events:      snap.Events,
		Count:       len(snap.Events),
		ScrapedAt:   snap.CachedAt,
		Cached:      state == cache.StateFresh,
		CacheStatus: state,
	})
}

type healthResponse struct {
	Status    string       `json:"status"`
	Service   string       `json:"service"`
	Timestamp time.Time    `json:"timestamp"`
	Cache     cache.Status `json:"cache"`
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "OK",
		Service:   serviceName,
		Timestamp: h.now(),
		Cache:     h.events.Status(),
	})
}

type refreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *Handler) Refresh(c echo.Context) error {
	events, err := h.events.RefreshEvents(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, refreshResponse{
		Success: true,
		Message: "Events refreshed",
		Count:   len(events),
	})
}

// Calendar serves today's events as an iCalendar attachment.
func (h *Handler) Calendar(c echo.Context) error {
	snap, err := h.events.GetSnapshot(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}

	ics := calendar.GenerateICS(snap.Events, snap.Day(), h.now())
	c.Response().Header().Set("Content-Disposition", `attachment; filename="campus-events.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			log.Debug("Request handled", logger.Fields{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return err
		}
	}
}
