package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-reporter/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-reporter/pkg/config"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	reportHandler  *Report
	sessionHandler *Session
	sessions       *middleware.SessionMiddleware
	metrics        http.Handler
	storage        Pinger
}

// NewRouter creates a new router with all handlers. metrics and storage
// may be nil.
func NewRouter(
	cfg *config.Config,
	reportHandler *Report,
	sessionHandler *Session,
	sessions *middleware.SessionMiddleware,
	metrics http.Handler,
	storage Pinger,
) *Router {
	return &Router{
		cfg:            cfg,
		reportHandler:  reportHandler,
		sessionHandler: sessionHandler,
		sessions:       sessions,
		metrics:        metrics,
		storage:        storage,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics))
	}

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupSessionRoutes(v1)
	rt.setupMeetingRoutes(v1)
	rt.setupReportRoutes(v1)
	rt.setupRunRoutes(v1)
}

// setupSessionRoutes configures session routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	sessionGroup := g.Group("/sessions")
	sessionGroup.POST("", rt.sessionHandler.Create)
	sessionGroup.GET("/runs", rt.reportHandler.SessionRuns, rt.sessions.Authenticate)
}

// setupMeetingRoutes configures the pipeline entry points
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings", rt.sessions.Authenticate)
	meetingGroup.POST("/process", rt.reportHandler.Process)
	meetingGroup.POST("/analyze", rt.reportHandler.Analyze)
}

// setupReportRoutes configures report routes
func (rt *Router) setupReportRoutes(g *echo.Group) {
	reportGroup := g.Group("/reports")
	reportGroup.GET("", rt.reportHandler.List)
	reportGroup.GET("/latest", rt.reportHandler.Latest)
	reportGroup.GET("/:id", rt.reportHandler.Get)
	reportGroup.GET("/:id/download", rt.reportHandler.Download)
	reportGroup.POST("/:id/send", rt.reportHandler.Send, rt.sessions.Authenticate)
}

// setupRunRoutes configures run status routes
func (rt *Router) setupRunRoutes(g *echo.Group) {
	runGroup := g.Group("/runs", rt.sessions.Authenticate)
	runGroup.GET("/:id", rt.reportHandler.GetRun)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	}

	if rt.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := rt.storage.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["storage"] = err.Error()
		} else {
			body["storage"] = "ok"
		}
	}
	return c.JSON(status, body)
}
