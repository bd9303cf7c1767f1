// Package api exposes the use cases over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/usecase"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Log        *logrus.Logger
	DB         Pinger
	Sessions   PrincipalResolver
	Customers  *usecase.Customers
	Clients    *usecase.Clients
	Projects   *usecase.Projects
	Tasks      *usecase.Tasks
	TimeSheets *usecase.TimeSheets
}

// NewRouter builds the gin engine serving /api and /healthz.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			d.Log.WithError(err).Warn("health check failed")
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	public := r.Group("/api")
	authed := public.Group("", authenticate(d.Sessions, d.Log))
	privileged := authed.Group("", requirePrivileged(d.Log))

	NewCustomerHandler(d.Customers, d.Log).EnrichRoutes(public, authed, privileged)
	NewClientHandler(d.Clients, d.Log).EnrichRoutes(authed)
	NewProjectHandler(d.Projects, d.Log).EnrichRoutes(authed)
	NewTaskHandler(d.Tasks, d.Log).EnrichRoutes(authed)
	NewTimeSheetHandler(d.TimeSheets, d.Log).EnrichRoutes(authed)
	return r
}
