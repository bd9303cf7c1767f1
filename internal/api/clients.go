package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/usecase"
)

type Clients struct {
	log *logrus.Logger
	uc  *usecase.Clients
}

func NewClientHandler(uc *usecase.Clients, log *logrus.Logger) *Clients {
	return &Clients{log: log, uc: uc}
}

func (h *Clients) EnrichRoutes(authed *gin.RouterGroup) {
	authed.GET("/clients", h.listAction)
	authed.POST("/clients", h.createAction)
	authed.DELETE("/clients", h.destroyAllAction)
	authed.GET("/clients/:id", h.getAction)
	authed.PATCH("/clients/:id", h.updateAction)
	authed.DELETE("/clients/:id", h.destroyAction)
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Clients) listAction(c *gin.Context) {
	const op = "api.Clients.listAction"
	log := h.log.WithField("operation", op)

	q, err := parseQuery(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	out, err := h.uc.List(c.Request.Context(), q)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Clients) createAction(c *gin.Context) {
	const op = "api.Clients.createAction"
	log := h.log.WithField("operation", op)

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	cl, err := h.uc.Create(c.Request.Context(), principal(c), req.Name)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *Clients) destroyAllAction(c *gin.Context) {
	const op = "api.Clients.destroyAllAction"
	log := h.log.WithField("operation", op)

	ids, err := bulkIDs(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	n, err := h.uc.DestroyAll(c.Request.Context(), principal(c), ids)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Clients) getAction(c *gin.Context) {
	const op = "api.Clients.getAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	cl, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *Clients) updateAction(c *gin.Context) {
	const op = "api.Clients.updateAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	cl, err := h.uc.Rename(c.Request.Context(), principal(c), id, req.Name)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *Clients) destroyAction(c *gin.Context) {
	const op = "api.Clients.destroyAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	if err := h.uc.Destroy(c.Request.Context(), principal(c), id); err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": 1})
}
