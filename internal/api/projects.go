package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/usecase"
)

type Projects struct {
	log *logrus.Logger
	uc  *usecase.Projects
}

func NewProjectHandler(uc *usecase.Projects, log *logrus.Logger) *Projects {
	return &Projects{log: log, uc: uc}
}

func (h *Projects) EnrichRoutes(authed *gin.RouterGroup) {
	authed.GET("/projects", h.listAction)
	authed.POST("/projects", h.createAction)
	authed.DELETE("/projects", h.destroyAllAction)
	authed.GET("/projects/:id", h.getAction)
	authed.PATCH("/projects/:id", h.updateAction)
	authed.DELETE("/projects/:id", h.destroyAction)
}

type projectRequest struct {
	Name     string `json:"name" binding:"required"`
	ClientID int64  `json:"clientId" binding:"required"`
}

type projectPatchRequest struct {
	Name     *string `json:"name"`
	ClientID *int64  `json:"clientId"`
}

func (h *Projects) listAction(c *gin.Context) {
	const op = "api.Projects.listAction"
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

func (h *Projects) createAction(c *gin.Context) {
	const op = "api.Projects.createAction"
	log := h.log.WithField("operation", op)

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	p, err := h.uc.Create(c.Request.Context(), principal(c), domain.Project{Name: req.Name, ClientID: req.ClientID})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Projects) destroyAllAction(c *gin.Context) {
	const op = "api.Projects.destroyAllAction"
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

func (h *Projects) getAction(c *gin.Context) {
	const op = "api.Projects.getAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	p, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Projects) updateAction(c *gin.Context) {
	const op = "api.Projects.updateAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var req projectPatchRequest
	if _, err := patchFields(c, &req); err != nil {
		handleError(c, log, err)
		return
	}
	p, err := h.uc.Update(c.Request.Context(), principal(c), id, usecase.ProjectPatch{Name: req.Name, ClientID: req.ClientID})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Projects) destroyAction(c *gin.Context) {
	const op = "api.Projects.destroyAction"
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
