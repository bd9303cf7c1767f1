package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/usecase"
)

type Tasks struct {
	log *logrus.Logger
	uc  *usecase.Tasks
}

func NewTaskHandler(uc *usecase.Tasks, log *logrus.Logger) *Tasks {
	return &Tasks{log: log, uc: uc}
}

func (h *Tasks) EnrichRoutes(authed *gin.RouterGroup) {
	authed.GET("/tasks/types", h.typesAction)
	authed.POST("/tasks/types", h.typesAction)
	authed.GET("/tasks", h.listAction)
	authed.POST("/tasks", h.createAction)
	authed.GET("/tasks/:id", h.getAction)
	authed.PATCH("/tasks/:id", h.updateAction)
	authed.DELETE("/tasks/:id", h.destroyAction)
}

type taskRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	ProjectID   int64  `json:"projectId" binding:"required"`
}

type taskPatchRequest struct {
	Type        *string `json:"type"`
	Description *string `json:"description"`
	ProjectID   *int64  `json:"projectId"`
}

func (h *Tasks) typesAction(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.TaskTypes())
}

func (h *Tasks) listAction(c *gin.Context) {
	const op = "api.Tasks.listAction"
	log := h.log.WithField("operation", op)

	q, err := parseQuery(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	out, err := h.uc.List(c.Request.Context(), principal(c), q)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Tasks) createAction(c *gin.Context) {
	const op = "api.Tasks.createAction"
	log := h.log.WithField("operation", op)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	t, err := h.uc.Create(c.Request.Context(), principal(c), domain.Task{
		Type:        req.Type,
		Description: req.Description,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Tasks) getAction(c *gin.Context) {
	const op = "api.Tasks.getAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	t, err := h.uc.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Tasks) updateAction(c *gin.Context) {
	const op = "api.Tasks.updateAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var req taskPatchRequest
	keys, err := patchFields(c, &req)
	if err != nil {
		handleError(c, log, err)
		return
	}
	if _, ok := keys["status"]; ok {
		handleError(c, log, domain.Validation("STATUS_NOT_EDITABLE", "task status follows its timesheets and cannot be set"))
		return
	}
	t, err := h.uc.Update(c.Request.Context(), principal(c), id, usecase.TaskPatch{
		Type:        req.Type,
		Description: req.Description,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Tasks) destroyAction(c *gin.Context) {
	const op = "api.Tasks.destroyAction"
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
