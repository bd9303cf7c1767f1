package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/usecase"
)

type TimeSheets struct {
	log *logrus.Logger
	uc  *usecase.TimeSheets
}

func NewTimeSheetHandler(uc *usecase.TimeSheets, log *logrus.Logger) *TimeSheets {
	return &TimeSheets{log: log, uc: uc}
}

func (h *TimeSheets) EnrichRoutes(authed *gin.RouterGroup) {
	authed.GET("/timesheets", h.listAction)
	authed.POST("/timesheets", h.createAction)
	authed.DELETE("/timesheets", h.destroyAllAction)
	authed.GET("/timesheets/download", h.downloadAction)
	authed.GET("/timesheets/:id", h.getAction)
	authed.PATCH("/timesheets/:id", h.updateAction)
}

type timeSheetRequest struct {
	Date     string `json:"date" binding:"required"`
	Duration int64  `json:"duration"`
	Comment  string `json:"comment"`
	Status   string `json:"status" binding:"required"`
	TaskID   int64  `json:"taskId" binding:"required"`
}

type timeSheetPatchRequest struct {
	Date     *string `json:"date"`
	Duration *int64  `json:"duration"`
	Comment  *string `json:"comment"`
	Status   *string `json:"status"`
	TaskID   *int64  `json:"taskId"`
}

func parseDate(val string) (time.Time, error) {
	t, ok := parseStart(val)
	if !ok {
		return time.Time{}, domain.Validation("INVALID_DATE", "date must be RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}

// writeOutcome renders a saved timesheet. When the task status could not be
// updated the timesheet is still returned alongside the error.
func (h *TimeSheets) writeOutcome(c *gin.Context, log *logrus.Entry, out usecase.SaveOutcome) {
	if out.PropagationErr != nil {
		body := toBody(out.PropagationErr, log)
		c.AbortWithStatusJSON(body.StatusCode, gin.H{"error": body, "timeSheet": out.TimeSheet})
		return
	}
	c.JSON(http.StatusOK, out.TimeSheet)
}

func (h *TimeSheets) listAction(c *gin.Context) {
	const op = "api.TimeSheets.listAction"
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

func (h *TimeSheets) createAction(c *gin.Context) {
	const op = "api.TimeSheets.createAction"
	log := h.log.WithField("operation", op)

	var req timeSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, log, bindingError(err))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		handleError(c, log, err)
		return
	}
	out, err := h.uc.Create(c.Request.Context(), principal(c), domain.TimeSheet{
		Date:     date,
		Duration: req.Duration,
		Comment:  req.Comment,
		Status:   domain.TimeSheetStatus(req.Status),
		TaskID:   req.TaskID,
	})
	if err != nil {
		handleError(c, log, err)
		return
	}
	h.writeOutcome(c, log, out)
}

func (h *TimeSheets) destroyAllAction(c *gin.Context) {
	const op = "api.TimeSheets.destroyAllAction"
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

func (h *TimeSheets) downloadAction(c *gin.Context) {
	const op = "api.TimeSheets.downloadAction"
	log := h.log.WithField("operation", op)

	q, err := parseQuery(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var buf bytes.Buffer
	if err := h.uc.Download(c.Request.Context(), principal(c), q, &buf); err != nil {
		handleError(c, log, err)
		return
	}
	c.Header("Content-Disposition", "attachment;filename="+usecase.ExportFilename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *TimeSheets) getAction(c *gin.Context) {
	const op = "api.TimeSheets.getAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	ts, err := h.uc.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		handleError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (h *TimeSheets) updateAction(c *gin.Context) {
	const op = "api.TimeSheets.updateAction"
	log := h.log.WithField("operation", op)

	id, err := pathID(c)
	if err != nil {
		handleError(c, log, err)
		return
	}
	var req timeSheetPatchRequest
	if _, err := patchFields(c, &req); err != nil {
		handleError(c, log, err)
		return
	}
	patch := usecase.TimeSheetPatch{Duration: req.Duration, Comment: req.Comment, TaskID: req.TaskID}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			handleError(c, log, err)
			return
		}
		patch.Date = &d
	}
	if req.Status != nil {
		st := domain.TimeSheetStatus(*req.Status)
		patch.Status = &st
	}
	out, err := h.uc.Update(c.Request.Context(), principal(c), id, patch)
	if err != nil {
		handleError(c, log, err)
		return
	}
	h.writeOutcome(c, log, out)
}
