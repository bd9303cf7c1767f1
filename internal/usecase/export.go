package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/rules"
)

// ExportFilename is the attachment name of a timesheet download.
const ExportFilename = "Data.csv"

var exportHeader = []string{
	"Date", "User", "Email", "Client", "Client Id", "Project", "Project Id",
	"Task Id", "Task Type", "Task Description", "Comment", "status", "Duration",
}

// Download writes the timesheets matching q, scoped to p, as CSV. Rows are
// ordered by date then user unless q orders them otherwise.
func (uc *TimeSheets) Download(ctx context.Context, p domain.Principal, q domain.Query, w io.Writer) error {
	q = rules.Scope(q, p)
	if len(q.Order) == 0 {
		q.Order = []domain.Order{{Field: "date"}, {Field: "userId"}}
	}
	rows, err := uc.Store.ExportRows(ctx, q)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(exportRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	uc.Log.WithField("rows", len(rows)).WithField("user_id", p.UserID).Info("time sheets exported")
	return nil
}

func exportRecord(r domain.ExportRow) []string {
	d := r.Date.UTC()
	return []string{
		fmt.Sprintf("%d/%d/%d", int(d.Month()), d.Day(), d.Year()),
		r.UserName,
		r.UserEmail,
		r.ClientName,
		idString(r.ClientID),
		r.ProjectName,
		idString(r.ProjectID),
		idString(r.TaskID),
		r.TaskType,
		r.TaskDescription,
		r.Comment,
		r.Status.Label(),
		strconv.FormatInt(r.Duration, 10),
	}
}

// idString leaves missing relations blank.
func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
