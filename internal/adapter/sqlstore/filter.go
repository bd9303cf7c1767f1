package sqlstore

import (
	"fmt"
	"strings"

	"timesheet-api/internal/domain"
)

// columns maps filter and order fields to column expressions for one query.
// A field missing from the map cannot be filtered or ordered on.
type columns map[string]string

const (
	fieldID        = "id"
	fieldUserID    = "userId"
	fieldTaskID    = "taskId"
	fieldProjectID = "projectId"
	fieldClientID  = "clientId"
	fieldStatus    = "status"
	fieldDate      = "date"
	fieldDuration  = "duration"
	fieldName      = "name"
	fieldType      = "type"
)

// maxLimit stands in for "no limit" when only an offset is given.
const maxLimit = 1<<31 - 1

func buildWhere(f domain.Filter, cols columns) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(field, op string, v any) {
		col, ok := cols[field]
		if !ok {
			// unknown filter fields match nothing rather than everything
			conds = append(conds, "1=0")
			return
		}
		conds = append(conds, col+" "+op+" ?")
		args = append(args, v)
	}

	if f.IDs != nil {
		if len(f.IDs) == 0 {
			conds = append(conds, "1=0")
		} else {
			conds = append(conds, fmt.Sprintf("%s IN (%s)", cols[fieldID], placeholders(len(f.IDs))))
			args = append(args, int64Args(f.IDs)...)
		}
	}
	if f.UserID != nil {
		add(fieldUserID, "=", *f.UserID)
	}
	if f.TaskID != nil {
		add(fieldTaskID, "=", *f.TaskID)
	}
	if f.ProjectID != nil {
		add(fieldProjectID, "=", *f.ProjectID)
	}
	if f.ClientID != nil {
		add(fieldClientID, "=", *f.ClientID)
	}
	if f.Status != "" {
		add(fieldStatus, "=", f.Status)
	}
	if f.From != nil {
		add(fieldDate, ">=", f.From.UTC())
	}
	if f.To != nil {
		add(fieldDate, "<=", f.To.UTC())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildTail renders ORDER BY and paging. Unknown order fields are rejected.
func buildTail(q domain.Query, cols columns, fallback ...domain.Order) (string, error) {
	var b strings.Builder
	order := q.Order
	if len(order) == 0 {
		order = fallback
	}
	for i, o := range order {
		col, ok := cols[o.Field]
		if !ok {
			return "", domain.BadRequest("INVALID_FILTER", "cannot order by %q", o.Field)
		}
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(col)
		if o.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}
	switch {
	case q.Limit > 0:
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	case q.Offset > 0:
		fmt.Fprintf(&b, " LIMIT %d", maxLimit)
	}
	if q.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", q.Offset)
	}
	return b.String(), nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
