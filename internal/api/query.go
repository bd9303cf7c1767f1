package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"timesheet-api/internal/domain"
)

// filterRequest is the ?filter= JSON document accepted by list endpoints.
type filterRequest struct {
	Where struct {
		ID        json.RawMessage `json:"id"`
		UserID    *int64          `json:"userId"`
		TaskID    *int64          `json:"taskId"`
		ProjectID *int64          `json:"projectId"`
		ClientID  *int64          `json:"clientId"`
		Status    string          `json:"status"`
		From      string          `json:"from"`
		To        string          `json:"to"`
	} `json:"where"`
	Order  json.RawMessage `json:"order"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

var orderable = map[string]bool{
	"id": true, "date": true, "userId": true, "taskId": true, "duration": true, "status": true,
}

func invalidFilter(format string, args ...any) error {
	return domain.BadRequest("INVALID_FILTER", format, args...)
}

// parseQuery reads ?filter= into a domain query. An absent filter is empty.
func parseQuery(c *gin.Context) (domain.Query, error) {
	raw := c.Query("filter")
	if raw == "" {
		return domain.Query{}, nil
	}
	var fr filterRequest
	if err := json.Unmarshal([]byte(raw), &fr); err != nil {
		return domain.Query{}, invalidFilter("filter is not valid JSON")
	}
	if fr.Limit < 0 || fr.Offset < 0 {
		return domain.Query{}, invalidFilter("limit and offset must not be negative")
	}

	q := domain.Query{Limit: fr.Limit, Offset: fr.Offset}
	w := fr.Where
	q.Where.UserID, q.Where.TaskID, q.Where.ProjectID, q.Where.ClientID = w.UserID, w.TaskID, w.ProjectID, w.ClientID
	q.Where.Status = w.Status

	if len(w.ID) > 0 {
		ids, err := parseIDList(w.ID)
		if err != nil {
			return domain.Query{}, err
		}
		q.Where.IDs = ids
	}
	if w.From != "" {
		t, ok := parseStart(w.From)
		if !ok {
			return domain.Query{}, invalidFilter("from must be RFC3339 or YYYY-MM-DD")
		}
		q.Where.From = &t
	}
	if w.To != "" {
		t, ok := parseEnd(w.To)
		if !ok {
			return domain.Query{}, invalidFilter("to must be RFC3339 or YYYY-MM-DD")
		}
		q.Where.To = &t
	}

	order, err := parseOrder(fr.Order)
	if err != nil {
		return domain.Query{}, err
	}
	q.Order = order
	return q, nil
}

// parseOrder accepts "date asc" or ["date asc", "userId desc"].
func parseOrder(raw json.RawMessage) ([]domain.Order, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		var one string
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, invalidFilter("order must be a string or a list of strings")
		}
		items = []string{one}
	}
	out := make([]domain.Order, 0, len(items))
	for _, it := range items {
		parts := strings.Fields(it)
		if len(parts) == 0 || len(parts) > 2 || !orderable[parts[0]] {
			return nil, invalidFilter("cannot order by %q", it)
		}
		o := domain.Order{Field: parts[0]}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				o.Desc = true
			default:
				return nil, invalidFilter("cannot order by %q", it)
			}
		}
		out = append(out, o)
	}
	return out, nil
}

// parseIDList accepts a single id or a list of ids.
func parseIDList(raw json.RawMessage) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids, nil
	}
	var one int64
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, invalidFilter("id must be a number or a list of numbers")
	}
	return []int64{one}, nil
}

// parseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
func parseStart(val string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), true
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// parseEnd parses an inclusive end boundary. A date-only value covers the
// whole day.
func parseEnd(val string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), true
	}
	if d, err := time.Parse("2006-01-02", val); err == nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC), true
	}
	return time.Time{}, false
}

type idsRequest struct {
	ID []int64 `json:"id"`
}

// bulkIDs reads ids for a bulk delete from ?id= parameters or a JSON body.
func bulkIDs(c *gin.Context) ([]int64, error) {
	if vals := c.QueryArray("id"); len(vals) > 0 {
		ids := make([]int64, 0, len(vals))
		for _, v := range vals {
			for _, part := range strings.Split(v, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
				if err != nil {
					return nil, domain.BadRequest("INVALID_ID", "id %q is not a number", part)
				}
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	if c.Request.ContentLength == 0 {
		return nil, domain.BadRequest("INVALID_ID", "no ids given")
	}
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, bindingError(err)
	}
	return req.ID, nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.BadRequest("INVALID_ID", "id %q is not valid", c.Param("id"))
	}
	return id, nil
}

// patchFields decodes a PATCH body into dst and returns the keys it carried.
func patchFields(c *gin.Context, dst any) (map[string]json.RawMessage, error) {
	var keys map[string]json.RawMessage
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, domain.BadRequest("INVALID_REQUEST_STRUCTURE", "invalid request structure")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, domain.BadRequest("INVALID_REQUEST_STRUCTURE", "invalid request structure")
	}
	return keys, nil
}

func parseInt64(val string) (int64, error) {
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, domain.BadRequest("INVALID_ID", "id %q is not valid", val)
	}
	return id, nil
}
