package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/domain"
)

func TestBuildWhere(t *testing.T) {
	uid := int64(4)
	where, args := buildWhere(domain.Filter{IDs: []int64{1, 2}, UserID: &uid, Status: "completed"}, timeSheetCols)
	assert.Equal(t, " WHERE ts.id IN (?,?) AND ts.user_id = ? AND ts.status = ?", where)
	assert.Equal(t, []any{int64(1), int64(2), int64(4), "completed"}, args)

	where, args = buildWhere(domain.Filter{}, clientCols)
	assert.Empty(t, where)
	assert.Nil(t, args)

	// clients have no user column
	where, _ = buildWhere(domain.Filter{UserID: &uid}, clientCols)
	assert.Equal(t, " WHERE 1=0", where)
}

func TestBuildTail(t *testing.T) {
	tail, err := buildTail(domain.Query{Offset: 5}, timeSheetCols,
		domain.Order{Field: "date"}, domain.Order{Field: "userId"})
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY ts.date ASC, ts.user_id ASC LIMIT 2147483647 OFFSET 5", tail)

	tail, err = buildTail(domain.Query{Order: []domain.Order{{Field: "duration", Desc: true}}, Limit: 10}, timeSheetCols)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY ts.duration DESC LIMIT 10", tail)

	_, err = buildTail(domain.Query{Order: []domain.Order{{Field: "comment"}}}, timeSheetCols)
	assert.Error(t, err)
}
