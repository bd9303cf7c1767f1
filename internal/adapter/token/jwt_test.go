package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/ports"
)

func TestManager_RoundTrip(t *testing.T) {
	m, err := NewManager("s3cret", "timesheet-api")
	require.NoError(t, err)

	raw, err := m.Issue(ports.TokenClaims{ID: "sess-1", UserID: 42, Purpose: "access"}, time.Hour)
	require.NoError(t, err)

	got, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, ports.TokenClaims{ID: "sess-1", UserID: 42, Purpose: "access"}, got)
}

func TestManager_RejectsExpiredAndForeign(t *testing.T) {
	m, err := NewManager("s3cret", "")
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := m.Issue(ports.TokenClaims{ID: "x", UserID: 1}, time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other, err := NewManager("other", "")
	require.NoError(t, err)
	raw, err = other.Issue(ports.TokenClaims{ID: "y", UserID: 1}, time.Hour)
	require.NoError(t, err)
	_, err = m.Parse(raw)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = m.Parse("garbage")
	assert.Error(t, err)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", "")
	assert.ErrorIs(t, err, ErrNoSecret)
}
