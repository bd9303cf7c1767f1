package domain

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyFailure(t *testing.T) {
	cause := errors.New("connection refused")
	err := DependencyFailure("ROLE_LOOKUP_FAILED", cause)

	assert.Equal(t, KindDependency, err.Kind)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAssociatedEntityExists(t *testing.T) {
	err := AssociatedEntityExists(ClientProjects, []int64{3})

	assert.Equal(t, "CLIENT_ASSOCIATED_WITH_PROJECTS", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Clients are associated with projects, hence cannot be deleted.", err.Message)
	assert.True(t, errors.Is(err, ErrAssociatedEntityExists))

	de, ok := AsError(error(err))
	require.True(t, ok)
	assert.Equal(t, []int64{3}, de.Details["ids"])

	msg := AssociatedEntityExists(TaskTimeSheets, nil).Message
	assert.Equal(t, "Tasks are associated with time sheets, hence cannot be deleted.", msg)
}
