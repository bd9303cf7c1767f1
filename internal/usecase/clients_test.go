package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/domain"
)

func TestClients_WritesNeedPrivilege(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	member := domain.Principal{UserID: 5}

	_, err := e.clients.Create(ctx, member, "Acme")
	assert.True(t, errors.Is(err, domain.ErrAccessDenied))
	_, err = e.clients.DestroyAll(ctx, member, []int64{1})
	assert.True(t, errors.Is(err, domain.ErrAccessDenied))

	_, err = e.clients.Create(ctx, admin, "  ")
	assert.Equal(t, "INVALID_NAME", code(t, err))

	c, err := e.clients.Create(ctx, admin, "Acme")
	require.NoError(t, err)
	c, err = e.clients.Rename(ctx, admin, c.ID, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", c.Name)
}

func TestClients_DeleteBlockedByProjects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	prj := e.project(t)
	free, err := e.clients.Create(ctx, admin, "Free")
	require.NoError(t, err)

	n, err := e.clients.DestroyAll(ctx, admin, []int64{prj.ClientID, free.ID})
	assert.Zero(t, n)
	assert.Equal(t, "CLIENT_ASSOCIATED_WITH_PROJECTS", code(t, err))
	de, _ := domain.AsError(err)
	assert.Equal(t, "Clients are associated with projects, hence cannot be deleted.", de.Message)

	require.NoError(t, e.clients.Destroy(ctx, admin, free.ID))
	assert.Equal(t, "MODEL_NOT_FOUND", code(t, e.clients.Destroy(ctx, admin, free.ID)))

	n, err = e.clients.DestroyAll(ctx, admin, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProjects_GuardsAndReferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.projects.Create(ctx, admin, domain.Project{Name: "X", ClientID: 404})
	assert.Equal(t, "INVALID_REFERENCE", code(t, err))

	prj := e.project(t)
	ann := e.verifiedUser(t, "Ann")
	_, err = e.tasks.Create(ctx, ann, domain.Task{Type: "Testing", ProjectID: prj.ID})
	require.NoError(t, err)

	err = e.projects.Destroy(ctx, admin, prj.ID)
	assert.Equal(t, "PROJECT_ASSOCIATED_WITH_TASKS", code(t, err))

	name := "Renamed"
	got, err := e.projects.Update(ctx, admin, prj.ID, ProjectPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	_, err = e.projects.Update(ctx, ann, prj.ID, ProjectPatch{Name: &name})
	assert.True(t, errors.Is(err, domain.ErrAccessDenied))
}
