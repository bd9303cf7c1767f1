package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
)

// ProjectPatch carries the editable project fields; nil means unchanged.
type ProjectPatch struct {
	Name     *string
	ClientID *int64
}

type Projects struct {
	Log     *logrus.Logger
	Store   ports.ProjectStore
	Clients ports.ClientStore
}

func (uc *Projects) Create(ctx context.Context, p domain.Principal, in domain.Project) (domain.Project, error) {
	if err := requirePrivileged(p); err != nil {
		return domain.Project{}, err
	}
	name, err := requireName(in.Name)
	if err != nil {
		return domain.Project{}, err
	}
	if _, err := uc.Clients.GetClient(ctx, in.ClientID); err != nil {
		return domain.Project{}, missingReference(err, "client", in.ClientID)
	}
	out, err := uc.Store.CreateProject(ctx, domain.Project{Name: name, ClientID: in.ClientID})
	if err != nil {
		return domain.Project{}, err
	}
	uc.Log.WithFields(logrus.Fields{"project_id": out.ID, "client_id": out.ClientID}).Info("project created")
	return out, nil
}

func (uc *Projects) List(ctx context.Context, q domain.Query) ([]domain.Project, error) {
	return uc.Store.ListProjects(ctx, q)
}

func (uc *Projects) Get(ctx context.Context, id int64) (domain.Project, error) {
	return uc.Store.GetProject(ctx, id)
}

func (uc *Projects) Update(ctx context.Context, p domain.Principal, id int64, patch ProjectPatch) (domain.Project, error) {
	if err := requirePrivileged(p); err != nil {
		return domain.Project{}, err
	}
	cur, err := uc.Store.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if patch.Name != nil {
		if cur.Name, err = requireName(*patch.Name); err != nil {
			return domain.Project{}, err
		}
	}
	if patch.ClientID != nil && *patch.ClientID != cur.ClientID {
		if _, err := uc.Clients.GetClient(ctx, *patch.ClientID); err != nil {
			return domain.Project{}, missingReference(err, "client", *patch.ClientID)
		}
		cur.ClientID = *patch.ClientID
	}
	return uc.Store.UpdateProject(ctx, cur)
}

// DestroyAll deletes the projects with the given ids unless any has tasks.
func (uc *Projects) DestroyAll(ctx context.Context, p domain.Principal, ids []int64) (int64, error) {
	if err := requirePrivileged(p); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := uc.Store.DeleteProjects(ctx, domain.ByIDs(ids...), rules.Guard(domain.ProjectTasks))
	if err != nil {
		return 0, err
	}
	uc.Log.WithFields(logrus.Fields{"ids": ids, "count": n}).Info("projects deleted")
	return n, nil
}

func (uc *Projects) Destroy(ctx context.Context, p domain.Principal, id int64) error {
	n, err := uc.DestroyAll(ctx, p, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("project", id)
	}
	return nil
}
