package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
)

// Clients manages client organisations. Writes need a privileged principal.
type Clients struct {
	Log   *logrus.Logger
	Store ports.ClientStore
}

func (uc *Clients) Create(ctx context.Context, p domain.Principal, name string) (domain.Client, error) {
	if err := requirePrivileged(p); err != nil {
		return domain.Client{}, err
	}
	name, err := requireName(name)
	if err != nil {
		return domain.Client{}, err
	}
	c, err := uc.Store.CreateClient(ctx, domain.Client{Name: name})
	if err != nil {
		return domain.Client{}, err
	}
	uc.Log.WithField("client_id", c.ID).Info("client created")
	return c, nil
}

func (uc *Clients) List(ctx context.Context, q domain.Query) ([]domain.Client, error) {
	return uc.Store.ListClients(ctx, q)
}

func (uc *Clients) Get(ctx context.Context, id int64) (domain.Client, error) {
	return uc.Store.GetClient(ctx, id)
}

func (uc *Clients) Rename(ctx context.Context, p domain.Principal, id int64, name string) (domain.Client, error) {
	if err := requirePrivileged(p); err != nil {
		return domain.Client{}, err
	}
	name, err := requireName(name)
	if err != nil {
		return domain.Client{}, err
	}
	return uc.Store.UpdateClient(ctx, domain.Client{ID: id, Name: name})
}

// DestroyAll deletes the clients with the given ids. The batch is refused
// as a whole if any client still has projects.
func (uc *Clients) DestroyAll(ctx context.Context, p domain.Principal, ids []int64) (int64, error) {
	if err := requirePrivileged(p); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := uc.Store.DeleteClients(ctx, domain.ByIDs(ids...), rules.Guard(domain.ClientProjects))
	if err != nil {
		return 0, err
	}
	uc.Log.WithFields(logrus.Fields{"ids": ids, "count": n}).Info("clients deleted")
	return n, nil
}

// Destroy deletes one client, failing with not found when it is absent.
func (uc *Clients) Destroy(ctx context.Context, p domain.Principal, id int64) error {
	n, err := uc.DestroyAll(ctx, p, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("client", id)
	}
	return nil
}
