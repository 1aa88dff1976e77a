package panels

import (
	"context"
	"fmt"

	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// AdminPanel manages company postings and sees every student record
type AdminPanel struct {
	basePanel

	companies *liveSet
	students  *liveSet
}

func (p *AdminPanel) Kind() rbac.PanelKind { return rbac.PanelAdmin }

func (p *AdminPanel) Mount(ctx context.Context) error {
	p.companies = newLiveSet()
	p.students = newLiveSet()

	companies, err := p.store.Select(ctx, storage.TableCompanies, nil)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}
	p.companies.load(companies)

	students, err := p.store.Select(ctx, storage.TableStudents, nil)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	p.students.load(students)

	p.watch(storage.TableCompanies, storage.EventAll, p.companies.apply)
	p.watch(storage.TableStudents, storage.EventAll, p.students.apply)
	return nil
}

func (p *AdminPanel) Snapshot(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"panel":     string(rbac.PanelAdmin),
		"companies": p.companies.list(),
		"students":  p.students.list(),
	}, nil
}

func (p *AdminPanel) Unmount() { p.release() }
