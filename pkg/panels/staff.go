package panels

import (
	"context"
	"fmt"

	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// StaffPanel shows every student record for resume review
type StaffPanel struct {
	basePanel

	students *liveSet
}

func (p *StaffPanel) Kind() rbac.PanelKind { return rbac.PanelStaff }

func (p *StaffPanel) Mount(ctx context.Context) error {
	p.students = newLiveSet()

	students, err := p.store.Select(ctx, storage.TableStudents, nil)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	p.students.load(students)

	p.watch(storage.TableStudents, storage.EventAll, p.students.apply)
	return nil
}

func (p *StaffPanel) Snapshot(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"panel":    string(rbac.PanelStaff),
		"students": p.students.list(),
	}, nil
}

func (p *StaffPanel) Unmount() { p.release() }
