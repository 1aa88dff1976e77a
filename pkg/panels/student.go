package panels

import (
	"context"
	"fmt"
	"sync"

	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// StudentPanel shows company postings and the subject's own student record.
// It is scoped to a single subject; events for other students are ignored.
type StudentPanel struct {
	basePanel
	subjectID string

	companies *liveSet

	mu      sync.RWMutex
	profile storage.Row
}

func (p *StudentPanel) Kind() rbac.PanelKind { return rbac.PanelStudent }

func (p *StudentPanel) Mount(ctx context.Context) error {
	p.companies = newLiveSet()

	companies, err := p.store.Select(ctx, storage.TableCompanies, nil)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}
	p.companies.load(companies)

	students, err := p.store.Select(ctx, storage.TableStudents, storage.Filter{"user_id": p.subjectID})
	if err != nil {
		return fmt.Errorf("load student record: %w", err)
	}
	if len(students) > 0 {
		p.profile = students[0]
	}

	p.watch(storage.TableCompanies, storage.EventAll, p.companies.apply)
	p.watch(storage.TableStudents, storage.EventAll, p.applyStudentEvent)
	return nil
}

func (p *StudentPanel) applyStudentEvent(event storage.Event) {
	if userID, ok := event.Row["user_id"].(string); !ok || userID != p.subjectID {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if event.Type == storage.EventDelete {
		p.profile = nil
		return
	}
	p.profile = event.Row
}

func (p *StudentPanel) Snapshot(ctx context.Context) (map[string]interface{}, error) {
	p.mu.RLock()
	profile := p.profile
	p.mu.RUnlock()

	return map[string]interface{}{
		"panel":     string(rbac.PanelStudent),
		"companies": p.companies.list(),
		"profile":   profile,
	}, nil
}

func (p *StudentPanel) Unmount() { p.release() }
