package panels

import (
	"context"
	"fmt"

	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// SuperAdminPanel shows every user account plus portal-wide statistics
type SuperAdminPanel struct {
	basePanel

	profiles *liveSet
	students *liveSet
}

func (p *SuperAdminPanel) Kind() rbac.PanelKind { return rbac.PanelSuperAdmin }

func (p *SuperAdminPanel) Mount(ctx context.Context) error {
	p.profiles = newLiveSet()
	p.students = newLiveSet()

	profiles, err := p.store.Select(ctx, storage.TableProfiles, nil)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	p.profiles.load(profiles)

	students, err := p.store.Select(ctx, storage.TableStudents, nil)
	if err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	p.students.load(students)

	p.watch(storage.TableProfiles, storage.EventAll, p.profiles.apply)
	p.watch(storage.TableStudents, storage.EventAll, p.students.apply)
	return nil
}

func (p *SuperAdminPanel) Snapshot(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"panel": string(rbac.PanelSuperAdmin),
		"users": p.profiles.list(),
		"stats": p.Stats(),
	}, nil
}

// Stats aggregates user counts by role and resume counts by review status
func (p *SuperAdminPanel) Stats() map[string]interface{} {
	byRole := map[string]int{}
	for _, row := range p.profiles.list() {
		role, _ := row["role"].(string)
		if role == "" {
			role = "unassigned"
		}
		byRole[role]++
	}

	byStatus := map[string]int{}
	uploaded := 0
	for _, row := range p.students.list() {
		if url, _ := row["resume_url"].(string); url != "" {
			uploaded++
		}
		status, _ := row["resume_status"].(string)
		if status == "" {
			status = "none"
		}
		byStatus[status]++
	}

	return map[string]interface{}{
		"total_users":       p.profiles.len(),
		"users_by_role":     byRole,
		"total_students":    p.students.len(),
		"resumes_uploaded":  uploaded,
		"resumes_by_status": byStatus,
	}
}

func (p *SuperAdminPanel) Unmount() { p.release() }
