package api

import (
	"errors"
	"net/http"

	"github.com/campushire/portal/pkg/httputil"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// listUsers handles GET /api/v1/users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Select(r.Context(), storage.TableProfiles, nil)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if rows == nil {
		rows = []storage.Row{}
	}
	httputil.WriteSuccess(w, rows)
}

// createUser handles POST /api/v1/users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if req.Role != "" {
		if _, err := rbac.ParseRole(req.Role); err != nil {
			httputil.WriteBadRequest(w, "unknown role")
			return
		}
	}

	existing, err := s.store.Select(r.Context(), storage.TableProfiles, storage.Filter{"email": req.Email})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if len(existing) > 0 {
		httputil.WriteConflict(w, "a profile with this email already exists")
		return
	}

	row := storage.Row{
		"email": req.Email,
		"name":  req.Name,
		"role":  req.Role,
	}
	if req.ID != "" {
		row["id"] = req.ID
	}

	created, err := s.store.Insert(r.Context(), storage.TableProfiles, row)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, created)
}

// updateUserRole handles PUT /api/v1/users/{id}/role. The change takes
// effect on the subject's next panel render; roles are never cached.
func (s *Server) updateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req RoleUpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		httputil.WriteBadRequest(w, "unknown role")
		return
	}

	err = s.store.Update(r.Context(), storage.TableProfiles,
		storage.Filter{"id": id}, storage.Row{"role": role.String()})
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// deleteUser handles DELETE /api/v1/users/{id}
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	err := s.store.Delete(r.Context(), storage.TableProfiles, storage.Filter{"id": id})
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// stats handles GET /api/v1/stats
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.Select(r.Context(), storage.TableProfiles, nil)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	students, err := s.store.Select(r.Context(), storage.TableStudents, nil)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	byRole := map[string]int{}
	for _, row := range profiles {
		role, _ := row["role"].(string)
		if role == "" {
			role = "unassigned"
		}
		byRole[role]++
	}

	byStatus := map[string]int{}
	uploaded := 0
	for _, row := range students {
		if url, _ := row["resume_url"].(string); url != "" {
			uploaded++
		}
		status, _ := row["resume_status"].(string)
		if status == "" {
			status = "none"
		}
		byStatus[status]++
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"total_users":       len(profiles),
		"users_by_role":     byRole,
		"total_students":    len(students),
		"resumes_uploaded":  uploaded,
		"resumes_by_status": byStatus,
	})
}
