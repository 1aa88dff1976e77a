package api

import (
	"errors"
	"net/http"

	"github.com/campushire/portal/pkg/httputil"
	"github.com/campushire/portal/pkg/middleware"
	"github.com/campushire/portal/pkg/storage"
)

// listCompanies handles GET /api/v1/companies
func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Select(r.Context(), storage.TableCompanies, nil)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if rows == nil {
		rows = []storage.Row{}
	}
	httputil.WriteSuccess(w, rows)
}

// createCompany handles POST /api/v1/companies
func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}

	session := middleware.GetSession(r)
	row, err := s.store.Insert(r.Context(), storage.TableCompanies, storage.Row{
		"name":         req.Name,
		"description":  req.Description,
		"positions":    req.Positions,
		"deadline":     req.Deadline,
		"requirements": req.Requirements,
		"location":     req.Location,
		"posted_by":    session.Subject,
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, row)
}

// updateCompany handles PUT /api/v1/companies/{id}
func (s *Server) updateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req CompanyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	patch := storage.Row{
		"name":         req.Name,
		"description":  req.Description,
		"positions":    req.Positions,
		"deadline":     req.Deadline,
		"requirements": req.Requirements,
		"location":     req.Location,
	}

	err := s.store.Update(r.Context(), storage.TableCompanies, storage.Filter{"id": id}, patch)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "company not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	rows, err := s.store.Select(r.Context(), storage.TableCompanies, storage.Filter{"id": id})
	if err != nil || len(rows) == 0 {
		httputil.WriteInternalError(w, errors.New("company vanished after update"))
		return
	}
	httputil.WriteSuccess(w, rows[0])
}

// deleteCompany handles DELETE /api/v1/companies/{id}
func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	err := s.store.Delete(r.Context(), storage.TableCompanies, storage.Filter{"id": id})
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "company not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
