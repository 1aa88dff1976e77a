package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/campushire/portal/pkg/files"
	"github.com/campushire/portal/pkg/httputil"
	"github.com/campushire/portal/pkg/middleware"
	"github.com/campushire/portal/pkg/storage"
)

// listStudents handles GET /api/v1/students
func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Select(r.Context(), storage.TableStudents, nil)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if rows == nil {
		rows = []storage.Row{}
	}
	httputil.WriteSuccess(w, rows)
}

// myStudentRecord handles GET /api/v1/students/me
func (s *Server) myStudentRecord(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)
	rows, err := s.store.Select(r.Context(), storage.TableStudents, storage.Filter{"user_id": session.Subject})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if len(rows) == 0 {
		httputil.WriteNotFoundError(w, "no student record for this account")
		return
	}
	httputil.WriteSuccess(w, rows[0])
}

// uploadResume handles POST /api/v1/students/me/resume (multipart form,
// field "resume")
func (s *Server) uploadResume(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)

	if err := r.ParseMultipartForm(files.MaxResumeSize); err != nil {
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		httputil.WriteBadRequest(w, "missing resume file")
		return
	}
	defer file.Close()

	key, err := s.resumes.Upload(r.Context(), session.Subject, header.Filename, file)
	switch {
	case errors.Is(err, files.ErrUnsupportedType):
		httputil.WriteBadRequest(w, "resume must be a PDF or Word document")
	case errors.Is(err, files.ErrTooLarge):
		httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, "resume exceeds size limit")
	case errors.Is(err, files.ErrStudentNotFound):
		httputil.WriteNotFoundError(w, "no student record for this account")
	case err != nil:
		httputil.WriteInternalError(w, err)
	default:
		httputil.WriteCreated(w, map[string]string{
			"resume_url":    key,
			"resume_status": string(files.StatusPending),
		})
	}
}

// downloadResume handles GET /api/v1/students/{id}/resume
func (s *Server) downloadResume(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	rc, err := s.resumes.Open(r.Context(), id)
	switch {
	case errors.Is(err, files.ErrStudentNotFound):
		httputil.WriteNotFoundError(w, "student not found")
		return
	case errors.Is(err, files.ErrObjectNotFound):
		httputil.WriteNotFoundError(w, "no resume uploaded")
		return
	case err != nil:
		httputil.WriteInternalError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, rc)
}

// reviewResume handles POST /api/v1/students/{id}/review
func (s *Server) reviewResume(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	err := s.resumes.Review(r.Context(), id, files.ReviewStatus(req.Status), req.Notes)
	switch {
	case errors.Is(err, files.ErrInvalidStatus):
		httputil.WriteBadRequest(w, "status must be approved or rejected")
	case errors.Is(err, files.ErrStudentNotFound):
		httputil.WriteNotFoundError(w, "student not found")
	case err != nil:
		httputil.WriteInternalError(w, err)
	default:
		httputil.WriteNoContent(w)
	}
}
