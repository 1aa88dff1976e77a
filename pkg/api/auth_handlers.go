package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/httputil"
	"github.com/campushire/portal/pkg/middleware"
	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/storage"
)

// login handles POST /api/v1/auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	session, err := s.resolver.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.observeLogin("", "failure")
		if errors.Is(err, auth.ErrProviderUnavailable) {
			observability.FromContext(r.Context()).WithError(err).Error("identity provider unavailable")
			httputil.WriteServiceUnavailable(w, "identity provider unavailable")
			return
		}
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}

	s.observeLogin(string(session.Source), "success")
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(s.resolver.Registry().Count()))
	}

	info, err := s.sessionInfo(r, session)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		Session:   info,
	})
}

// signup handles POST /api/v1/auth/signup. Self-service registration always
// creates a student: a profile row plus an empty student record. The secret
// itself lives with the identity provider, not in the portal's tables.
func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
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

	profile, err := s.store.Insert(r.Context(), storage.TableProfiles, storage.Row{
		"email": req.Email,
		"name":  req.Name,
		"role":  rbac.RoleStudent.String(),
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	_, err = s.store.Insert(r.Context(), storage.TableStudents, storage.Row{
		"user_id":       profile["id"],
		"name":          req.Name,
		"email":         req.Email,
		"resume_status": "pending",
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, profile)
}

// updateCredentials handles PUT /api/v1/auth/credentials
func (s *Server) updateCredentials(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)
	if session.Source != auth.SourceProvider {
		httputil.WriteForbidden(w, "demo account credentials are fixed")
		return
	}

	var req CredentialsRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Password != "" {
		httputil.WriteBadRequest(w, "password changes are managed by the identity provider")
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}

	err := s.store.Update(r.Context(), storage.TableProfiles,
		storage.Filter{"id": session.Subject}, storage.Row{"email": req.Email})
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, "profile not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// logout handles POST /api/v1/auth/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		s.resolver.SignOut(parts[1])
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(s.resolver.Registry().Count()))
	}
	httputil.WriteNoContent(w)
}

// session handles GET /api/v1/auth/session
func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)
	info, err := s.sessionInfo(r, session)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, info)
}

// listDemoCredentials handles GET /api/v1/auth/credentials. The demo
// accounts are public; they power the demo login screen.
func (s *Server) listDemoCredentials(w http.ResponseWriter, r *http.Request) {
	creds := make([]DemoCredential, 0, len(auth.DemoAccounts))
	for _, account := range auth.DemoAccounts {
		creds = append(creds, DemoCredential{
			Email:    account.Identifier,
			Password: account.Secret,
			Role:     account.Role,
		})
	}
	httputil.WriteSuccess(w, creds)
}

// sessionInfo resolves the role and panel for the client-visible session
// view
func (s *Server) sessionInfo(r *http.Request, session *auth.Session) (*SessionInfo, error) {
	role, err := s.lookup.Resolve(r.Context(), session)
	if err != nil && !errors.Is(err, rbac.ErrNoRoleAssigned) {
		return nil, err
	}

	decision := rbac.SelectPanel(session, role, s.pinnedEmail)
	return &SessionInfo{
		Subject: session.Subject,
		Email:   session.Email,
		Name:    session.Name,
		Source:  string(session.Source),
		Role:    role.String(),
		Panel:   string(decision.Panel),
	}, nil
}

func (s *Server) observeLogin(source, status string) {
	if s.metrics == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	s.metrics.LoginAttemptsTotal.WithLabelValues(source, status).Inc()
}
