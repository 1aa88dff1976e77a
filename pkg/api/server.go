package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/files"
	"github.com/campushire/portal/pkg/middleware"
	"github.com/campushire/portal/pkg/observability"
	"github.com/campushire/portal/pkg/rbac"
	"github.com/campushire/portal/pkg/router"
	"github.com/campushire/portal/pkg/storage"
)

// Dependencies carries everything the server needs. Logger, Metrics and
// LoginLimiter may be nil.
type Dependencies struct {
	Resolver     *auth.Resolver
	Lookup       *rbac.Lookup
	Routers      *router.Manager
	Store        storage.RecordStore
	Resumes      *files.ResumeService
	PinnedEmail  string
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	LoginLimiter *middleware.RateLimiter
}

// Server is the portal API server
type Server struct {
	router       *mux.Router
	resolver     *auth.Resolver
	lookup       *rbac.Lookup
	routers      *router.Manager
	store        storage.RecordStore
	resumes      *files.ResumeService
	pinnedEmail  string
	logger       *observability.Logger
	metrics      *observability.Metrics
	loginLimiter *middleware.RateLimiter
}

// NewServer creates the API server and mounts all routes
func NewServer(deps Dependencies) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		resolver:     deps.Resolver,
		lookup:       deps.Lookup,
		routers:      deps.Routers,
		store:        deps.Store,
		resumes:      deps.Resumes,
		pinnedEmail:  deps.PinnedEmail,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		loginLimiter: deps.LoginLimiter,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID(s.logger))
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	authMW := middleware.NewAuthMiddleware(s.resolver.Registry(), s.lookup, false)

	// Auth routes (no token required)
	s.router.Handle("/api/v1/auth/login",
		middleware.LoginRateLimit(s.loginLimiter)(http.HandlerFunc(s.login))).Methods("POST")
	s.router.HandleFunc("/api/v1/auth/signup", s.signup).Methods("POST")
	s.router.HandleFunc("/api/v1/auth/credentials", s.listDemoCredentials).Methods("GET")

	// Authenticated routes
	authed := s.router.PathPrefix("/api/v1").Subrouter()
	authed.Use(authMW.Handler)

	authed.HandleFunc("/auth/logout", s.logout).Methods("POST")
	authed.HandleFunc("/auth/session", s.session).Methods("GET")
	authed.HandleFunc("/auth/credentials", s.updateCredentials).Methods("PUT")

	// Panel routing
	authed.HandleFunc("/panel", s.panel).Methods("GET")

	// Company postings: readable by any signed-in user, written by staff
	// and above
	authed.HandleFunc("/companies", s.listCompanies).Methods("GET")
	authed.Handle("/companies",
		middleware.RequireRole(rbac.RoleStaff)(http.HandlerFunc(s.createCompany))).Methods("POST")
	authed.Handle("/companies/{id}",
		middleware.RequireRole(rbac.RoleStaff)(http.HandlerFunc(s.updateCompany))).Methods("PUT")
	authed.Handle("/companies/{id}",
		middleware.RequireRole(rbac.RoleStaff)(http.HandlerFunc(s.deleteCompany))).Methods("DELETE")

	// Student records and resumes
	authed.Handle("/students",
		middleware.RequireRole(rbac.RoleStaff)(http.HandlerFunc(s.listStudents))).Methods("GET")
	authed.HandleFunc("/students/me", s.myStudentRecord).Methods("GET")
	authed.HandleFunc("/students/me/resume", s.uploadResume).Methods("POST")
	authed.Handle("/students/{id}/resume",
		middleware.RequireRole(rbac.RoleStaff)(http.HandlerFunc(s.downloadResume))).Methods("GET")
	authed.Handle("/students/{id}/review",
		middleware.RequireRole(rbac.RoleStaff)(http.HandlerFunc(s.reviewResume))).Methods("PUT")

	// User administration
	authed.Handle("/users",
		middleware.RequireRole(rbac.RoleSuperAdmin)(http.HandlerFunc(s.listUsers))).Methods("GET")
	authed.Handle("/users",
		middleware.RequireRole(rbac.RoleSuperAdmin)(http.HandlerFunc(s.createUser))).Methods("POST")
	authed.Handle("/users/{id}/role",
		middleware.RequireRole(rbac.RoleSuperAdmin)(http.HandlerFunc(s.updateUserRole))).Methods("PUT")
	authed.Handle("/users/{id}",
		middleware.RequireRole(rbac.RoleSuperAdmin)(http.HandlerFunc(s.deleteUser))).Methods("DELETE")
	authed.Handle("/stats",
		middleware.RequireRole(rbac.RoleSuperAdmin)(http.HandlerFunc(s.stats))).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
