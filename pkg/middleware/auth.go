package middleware

import (
	"net/http"
	"strings"

	"github.com/campushire/portal/pkg/auth"
	"github.com/campushire/portal/pkg/contextkeys"
	"github.com/campushire/portal/pkg/rbac"
)

// AuthMiddleware authenticates bearer tokens against the session registry
// and resolves the session's role
type AuthMiddleware struct {
	registry *auth.Registry
	lookup   *rbac.Lookup
	optional bool // if true, requests without a token pass through
}

// NewAuthMiddleware creates authentication middleware. With optional set,
// unauthenticated requests continue with no session in context.
func NewAuthMiddleware(registry *auth.Registry, lookup *rbac.Lookup, optional bool) *AuthMiddleware {
	return &AuthMiddleware{
		registry: registry,
		lookup:   lookup,
		optional: optional,
	}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			unauthorizedResponse(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorizedResponse(w, "invalid authorization header format")
			return
		}

		session, err := m.registry.Get(parts[1])
		if err != nil {
			unauthorizedResponse(w, "invalid or expired token")
			return
		}

		ctx := contextkeys.WithSession(r.Context(), session)

		// Role resolution failure is not fatal here: the decision table
		// routes a roleless session to the login panel, and gated routes
		// reject it
		if role, err := m.lookup.Resolve(ctx, session); err == nil {
			ctx = contextkeys.WithRole(ctx, role)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession extracts the authenticated session from the request, or nil
func GetSession(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(contextkeys.SessionKey).(*auth.Session)
	return session
}

// GetRole extracts the resolved role from the request
func GetRole(r *http.Request) rbac.Role {
	role, ok := r.Context().Value(contextkeys.RoleKey).(rbac.Role)
	if !ok {
		return rbac.RoleNone
	}
	return role
}

// RequireRole creates middleware that rejects sessions below the minimum
// role. Fails closed: no session or no role is a 403.
func RequireRole(min rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r) == nil {
				forbiddenResponse(w, "authentication required")
				return
			}
			if !GetRole(r).AtLeast(min) {
				forbiddenResponse(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePanel creates middleware that rejects sessions whose role does
// not grant the given panel
func RequirePanel(panel rbac.PanelKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r) == nil {
				forbiddenResponse(w, "authentication required")
				return
			}
			if !rbac.PanelForRole(GetRole(r), panel) {
				forbiddenResponse(w, "panel not permitted for role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorizedResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

func forbiddenResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
