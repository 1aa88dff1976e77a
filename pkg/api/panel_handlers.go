package api

import (
	"net/http"

	"github.com/campushire/portal/pkg/httputil"
	"github.com/campushire/portal/pkg/middleware"
	"github.com/campushire/portal/pkg/observability"
)

// panel handles GET /api/v1/panel: re-routes the session and returns the
// mounted panel's current data. The role resolves fresh on every request,
// so a role edit shows up here on the next render.
func (s *Server) panel(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)

	sessionRouter, err := s.routers.Attach(r.Context(), session)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("panel attach failed")
		httputil.WriteInternalError(w, err)
		return
	}

	kind, loading := sessionRouter.Current()
	snapshot, err := sessionRouter.Snapshot(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"panel":   string(kind),
		"loading": loading,
		"data":    snapshot,
	})
}
