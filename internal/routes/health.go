package routes

import (
	"net/http"

	"github.com/KartikLabhshetwar/FolioSign/internal/lifecycle"
	"github.com/KartikLabhshetwar/FolioSign/pkg/handlers"
	"github.com/KartikLabhshetwar/FolioSign/pkg/routes"
)

// HealthRoutes returns liveness and readiness probes. Liveness always
// succeeds while the process serves; readiness reflects startup completion.
func HealthRoutes(coordinator *lifecycle.Coordinator) routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{
				Pattern: "GET /healthz",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
				},
			},
			{
				Pattern: "GET /readyz",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					if !coordinator.Ready() {
						handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
						return
					}
					handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
				},
			},
		},
	}
}
