package handlers

import (
	"net/http"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/services"
)

// DashboardHandler serves the landing page data and the active work policy.
type DashboardHandler struct {
	dashboard services.DashboardService
	policy    *config.Policy
}

func NewDashboardHandler(dashboard services.DashboardService, policy *config.Policy) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, policy: policy}
}

// Get godoc
// GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	d, err := h.dashboard.Get(r.Context(), user)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, d)
}

// Policy godoc
// GET /api/policy
// The frontend needs the workday hours and leave types to render forms.
func (h *DashboardHandler) Policy(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.policy)
}
