package handlers

import (
	"net/http"
	"strconv"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/services"
)

// EmployeeHandler serves user accounts, interns and the caller's profile.
type EmployeeHandler struct {
	employees services.EmployeeService
	interns   services.InternService
}

func NewEmployeeHandler(employees services.EmployeeService, interns services.InternService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, interns: interns}
}

// userFilter reads ?role=&department=&active=&search=&team_lead_id=&manager_id=.
func userFilter(r *http.Request) (models.UserFilter, bool) {
	q := r.URL.Query()
	limit, offset := paging(r)
	f := models.UserFilter{
		Role:       models.Role(q.Get("role")),
		Department: q.Get("department"),
		Search:     q.Get("search"),
		TeamLeadID: q.Get("team_lead_id"),
		ManagerID:  q.Get("manager_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return f, false
		}
		f.Active = &active
	}
	return f, true
}

// List godoc
// GET /api/employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := userFilter(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "active must be true or false")
		return
	}

	users, err := h.employees.List(r.Context(), filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, users)
}

// Get godoc
// GET /api/employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.employees.Get(r.Context(), viewer, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, user)
}

// Create godoc
// POST /api/employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.employees.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, user)
}

// Update godoc
// PATCH /api/employees/{id}
//
// Partial update. team_lead_id and manager_id accept "" to clear the link.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.employees.Update(r.Context(), actor, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, user)
}

// Deactivate godoc
// DELETE /api/employees/{id}
func (h *EmployeeHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.employees.Deactivate(r.Context(), actor, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user deactivated"})
}

// Team godoc
// GET /api/team
func (h *EmployeeHandler) Team(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	team, err := h.employees.Team(r.Context(), viewer)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, team)
}

// UpdateProfile godoc
// PATCH /api/users/me
func (h *EmployeeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.employees.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, updated)
}

// ListInterns godoc
// GET /api/interns
func (h *EmployeeHandler) ListInterns(w http.ResponseWriter, r *http.Request) {
	filter, ok := userFilter(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "active must be true or false")
		return
	}

	interns, err := h.interns.List(r.Context(), filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, interns)
}

// GetIntern godoc
// GET /api/interns/{id}
func (h *EmployeeHandler) GetIntern(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	intern, err := h.interns.Get(r.Context(), viewer, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, intern)
}

// CreateIntern godoc
// POST /api/interns
func (h *EmployeeHandler) CreateIntern(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInternRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intern, err := h.interns.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, intern)
}

// UpdateIntern godoc
// PATCH /api/interns/{id}
func (h *EmployeeHandler) UpdateIntern(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateInternRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	intern, err := h.interns.Update(r.Context(), actor, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, intern)
}
