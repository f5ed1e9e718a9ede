package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler serves check-in/out, attendance history and the reports.
type AttendanceHandler struct {
	attendance services.AttendanceService
	reports    services.ReportService
}

func NewAttendanceHandler(attendance services.AttendanceService, reports services.ReportService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, reports: reports}
}

// CheckIn godoc
// POST /api/attendance/check-in
// Body (optional): { "note": "..." }
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CheckInRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.attendance.CheckIn(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, a)
}

// CheckOut godoc
// POST /api/attendance/check-out
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	a, err := h.attendance.CheckOut(r.Context(), user)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, a)
}

// Today godoc
// GET /api/attendance/today
// data is null until the caller checks in.
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	a, err := h.attendance.Today(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, a)
}

// List godoc
// GET /api/attendance?employee_id=&from=&to=
// Without employee_id the caller's own records are listed.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	records, err := h.attendance.List(r.Context(), viewer, employeeParam(r, viewer), q.Get("from"), q.Get("to"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, records)
}

// Correct godoc
// PUT /api/attendance/{employeeId}/{date}
// Body: { "check_in": "HH:MM", "check_out": "HH:MM", "status": "...", "note": "..." }
func (h *AttendanceHandler) Correct(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CorrectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.attendance.Correct(r.Context(), actor, r.PathValue("employeeId"), r.PathValue("date"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, a)
}

// Summary godoc
// GET /api/reports/summary?employee_id=&from=&to=
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	sum, err := h.reports.Summary(r.Context(), viewer, employeeParam(r, viewer), q.Get("from"), q.Get("to"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, sum)
}

// TeamSummary godoc
// GET /api/reports/team?from=&to=
func (h *AttendanceHandler) TeamSummary(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	team, err := h.reports.TeamSummary(r.Context(), viewer, q.Get("from"), q.Get("to"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, team)
}

// Export godoc
// GET /api/reports/export?from=&to=
//
// The workbook is rendered into memory first so a failure still answers
// with a JSON error instead of a truncated file.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	var buf bytes.Buffer
	if err := h.reports.Export(r.Context(), viewer, q.Get("from"), q.Get("to"), &buf); err != nil {
		pkg.Error(w, err)
		return
	}

	name := "attendance.xlsx"
	if from, to := q.Get("from"), q.Get("to"); from != "" && to != "" {
		name = fmt.Sprintf("attendance_%s_%s.xlsx", from, to)
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func employeeParam(r *http.Request, viewer *models.User) string {
	if id := r.URL.Query().Get("employee_id"); id != "" {
		return id
	}
	return viewer.ID
}
