package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/services"
	"github.com/akinalp/workdesk/workflow"
)

// RequestHandler serves the four request kinds (leave, permission,
// overtime, submission) and the approval actions they share.
type RequestHandler struct {
	leaves      services.LeaveService
	permissions services.PermissionService
	overtime    services.OvertimeService
	submissions services.SubmissionService
	approvals   services.ApprovalService
	loc         *time.Location
}

func NewRequestHandler(
	leaves services.LeaveService,
	permissions services.PermissionService,
	overtime services.OvertimeService,
	submissions services.SubmissionService,
	approvals services.ApprovalService,
	loc *time.Location,
) *RequestHandler {
	return &RequestHandler{
		leaves:      leaves,
		permissions: permissions,
		overtime:    overtime,
		submissions: submissions,
		approvals:   approvals,
		loc:         loc,
	}
}

// serveSubmit, serveList and serveGet work for every request kind: the
// per-kind services share their method shapes.
func serveSubmit[Req, Out any](w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.User, *Req) (*Out, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req Req
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := fn(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, out)
}

func serveList[Out any](w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.User, models.RequestFilter) ([]Out, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := fn(r.Context(), user, requestFilter(r))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, items)
}

func serveGet[Out any](w http.ResponseWriter, r *http.Request, fn func(context.Context, *models.User, string) (*Out, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	out, err := fn(r.Context(), user, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, out)
}

// Leave requests: /api/leaves

func (h *RequestHandler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	serveSubmit(w, r, h.leaves.Submit)
}

func (h *RequestHandler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.leaves.ListMine)
}

func (h *RequestHandler) AwaitingLeaves(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.leaves.ListAwaiting)
}

func (h *RequestHandler) GetLeave(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.leaves.Get)
}

// LeaveBalance godoc
// GET /api/leaves/balance?employee_id=&year=
// year defaults to the current year in the configured time zone.
func (h *RequestHandler) LeaveBalance(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	year := time.Now().In(h.loc).Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 9999 {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "year must be a four digit number")
			return
		}
		year = y
	}

	balance, err := h.leaves.Balance(r.Context(), viewer, employeeParam(r, viewer), year)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, balance)
}

// LeaveTypes godoc
// GET /api/leaves/types
func (h *RequestHandler) LeaveTypes(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.leaves.Types())
}

// Permission requests: /api/permissions

func (h *RequestHandler) SubmitPermission(w http.ResponseWriter, r *http.Request) {
	serveSubmit(w, r, h.permissions.Submit)
}

func (h *RequestHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.permissions.ListMine)
}

func (h *RequestHandler) AwaitingPermissions(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.permissions.ListAwaiting)
}

func (h *RequestHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.permissions.Get)
}

// Overtime requests: /api/overtime

func (h *RequestHandler) SubmitOvertime(w http.ResponseWriter, r *http.Request) {
	serveSubmit(w, r, h.overtime.Submit)
}

func (h *RequestHandler) ListOvertime(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.overtime.ListMine)
}

func (h *RequestHandler) AwaitingOvertime(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.overtime.ListAwaiting)
}

func (h *RequestHandler) GetOvertime(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.overtime.Get)
}

// Work submissions: /api/submissions

func (h *RequestHandler) SubmitWork(w http.ResponseWriter, r *http.Request) {
	serveSubmit(w, r, h.submissions.Submit)
}

func (h *RequestHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.submissions.ListMine)
}

func (h *RequestHandler) AwaitingSubmissions(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.submissions.ListAwaiting)
}

func (h *RequestHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.submissions.Get)
}

// Approve godoc
// POST /api/requests/{kind}/{id}/approve
// Body (optional): { "comment": "..." }
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, workflow.DecisionApprove)
}

// Reject godoc
// POST /api/requests/{kind}/{id}/reject
// Body (optional): { "comment": "..." }
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, workflow.DecisionReject)
}

func (h *RequestHandler) decide(w http.ResponseWriter, r *http.Request, decision workflow.Decision) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	kind, err := workflow.ParseKind(r.PathValue("kind"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req struct {
		Comment string `json:"comment"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.approvals.Decide(r.Context(), actor, kind, r.PathValue("id"), decision, req.Comment)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, rec)
}

// Cancel godoc
// POST /api/requests/{kind}/{id}/cancel
// Only the employee who submitted may cancel, and only while pending.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	kind, err := workflow.ParseKind(r.PathValue("kind"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	rec, err := h.approvals.Cancel(r.Context(), actor, kind, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, rec)
}

// History godoc
// GET /api/approvals/{kind}/{id}/history
func (h *RequestHandler) History(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}
	kind, err := workflow.ParseKind(r.PathValue("kind"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	actions, err := h.approvals.History(r.Context(), viewer, kind, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, actions)
}

// PendingApprovals godoc
// GET /api/approvals/pending
// Counts per kind of the requests waiting for the caller's decision.
func (h *RequestHandler) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	viewer, ok := currentUser(w, r)
	if !ok {
		return
	}

	counts, err := h.approvals.AwaitingCounts(r.Context(), viewer)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]any{
		"counts": counts,
		"total":  counts.Total(),
	})
}
