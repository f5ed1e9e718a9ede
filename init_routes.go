// Package main wires workdesk together and exposes it as a CLI.
//
// Route registration lives here. Chain helpers:
//   - auth: bearer token required, user reloaded and checked active
//   - authPerm: auth plus a role permission bit
//
// Scope checks finer than a permission bit (own team, own request, current
// approver) are made in the service layer.
package main

import (
	"net/http"

	"github.com/akinalp/workdesk/middleware"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/services"
	"github.com/akinalp/workdesk/static"
)

// initRoutes registers every endpoint on mux.
//
// Literal segments are registered before parametric ones on the same
// prefix ("/api/leaves/awaiting" before "/api/leaves/{id}") so they read in
// the order ServeMux resolves them.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
	reg *metrics.Registry,
) {
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	authPerm := func(perm models.Permission, handler http.HandlerFunc) http.Handler {
		return authMw.Require(middleware.RequirePerm(perm, handler))
	}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "workdesk"})
	})
	mux.Handle("GET /metrics", reg.Handler())

	// Auth
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", h.Auth.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", h.Auth.ResetPassword)

	// Current user
	mux.Handle("GET /api/users/me", auth(h.Auth.Me))
	mux.Handle("PATCH /api/users/me", auth(h.Employee.UpdateProfile))
	mux.Handle("POST /api/users/me/password", auth(h.Auth.ChangePassword))

	// Employees
	mux.Handle("GET /api/employees", authPerm(models.PermReadEmployees, h.Employee.List))
	mux.Handle("POST /api/employees", authPerm(models.PermWriteEmployees, h.Employee.Create))
	mux.Handle("GET /api/employees/{id}", auth(h.Employee.Get))
	mux.Handle("PATCH /api/employees/{id}", authPerm(models.PermWriteEmployees, h.Employee.Update))
	mux.Handle("DELETE /api/employees/{id}", authPerm(models.PermWriteEmployees, h.Employee.Deactivate))
	mux.Handle("GET /api/team", auth(h.Employee.Team))

	// Interns
	mux.Handle("GET /api/interns", authPerm(models.PermReadEmployees, h.Employee.ListInterns))
	mux.Handle("POST /api/interns", authPerm(models.PermWriteEmployees, h.Employee.CreateIntern))
	mux.Handle("GET /api/interns/{id}", authPerm(models.PermReadEmployees, h.Employee.GetIntern))
	mux.Handle("PATCH /api/interns/{id}", authPerm(models.PermWriteEmployees, h.Employee.UpdateIntern))

	// Attendance
	mux.Handle("POST /api/attendance/check-in", auth(h.Attendance.CheckIn))
	mux.Handle("POST /api/attendance/check-out", auth(h.Attendance.CheckOut))
	mux.Handle("GET /api/attendance/today", auth(h.Attendance.Today))
	mux.Handle("GET /api/attendance", auth(h.Attendance.List))
	mux.Handle("PUT /api/attendance/{employeeId}/{date}", authPerm(models.PermManageAttendance, h.Attendance.Correct))

	// Reports
	mux.Handle("GET /api/reports/summary", auth(h.Attendance.Summary))
	mux.Handle("GET /api/reports/team", auth(h.Attendance.TeamSummary))
	mux.Handle("GET /api/reports/export", authPerm(models.PermReadReports, h.Attendance.Export))

	// Leaves
	mux.Handle("POST /api/leaves", auth(h.Request.SubmitLeave))
	mux.Handle("GET /api/leaves", auth(h.Request.ListLeaves))
	mux.Handle("GET /api/leaves/awaiting", authPerm(models.PermActApprovals, h.Request.AwaitingLeaves))
	mux.Handle("GET /api/leaves/balance", auth(h.Request.LeaveBalance))
	mux.Handle("GET /api/leaves/types", auth(h.Request.LeaveTypes))
	mux.Handle("GET /api/leaves/{id}", auth(h.Request.GetLeave))

	// Permissions (short absences)
	mux.Handle("POST /api/permissions", auth(h.Request.SubmitPermission))
	mux.Handle("GET /api/permissions", auth(h.Request.ListPermissions))
	mux.Handle("GET /api/permissions/awaiting", authPerm(models.PermActApprovals, h.Request.AwaitingPermissions))
	mux.Handle("GET /api/permissions/{id}", auth(h.Request.GetPermission))

	// Overtime
	mux.Handle("POST /api/overtime", auth(h.Request.SubmitOvertime))
	mux.Handle("GET /api/overtime", auth(h.Request.ListOvertime))
	mux.Handle("GET /api/overtime/awaiting", authPerm(models.PermActApprovals, h.Request.AwaitingOvertime))
	mux.Handle("GET /api/overtime/{id}", auth(h.Request.GetOvertime))

	// Work submissions
	mux.Handle("POST /api/submissions", auth(h.Request.SubmitWork))
	mux.Handle("GET /api/submissions", auth(h.Request.ListSubmissions))
	mux.Handle("GET /api/submissions/awaiting", authPerm(models.PermActApprovals, h.Request.AwaitingSubmissions))
	mux.Handle("GET /api/submissions/{id}", auth(h.Request.GetSubmission))

	// Approval actions, shared by every request kind
	mux.Handle("POST /api/requests/{kind}/{id}/approve", authPerm(models.PermActApprovals, h.Request.Approve))
	mux.Handle("POST /api/requests/{kind}/{id}/reject", authPerm(models.PermActApprovals, h.Request.Reject))
	mux.Handle("POST /api/requests/{kind}/{id}/cancel", auth(h.Request.Cancel))
	mux.Handle("GET /api/requests/{kind}/{id}/history", auth(h.Request.History))
	mux.Handle("GET /api/approvals/pending", authPerm(models.PermActApprovals, h.Request.PendingApprovals))
	mux.Handle("GET /api/approvals/{kind}/{id}/history", auth(h.Request.History))

	// Notifications
	mux.Handle("GET /api/notifications", auth(h.Notification.List))
	mux.Handle("GET /api/notifications/unread-count", auth(h.Notification.UnreadCount))
	mux.Handle("POST /api/notifications/read-all", auth(h.Notification.MarkAllRead))
	mux.Handle("POST /api/notifications/{id}/read", auth(h.Notification.MarkRead))

	// Web push
	mux.HandleFunc("GET /api/push/vapid-public-key", h.Notification.VAPIDPublicKey)
	mux.Handle("POST /api/push/subscriptions", auth(h.Notification.Subscribe))
	mux.Handle("DELETE /api/push/subscriptions", auth(h.Notification.Unsubscribe))

	// Dashboard
	mux.Handle("GET /api/dashboard", auth(h.Dashboard.Get))
	mux.Handle("GET /api/policy", auth(h.Dashboard.Policy))

	// WebSocket authenticates from the query token itself; browsers cannot
	// set headers on the upgrade request.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	// Unknown API paths answer with the envelope instead of the SPA shell.
	mux.HandleFunc("GET /api/", func(w http.ResponseWriter, r *http.Request) {
		pkg.ErrorWithMessage(w, http.StatusNotFound, "endpoint not found")
	})

	// Frontend, when one was embedded at build time.
	if spa, ok := static.Handler(); ok {
		mux.Handle("GET /", spa)
	}
}
