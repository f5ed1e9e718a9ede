package main

import (
	"time"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/handlers"
	"github.com/akinalp/workdesk/ws"
)

// Handlers groups every HTTP handler.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Employee     *handlers.EmployeeHandler
	Attendance   *handlers.AttendanceHandler
	Request      *handlers.RequestHandler
	Notification *handlers.NotificationHandler
	Dashboard    *handlers.DashboardHandler
	WS           *ws.Handler
}

func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, policy *config.Policy, loc *time.Location, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:         handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		Employee:     handlers.NewEmployeeHandler(svcs.Employee, svcs.Intern),
		Attendance:   handlers.NewAttendanceHandler(svcs.Attendance, svcs.Report),
		Request:      handlers.NewRequestHandler(svcs.Leave, svcs.Permission, svcs.Overtime, svcs.Submission, svcs.Approval, loc),
		Notification: handlers.NewNotificationHandler(svcs.Notification, svcs.Push),
		Dashboard:    handlers.NewDashboardHandler(svcs.Dashboard, policy),
		WS:           ws.NewHandler(hub, svcs.Auth, svcs.Notification, cfg.Server.CORSOrigins),
	}
}
