package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/pkg/cache"
	"github.com/akinalp/workdesk/pkg/crypto"
	"github.com/akinalp/workdesk/pkg/email"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/pkg/push"
	"github.com/akinalp/workdesk/pkg/ratelimit"
	"github.com/akinalp/workdesk/services"
	"github.com/akinalp/workdesk/ws"
)

// Services groups every service instance.
type Services struct {
	Auth         services.AuthService
	Employee     services.EmployeeService
	Intern       services.InternService
	Notification services.NotificationService
	Push         services.PushService
	Report       services.ReportService
	Approval     services.ApprovalService
	Leave        services.LeaveService
	Permission   services.PermissionService
	Overtime     services.OvertimeService
	Submission   services.SubmissionService
	Attendance   services.AttendanceService
	Dashboard    services.DashboardService
	Sweeper      services.Sweeper
}

// RateLimiters groups the in-process limiters; Close stops their cleanup goroutines.
type RateLimiters struct {
	Login *ratelimit.LoginRateLimiter
}

func (l *RateLimiters) Close() {
	l.Login.Close()
}

// Login attempts allowed per IP inside the window.
const (
	loginMaxAttempts = 5
	loginWindow      = 2 * time.Minute
)

func initRateLimiters() *RateLimiters {
	return &RateLimiters{
		Login: ratelimit.NewLoginRateLimiter(loginMaxAttempts, loginWindow),
	}
}

// initServices wires the service layer. Order matters only where one
// service feeds another: reports before the approval flow and attendance
// (they invalidate cached summaries), notifications before the flow.
func initServices(
	db *sql.DB,
	repos *Repositories,
	hub ws.EventPublisher,
	store cache.Store,
	reg *metrics.Registry,
	policy *config.Policy,
	loc *time.Location,
	cfg *config.Config,
) (*Services, error) {
	var encKey []byte
	if cfg.App.EncryptionKey != "" {
		key, err := crypto.DeriveKey(cfg.App.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
		}
		encKey = key
	}

	// Left as nil interfaces when unconfigured; the services skip the channel.
	var mailer email.Sender
	if cfg.Email.Enabled() {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.App.URL)
	} else {
		log.Warn().Str("component", "main").Msg("RESEND_API_KEY not set, email notifications and password reset are disabled")
	}

	var pusher push.Sender
	if cfg.Push.Enabled() {
		pusher = push.NewSender(push.VAPIDConfig{
			PublicKey:  cfg.Push.VAPIDPublicKey,
			PrivateKey: cfg.Push.VAPIDPrivateKey,
			Subject:    cfg.Push.Subject,
		}, nil)
	} else {
		log.Warn().Str("component", "main").Msg("VAPID keys not set, web push is disabled")
	}

	authService := services.NewAuthService(
		repos.User,
		repos.Session,
		repos.ResetToken,
		mailer,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	notificationService := services.NewNotificationService(
		repos.Notification, repos.User, repos.PushSubscription,
		hub, pusher, mailer, reg, encKey, loc,
	)

	reportService := services.NewReportService(
		repos.Attendance, repos.Leave, repos.Overtime, repos.User,
		store, cfg.App.ReportCacheTTL, reg, policy, loc,
	)

	flow := services.NewApprovalFlow(db, repos.User, repos.Approval, notificationService, hub, reg, reportService)
	leaveService := services.NewLeaveService(flow, repos.Leave, repos.User, policy)
	attendanceService := services.NewAttendanceService(repos.Attendance, repos.User, reportService, policy, loc)
	approvalService := services.NewApprovalService(flow, repos.Approval)

	sweeper := services.NewSweeper(services.SweeperDeps{
		Approvals:     repos.Approval,
		Attendance:    repos.Attendance,
		Users:         repos.User,
		Sessions:      repos.Session,
		ResetTokens:   repos.ResetToken,
		Notifications: repos.Notification,
	}, notificationService, store, reg, policy, loc, cfg.Sweep)

	return &Services{
		Auth:         authService,
		Employee:     services.NewEmployeeService(db, repos.User, repos.Session),
		Intern:       services.NewInternService(db, repos.Intern),
		Notification: notificationService,
		Push:         services.NewPushService(repos.PushSubscription, pusher, encKey),
		Report:       reportService,
		Approval:     approvalService,
		Leave:        leaveService,
		Permission:   services.NewPermissionService(flow, repos.Permission, policy),
		Overtime:     services.NewOvertimeService(flow, repos.Overtime, policy, loc),
		Submission:   services.NewSubmissionService(flow, repos.Submission),
		Attendance:   attendanceService,
		Dashboard: services.NewDashboardService(
			attendanceService, reportService, approvalService, notificationService,
			leaveService, repos.User, policy, loc,
		),
		Sweeper: sweeper,
	}, nil
}
