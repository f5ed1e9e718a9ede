package main

import (
	"database/sql"

	"github.com/akinalp/workdesk/repository"
)

// Repositories groups every repository so constructors take one argument
// instead of a dozen.
type Repositories struct {
	User             repository.UserRepository
	Session          repository.SessionRepository
	ResetToken       repository.PasswordResetRepository
	Intern           repository.InternRepository
	Attendance       repository.AttendanceRepository
	Leave            repository.LeaveRepository
	Permission       repository.PermissionRepository
	Overtime         repository.OvertimeRepository
	Submission       repository.SubmissionRepository
	Approval         repository.ApprovalRepository
	Notification     repository.NotificationRepository
	PushSubscription repository.PushSubscriptionRepository
}

// initRepositories builds every repository on the shared pool. *sql.DB is
// safe for concurrent use.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:             repository.NewSQLiteUserRepo(conn),
		Session:          repository.NewSQLiteSessionRepo(conn),
		ResetToken:       repository.NewSQLiteResetTokenRepo(conn),
		Intern:           repository.NewSQLiteInternRepo(conn),
		Attendance:       repository.NewSQLiteAttendanceRepo(conn),
		Leave:            repository.NewSQLiteLeaveRepo(conn),
		Permission:       repository.NewSQLitePermissionRepo(conn),
		Overtime:         repository.NewSQLiteOvertimeRepo(conn),
		Submission:       repository.NewSQLiteSubmissionRepo(conn),
		Approval:         repository.NewSQLiteApprovalRepo(conn),
		Notification:     repository.NewSQLiteNotificationRepo(conn),
		PushSubscription: repository.NewSQLitePushSubscriptionRepo(conn),
	}
}
