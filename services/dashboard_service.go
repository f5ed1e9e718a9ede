package services

import (
	"context"
	"time"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/repository"
)

// DashboardService assembles the landing page from the other services.
type DashboardService interface {
	Get(ctx context.Context, user *models.User) (*models.Dashboard, error)
}

type dashboardService struct {
	attendance    AttendanceService
	reports       ReportService
	approvals     ApprovalService
	notifications NotificationService
	leaves        LeaveService
	userRepo      repository.UserRepository
	policy        *config.Policy
	loc           *time.Location
	now           func() time.Time
}

func NewDashboardService(
	attendance AttendanceService,
	reports ReportService,
	approvals ApprovalService,
	notifications NotificationService,
	leaves LeaveService,
	userRepo repository.UserRepository,
	policy *config.Policy,
	loc *time.Location,
) DashboardService {
	return &dashboardService{
		attendance:    attendance,
		reports:       reports,
		approvals:     approvals,
		notifications: notifications,
		leaves:        leaves,
		userRepo:      userRepo,
		policy:        policy,
		loc:           loc,
		now:           time.Now,
	}
}

func (s *dashboardService) Get(ctx context.Context, user *models.User) (*models.Dashboard, error) {
	now := s.now()
	d := &models.Dashboard{}

	var err error
	if d.Today, err = s.attendance.Today(ctx, user.ID); err != nil {
		return nil, err
	}
	if d.Month, err = s.reports.Summary(ctx, user, user.ID, "", ""); err != nil {
		return nil, err
	}
	if d.MyPending, err = s.approvals.PendingCounts(ctx, user); err != nil {
		return nil, err
	}
	if d.AwaitingMe, err = s.approvals.AwaitingCounts(ctx, user); err != nil {
		return nil, err
	}
	if d.UnreadCount, err = s.notifications.CountUnread(ctx, user.ID); err != nil {
		return nil, err
	}
	if d.LeaveBalance, err = s.leaves.Balance(ctx, user, user.ID, now.In(s.loc).Year()); err != nil {
		return nil, err
	}

	if user.Role.CanLead() || user.Role.CanManage() {
		team, err := s.userRepo.ListReports(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		d.TeamSize = len(team)
	}

	d.CheckoutReminder = d.Today != nil && d.Today.IsOpen() &&
		minuteOfDay(now, s.loc) >= s.policy.EndMinutes()+s.policy.Workday.CheckoutReminderAfterMinutes
	return d, nil
}
