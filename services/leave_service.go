package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/workflow"
)

// LeaveService handles day-off requests and leave balances.
type LeaveService interface {
	Submit(ctx context.Context, employee *models.User, req *models.CreateLeaveRequest) (*models.LeaveRequest, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.LeaveRequest, error)
	ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.LeaveRequest, error)
	ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.LeaveRequest, error)
	// Balance reports every leave type of the policy for year.
	Balance(ctx context.Context, viewer *models.User, employeeID string, year int) ([]models.LeaveBalance, error)
	Types() []config.LeaveType
}

type leaveService struct {
	flow      *ApprovalFlow
	leaveRepo repository.LeaveRepository
	userRepo  repository.UserRepository
	policy    *config.Policy
}

func NewLeaveService(
	flow *ApprovalFlow,
	leaveRepo repository.LeaveRepository,
	userRepo repository.UserRepository,
	policy *config.Policy,
) LeaveService {
	return &leaveService{
		flow:      flow,
		leaveRepo: leaveRepo,
		userRepo:  userRepo,
		policy:    policy,
	}
}

func (s *leaveService) Submit(ctx context.Context, employee *models.User, req *models.CreateLeaveRequest) (*models.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	leaveType, ok := s.policy.LeaveType(req.LeaveType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown leave type %q", pkg.ErrBadRequest, req.LeaveType)
	}

	workdays, err := tz.WorkdaysBetween(req.StartDate, req.EndDate, s.policy.WeekendDays())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if len(workdays) == 0 {
		return nil, fmt.Errorf("%w: the requested range contains no workdays", pkg.ErrBadRequest)
	}
	days := float64(len(workdays))
	if req.HalfDay {
		days = 0.5
	}

	year, err := tz.Year(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	leave := &models.LeaveRequest{
		LeaveType: leaveType.Code,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		HalfDay:   req.HalfDay,
		Days:      days,
		Reason:    req.Reason,
	}

	err = s.flow.submit(ctx, employee, workflow.KindLeave, func(tx *sql.Tx, base models.RequestBase) (string, error) {
		leaves := repository.NewSQLiteLeaveRepo(tx)

		overlap, err := leaves.HasOverlap(ctx, employee.ID, req.StartDate, req.EndDate)
		if err != nil {
			return "", err
		}
		if overlap {
			return "", fmt.Errorf("%w: the dates overlap another pending or approved leave", pkg.ErrConflict)
		}

		if leaveType.AnnualQuota > 0 {
			approved, pending, err := leaves.SumDays(ctx, employee.ID, leaveType.Code, year)
			if err != nil {
				return "", err
			}
			if left := leaveType.AnnualQuota - approved - pending; days > left {
				return "", fmt.Errorf("%w: %s quota exceeded (%g of %g days left in %d)",
					pkg.ErrBadRequest, leaveType.Name, max(left, 0), leaveType.AnnualQuota, year)
			}
		}

		leave.RequestBase = base
		if err := leaves.Create(ctx, leave); err != nil {
			return "", err
		}
		return leave.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return leave, nil
}

func (s *leaveService) Get(ctx context.Context, viewer *models.User, id string) (*models.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(viewer, &leave.RequestBase); err != nil {
		return nil, err
	}
	return leave, nil
}

func (s *leaveService) ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.LeaveRequest, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.leaveRepo.ListByEmployee(ctx, viewer.ID, filter)
	return orEmpty(list), err
}

func (s *leaveService) ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.LeaveRequest, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.leaveRepo.ListAwaiting(ctx, viewer.ID, viewer.IsAdmin(), filter)
	return orEmpty(list), err
}

func (s *leaveService) Balance(ctx context.Context, viewer *models.User, employeeID string, year int) ([]models.LeaveBalance, error) {
	if employeeID != viewer.ID {
		employee, err := s.userRepo.GetByID(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		if !canViewUser(viewer, employee) {
			return nil, fmt.Errorf("%w: you cannot view this balance", pkg.ErrForbidden)
		}
	}

	balances := make([]models.LeaveBalance, 0, len(s.policy.LeaveTypes))
	for _, lt := range s.policy.LeaveTypes {
		approved, pending, err := s.leaveRepo.SumDays(ctx, employeeID, lt.Code, year)
		if err != nil {
			return nil, err
		}
		b := models.LeaveBalance{
			LeaveType: lt.Code,
			Name:      lt.Name,
			Quota:     lt.AnnualQuota,
			Taken:     approved,
			Pending:   pending,
		}
		if lt.AnnualQuota > 0 {
			left := max(lt.AnnualQuota-approved-pending, 0)
			b.Remaining = &left
		}
		balances = append(balances, b)
	}
	return balances, nil
}

func (s *leaveService) Types() []config.LeaveType {
	return s.policy.LeaveTypes
}
