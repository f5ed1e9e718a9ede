package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/workflow"
)

// OvertimeService handles claims for hours worked beyond the schedule.
// Overtime goes straight to the manager.
type OvertimeService interface {
	Submit(ctx context.Context, employee *models.User, req *models.CreateOvertimeRequest) (*models.OvertimeRequest, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.OvertimeRequest, error)
	ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.OvertimeRequest, error)
	ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.OvertimeRequest, error)
}

type overtimeService struct {
	flow   *ApprovalFlow
	repo   repository.OvertimeRepository
	policy *config.Policy
	loc    *time.Location
	now    func() time.Time
}

func NewOvertimeService(flow *ApprovalFlow, repo repository.OvertimeRepository, policy *config.Policy, loc *time.Location) OvertimeService {
	return &overtimeService{flow: flow, repo: repo, policy: policy, loc: loc, now: time.Now}
}

func (s *overtimeService) Submit(ctx context.Context, employee *models.User, req *models.CreateOvertimeRequest) (*models.OvertimeRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if req.WorkDate > tz.Today(s.loc, s.now()) {
		return nil, fmt.Errorf("%w: overtime cannot be claimed for a future date", pkg.ErrBadRequest)
	}
	if limit := s.policy.Overtime.MaxHoursPerDay; limit > 0 && req.Hours > limit {
		return nil, fmt.Errorf("%w: at most %g overtime hours can be claimed per day", pkg.ErrBadRequest, limit)
	}

	o := &models.OvertimeRequest{
		WorkDate: req.WorkDate,
		Hours:    req.Hours,
		Reason:   req.Reason,
	}

	err := s.flow.submit(ctx, employee, workflow.KindOvertime, func(tx *sql.Tx, base models.RequestBase) (string, error) {
		overtime := repository.NewSQLiteOvertimeRepo(tx)

		exists, err := overtime.ExistsActive(ctx, employee.ID, req.WorkDate)
		if err != nil {
			return "", err
		}
		if exists {
			return "", fmt.Errorf("%w: overtime for %s is already pending or approved", pkg.ErrConflict, req.WorkDate)
		}

		o.RequestBase = base
		if err := overtime.Create(ctx, o); err != nil {
			return "", err
		}
		return o.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *overtimeService) Get(ctx context.Context, viewer *models.User, id string) (*models.OvertimeRequest, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(viewer, &o.RequestBase); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *overtimeService) ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.OvertimeRequest, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByEmployee(ctx, viewer.ID, filter)
	return orEmpty(list), err
}

func (s *overtimeService) ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.OvertimeRequest, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.repo.ListAwaiting(ctx, viewer.ID, viewer.IsAdmin(), filter)
	return orEmpty(list), err
}
