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

// PermissionService handles short time-off requests within a workday.
type PermissionService interface {
	Submit(ctx context.Context, employee *models.User, req *models.CreatePermissionRequest) (*models.PermissionRequest, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.PermissionRequest, error)
	ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.PermissionRequest, error)
	ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.PermissionRequest, error)
}

type permissionService struct {
	flow   *ApprovalFlow
	repo   repository.PermissionRepository
	policy *config.Policy
}

func NewPermissionService(flow *ApprovalFlow, repo repository.PermissionRepository, policy *config.Policy) PermissionService {
	return &permissionService{flow: flow, repo: repo, policy: policy}
}

func (s *permissionService) Submit(ctx context.Context, employee *models.User, req *models.CreatePermissionRequest) (*models.PermissionRequest, error) {
	minutes, err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if limit := s.policy.Permission.MaxMinutes; limit > 0 && minutes > limit {
		return nil, fmt.Errorf("%w: a permission may last at most %d minutes", pkg.ErrBadRequest, limit)
	}

	day, _ := tz.ParseDate(req.Date)
	monthStart, monthEnd := tz.MonthBounds(day, time.UTC)

	p := &models.PermissionRequest{
		Date:      req.Date,
		StartTime: canonicalClock(req.StartTime),
		EndTime:   canonicalClock(req.EndTime),
		Minutes:   minutes,
		Reason:    req.Reason,
	}

	err = s.flow.submit(ctx, employee, workflow.KindPermission, func(tx *sql.Tx, base models.RequestBase) (string, error) {
		perms := repository.NewSQLitePermissionRepo(tx)

		if limit := s.policy.Permission.MaxPerMonth; limit > 0 {
			n, err := perms.CountActive(ctx, employee.ID, monthStart, monthEnd)
			if err != nil {
				return "", err
			}
			if n >= limit {
				return "", fmt.Errorf("%w: monthly permission limit of %d reached", pkg.ErrBadRequest, limit)
			}
		}

		overlap, err := perms.HasOverlap(ctx, employee.ID, p.Date, p.StartTime, p.EndTime)
		if err != nil {
			return "", err
		}
		if overlap {
			return "", fmt.Errorf("%w: the time overlaps another pending or approved permission", pkg.ErrConflict)
		}

		p.RequestBase = base
		if err := perms.Create(ctx, p); err != nil {
			return "", err
		}
		return p.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *permissionService) Get(ctx context.Context, viewer *models.User, id string) (*models.PermissionRequest, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(viewer, &p.RequestBase); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *permissionService) ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.PermissionRequest, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByEmployee(ctx, viewer.ID, filter)
	return orEmpty(list), err
}

func (s *permissionService) ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.PermissionRequest, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.repo.ListAwaiting(ctx, viewer.ID, viewer.IsAdmin(), filter)
	return orEmpty(list), err
}

// canonicalClock rewrites a validated clock value as zero-padded "HH:MM"
// so stored times compare lexically.
func canonicalClock(s string) string {
	m, err := tz.ParseClock(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
