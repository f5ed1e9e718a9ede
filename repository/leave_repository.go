package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// LeaveRepository stores leave requests.
type LeaveRepository interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, filter models.RequestFilter) ([]models.LeaveRequest, error)
	ListAwaiting(ctx context.Context, approverID string, isAdmin bool, filter models.RequestFilter) ([]models.LeaveRequest, error)
	// HasOverlap reports whether a pending or approved leave of employeeID
	// intersects [from, to].
	HasOverlap(ctx context.Context, employeeID, from, to string) (bool, error)
	// SumDays totals the days of one leave type in a year, split into
	// approved and pending.
	SumDays(ctx context.Context, employeeID, leaveType string, year int) (approved, pending float64, err error)
	// ListApproved returns approved leaves intersecting [from, to] for the
	// given employees.
	ListApproved(ctx context.Context, employeeIDs []string, from, to string) ([]models.LeaveRequest, error)
}
