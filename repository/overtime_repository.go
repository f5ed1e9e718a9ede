package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// OvertimeRepository stores overtime claims.
type OvertimeRepository interface {
	Create(ctx context.Context, o *models.OvertimeRequest) error
	GetByID(ctx context.Context, id string) (*models.OvertimeRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, filter models.RequestFilter) ([]models.OvertimeRequest, error)
	ListAwaiting(ctx context.Context, approverID string, isAdmin bool, filter models.RequestFilter) ([]models.OvertimeRequest, error)
	// ExistsActive reports whether a pending or approved claim exists for workDate.
	ExistsActive(ctx context.Context, employeeID, workDate string) (bool, error)
	// ApprovedHours sums approved hours per employee over [from, to].
	ApprovedHours(ctx context.Context, employeeIDs []string, from, to string) (map[string]float64, error)
}
