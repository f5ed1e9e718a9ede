package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// PermissionRepository stores short time-off requests.
type PermissionRepository interface {
	Create(ctx context.Context, p *models.PermissionRequest) error
	GetByID(ctx context.Context, id string) (*models.PermissionRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, filter models.RequestFilter) ([]models.PermissionRequest, error)
	ListAwaiting(ctx context.Context, approverID string, isAdmin bool, filter models.RequestFilter) ([]models.PermissionRequest, error)
	// CountActive counts pending and approved requests dated within [from, to].
	CountActive(ctx context.Context, employeeID, from, to string) (int, error)
	// HasOverlap reports whether an active request on date intersects the
	// clock window [start, end).
	HasOverlap(ctx context.Context, employeeID, date, start, end string) (bool, error)
}
