package repository

import (
	"context"
	"time"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/workflow"
)

// ApprovalRepository is the kind-independent side of the request tables:
// status transitions, the audit trail and the reminder bookkeeping.
type ApprovalRepository interface {
	GetRecord(ctx context.Context, kind workflow.Kind, id string) (*models.ApprovalRecord, error)
	// UpdateStatus moves a request from one status to another. It returns
	// pkg.ErrConflict when the request is no longer in status from.
	UpdateStatus(ctx context.Context, kind workflow.Kind, id string, from, to workflow.Status) error
	AddAction(ctx context.Context, action *models.ApprovalAction) error
	ListActions(ctx context.Context, kind workflow.Kind, id string) ([]models.ApprovalAction, error)
	// ListStale returns pending requests of kind not touched or reminded since before.
	ListStale(ctx context.Context, kind workflow.Kind, before time.Time) ([]models.ApprovalRecord, error)
	MarkReminded(ctx context.Context, kind workflow.Kind, id string, at time.Time) error
	// CountAwaiting counts, per kind, the pending requests approverID can act on.
	CountAwaiting(ctx context.Context, approverID string, isAdmin bool) (models.PendingCounts, error)
	// CountPendingByEmployee counts, per kind, the employee's own pending requests.
	CountPendingByEmployee(ctx context.Context, employeeID string) (models.PendingCounts, error)
}
