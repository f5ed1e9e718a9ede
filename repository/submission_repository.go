package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// SubmissionRepository stores work submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.WorkSubmission) error
	GetByID(ctx context.Context, id string) (*models.WorkSubmission, error)
	ListByEmployee(ctx context.Context, employeeID string, filter models.RequestFilter) ([]models.WorkSubmission, error)
	ListAwaiting(ctx context.Context, approverID string, isAdmin bool, filter models.RequestFilter) ([]models.WorkSubmission, error)
}
