package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/workflow"
)

// SubmissionService handles work sent up for review. Reviewer feedback
// lives in the approval comments.
type SubmissionService interface {
	Submit(ctx context.Context, employee *models.User, req *models.CreateSubmissionRequest) (*models.WorkSubmission, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.WorkSubmission, error)
	ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.WorkSubmission, error)
	ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.WorkSubmission, error)
}

type submissionService struct {
	flow *ApprovalFlow
	repo repository.SubmissionRepository
}

func NewSubmissionService(flow *ApprovalFlow, repo repository.SubmissionRepository) SubmissionService {
	return &submissionService{flow: flow, repo: repo}
}

func (s *submissionService) Submit(ctx context.Context, employee *models.User, req *models.CreateSubmissionRequest) (*models.WorkSubmission, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	sub := &models.WorkSubmission{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		WorkDate:    req.WorkDate,
	}

	err := s.flow.submit(ctx, employee, workflow.KindSubmission, func(tx *sql.Tx, base models.RequestBase) (string, error) {
		sub.RequestBase = base
		if err := repository.NewSQLiteSubmissionRepo(tx).Create(ctx, sub); err != nil {
			return "", err
		}
		return sub.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *submissionService) Get(ctx context.Context, viewer *models.User, id string) (*models.WorkSubmission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRequest(viewer, &sub.RequestBase); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *submissionService) ListMine(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.WorkSubmission, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByEmployee(ctx, viewer.ID, filter)
	return orEmpty(list), err
}

func (s *submissionService) ListAwaiting(ctx context.Context, viewer *models.User, filter models.RequestFilter) ([]models.WorkSubmission, error) {
	if err := normalizeFilter(&filter); err != nil {
		return nil, err
	}
	list, err := s.repo.ListAwaiting(ctx, viewer.ID, viewer.IsAdmin(), filter)
	return orEmpty(list), err
}
