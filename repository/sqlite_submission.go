package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/workflow"
)

type sqliteSubmissionRepo struct {
	db    database.TxQuerier
	store requestStore[models.WorkSubmission]
}

func NewSQLiteSubmissionRepo(db database.TxQuerier) SubmissionRepository {
	return &sqliteSubmissionRepo{
		db: db,
		store: requestStore[models.WorkSubmission]{
			db:      db,
			kind:    workflow.KindSubmission,
			columns: "r.title, r.description, r.link, r.work_date",
			scan:    scanSubmission,
		},
	}
}

func scanSubmission(row scanner) (*models.WorkSubmission, error) {
	s := &models.WorkSubmission{}
	dest := append(baseDest(&s.RequestBase), &s.Title, &s.Description, &s.Link, &s.WorkDate)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sqliteSubmissionRepo) Create(ctx context.Context, s *models.WorkSubmission) error {
	s.ID = uuid.NewString()
	query := `
		INSERT INTO work_submissions (id, employee_id, team_lead_id, manager_id, status,
			title, description, link, work_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.EmployeeID, s.TeamLeadID, s.ManagerID, s.Status,
		s.Title, s.Description, s.Link, s.WorkDate,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create work submission: %w", err)
	}
	return nil
}

func (r *sqliteSubmissionRepo) GetByID(ctx context.Context, id string) (*models.WorkSubmission, error) {
	return r.store.get(ctx, id)
}

func (r *sqliteSubmissionRepo) ListByEmployee(ctx context.Context, employeeID string, f models.RequestFilter) ([]models.WorkSubmission, error) {
	return r.store.listByEmployee(ctx, employeeID, f)
}

func (r *sqliteSubmissionRepo) ListAwaiting(ctx context.Context, approverID string, isAdmin bool, f models.RequestFilter) ([]models.WorkSubmission, error) {
	return r.store.listAwaiting(ctx, approverID, isAdmin, f)
}
