package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/workflow"
)

type sqlitePermissionRepo struct {
	db    database.TxQuerier
	store requestStore[models.PermissionRequest]
}

func NewSQLitePermissionRepo(db database.TxQuerier) PermissionRepository {
	return &sqlitePermissionRepo{
		db: db,
		store: requestStore[models.PermissionRequest]{
			db:      db,
			kind:    workflow.KindPermission,
			columns: "r.permission_date, r.start_time, r.end_time, r.minutes, r.reason",
			scan:    scanPermission,
		},
	}
}

func scanPermission(row scanner) (*models.PermissionRequest, error) {
	p := &models.PermissionRequest{}
	dest := append(baseDest(&p.RequestBase), &p.Date, &p.StartTime, &p.EndTime, &p.Minutes, &p.Reason)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *sqlitePermissionRepo) Create(ctx context.Context, p *models.PermissionRequest) error {
	p.ID = uuid.NewString()
	query := `
		INSERT INTO permission_requests (id, employee_id, team_lead_id, manager_id, status,
			permission_date, start_time, end_time, minutes, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.EmployeeID, p.TeamLeadID, p.ManagerID, p.Status,
		p.Date, p.StartTime, p.EndTime, p.Minutes, p.Reason,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create permission request: %w", err)
	}
	return nil
}

func (r *sqlitePermissionRepo) GetByID(ctx context.Context, id string) (*models.PermissionRequest, error) {
	return r.store.get(ctx, id)
}

func (r *sqlitePermissionRepo) ListByEmployee(ctx context.Context, employeeID string, f models.RequestFilter) ([]models.PermissionRequest, error) {
	return r.store.listByEmployee(ctx, employeeID, f)
}

func (r *sqlitePermissionRepo) ListAwaiting(ctx context.Context, approverID string, isAdmin bool, f models.RequestFilter) ([]models.PermissionRequest, error) {
	return r.store.listAwaiting(ctx, approverID, isAdmin, f)
}

func (r *sqlitePermissionRepo) CountActive(ctx context.Context, employeeID, from, to string) (int, error) {
	query := `
		SELECT COUNT(*) FROM permission_requests
		WHERE employee_id = ? AND status IN (?, ?, ?) AND permission_date BETWEEN ? AND ?`
	args := append([]any{employeeID}, activeStatuses...)
	args = append(args, from, to)

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count permission requests: %w", err)
	}
	return n, nil
}

func (r *sqlitePermissionRepo) HasOverlap(ctx context.Context, employeeID, date, start, end string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM permission_requests
			WHERE employee_id = ? AND status IN (?, ?, ?) AND permission_date = ?
				AND start_time < ? AND end_time > ?
		)`
	args := append([]any{employeeID}, activeStatuses...)
	args = append(args, date, end, start)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check permission overlap: %w", err)
	}
	return exists, nil
}
