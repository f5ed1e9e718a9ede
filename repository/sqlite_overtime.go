package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/workflow"
)

type sqliteOvertimeRepo struct {
	db    database.TxQuerier
	store requestStore[models.OvertimeRequest]
}

func NewSQLiteOvertimeRepo(db database.TxQuerier) OvertimeRepository {
	return &sqliteOvertimeRepo{
		db: db,
		store: requestStore[models.OvertimeRequest]{
			db:      db,
			kind:    workflow.KindOvertime,
			columns: "r.work_date, r.hours, r.reason",
			scan:    scanOvertime,
		},
	}
}

func scanOvertime(row scanner) (*models.OvertimeRequest, error) {
	o := &models.OvertimeRequest{}
	dest := append(baseDest(&o.RequestBase), &o.WorkDate, &o.Hours, &o.Reason)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *sqliteOvertimeRepo) Create(ctx context.Context, o *models.OvertimeRequest) error {
	o.ID = uuid.NewString()
	query := `
		INSERT INTO overtime_requests (id, employee_id, team_lead_id, manager_id, status, work_date, hours, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		o.ID, o.EmployeeID, o.TeamLeadID, o.ManagerID, o.Status, o.WorkDate, o.Hours, o.Reason,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create overtime request: %w", err)
	}
	return nil
}

func (r *sqliteOvertimeRepo) GetByID(ctx context.Context, id string) (*models.OvertimeRequest, error) {
	return r.store.get(ctx, id)
}

func (r *sqliteOvertimeRepo) ListByEmployee(ctx context.Context, employeeID string, f models.RequestFilter) ([]models.OvertimeRequest, error) {
	return r.store.listByEmployee(ctx, employeeID, f)
}

func (r *sqliteOvertimeRepo) ListAwaiting(ctx context.Context, approverID string, isAdmin bool, f models.RequestFilter) ([]models.OvertimeRequest, error) {
	return r.store.listAwaiting(ctx, approverID, isAdmin, f)
}

func (r *sqliteOvertimeRepo) ExistsActive(ctx context.Context, employeeID, workDate string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM overtime_requests
			WHERE employee_id = ? AND status IN (?, ?, ?) AND work_date = ?
		)`
	args := append([]any{employeeID}, activeStatuses...)
	args = append(args, workDate)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overtime: %w", err)
	}
	return exists, nil
}

func (r *sqliteOvertimeRepo) ApprovedHours(ctx context.Context, employeeIDs []string, from, to string) (map[string]float64, error) {
	out := make(map[string]float64, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT employee_id, SUM(hours) FROM overtime_requests
		WHERE employee_id IN (` + placeholders(len(employeeIDs)) + `) AND status = ? AND work_date BETWEEN ? AND ?
		GROUP BY employee_id`
	args := append(stringArgs(employeeIDs), workflow.StatusApproved, from, to)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum overtime: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var hours float64
		if err := rows.Scan(&id, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan overtime sum: %w", err)
		}
		out[id] = hours
	}
	return out, rows.Err()
}
