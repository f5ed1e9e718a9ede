package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/workflow"
)

type sqliteLeaveRepo struct {
	db    database.TxQuerier
	store requestStore[models.LeaveRequest]
}

func NewSQLiteLeaveRepo(db database.TxQuerier) LeaveRepository {
	return &sqliteLeaveRepo{
		db: db,
		store: requestStore[models.LeaveRequest]{
			db:      db,
			kind:    workflow.KindLeave,
			columns: "r.leave_type, r.start_date, r.end_date, r.half_day, r.days, r.reason",
			scan:    scanLeave,
		},
	}
}

func scanLeave(row scanner) (*models.LeaveRequest, error) {
	l := &models.LeaveRequest{}
	dest := append(baseDest(&l.RequestBase), &l.LeaveType, &l.StartDate, &l.EndDate, &l.HalfDay, &l.Days, &l.Reason)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *sqliteLeaveRepo) Create(ctx context.Context, l *models.LeaveRequest) error {
	l.ID = uuid.NewString()
	query := `
		INSERT INTO leave_requests (id, employee_id, team_lead_id, manager_id, status,
			leave_type, start_date, end_date, half_day, days, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		l.ID, l.EmployeeID, l.TeamLeadID, l.ManagerID, l.Status,
		l.LeaveType, l.StartDate, l.EndDate, boolToInt(l.HalfDay), l.Days, l.Reason,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

func (r *sqliteLeaveRepo) GetByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return r.store.get(ctx, id)
}

func (r *sqliteLeaveRepo) ListByEmployee(ctx context.Context, employeeID string, f models.RequestFilter) ([]models.LeaveRequest, error) {
	return r.store.listByEmployee(ctx, employeeID, f)
}

func (r *sqliteLeaveRepo) ListAwaiting(ctx context.Context, approverID string, isAdmin bool, f models.RequestFilter) ([]models.LeaveRequest, error) {
	return r.store.listAwaiting(ctx, approverID, isAdmin, f)
}

func (r *sqliteLeaveRepo) HasOverlap(ctx context.Context, employeeID, from, to string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = ? AND status IN (?, ?, ?) AND start_date <= ? AND end_date >= ?
		)`
	args := append([]any{employeeID}, activeStatuses...)
	args = append(args, to, from)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return exists, nil
}

func (r *sqliteLeaveRepo) SumDays(ctx context.Context, employeeID, leaveType string, year int) (float64, float64, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = ? THEN days END), 0),
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN days END), 0)
		FROM leave_requests
		WHERE employee_id = ? AND leave_type = ? AND substr(start_date, 1, 4) = ?`

	var approved, pending float64
	err := r.db.QueryRowContext(ctx, query,
		workflow.StatusApproved, workflow.StatusPendingTeamLead, workflow.StatusPendingManager,
		employeeID, leaveType, fmt.Sprintf("%04d", year),
	).Scan(&approved, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum leave days: %w", err)
	}
	return approved, pending, nil
}

func (r *sqliteLeaveRepo) ListApproved(ctx context.Context, employeeIDs []string, from, to string) ([]models.LeaveRequest, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	where := []string{"r.employee_id IN (" + placeholders(len(employeeIDs)) + ")"}
	f := models.RequestFilter{Status: workflow.StatusApproved, From: from, To: to}
	return r.store.list(ctx, where, stringArgs(employeeIDs), f)
}
