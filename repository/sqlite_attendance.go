package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
)

const attendanceColumns = `a.id, a.employee_id, COALESCE(u.full_name, ''), a.work_date, a.check_in, a.check_out,
	a.status, a.worked_minutes, a.note, a.corrected_by, a.checkout_reminded, a.created_at, a.updated_at`

const attendanceFrom = ` FROM attendance a LEFT JOIN users u ON u.id = a.employee_id`

type sqliteAttendanceRepo struct {
	db database.TxQuerier
}

func NewSQLiteAttendanceRepo(db database.TxQuerier) AttendanceRepository {
	return &sqliteAttendanceRepo{db: db}
}

func scanAttendance(row scanner) (*models.Attendance, error) {
	a := &models.Attendance{}
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.EmployeeName, &a.WorkDate, &a.CheckIn, &a.CheckOut,
		&a.Status, &a.WorkedMinutes, &a.Note, &a.CorrectedBy, &a.CheckoutReminded, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *sqliteAttendanceRepo) Create(ctx context.Context, a *models.Attendance) error {
	a.ID = uuid.NewString()
	query := `
		INSERT INTO attendance (id, employee_id, work_date, check_in, check_out, status, worked_minutes, note, corrected_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.EmployeeID, a.WorkDate, database.NullTimestamp(a.CheckIn), database.NullTimestamp(a.CheckOut),
		a.Status, a.WorkedMinutes, a.Note, a.CorrectedBy,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: already checked in on %s", pkg.ErrAlreadyExists, a.WorkDate)
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	return nil
}

func (r *sqliteAttendanceRepo) GetByDate(ctx context.Context, employeeID, workDate string) (*models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + ` WHERE a.employee_id = ? AND a.work_date = ?`

	a, err := scanAttendance(r.db.QueryRowContext(ctx, query, employeeID, workDate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

func (r *sqliteAttendanceRepo) CheckOut(ctx context.Context, id string, at time.Time, workedMinutes int, status models.AttendanceStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE attendance SET check_out = ?, worked_minutes = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND check_out IS NULL`,
		database.Timestamp(at), workedMinutes, status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to check out: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: already checked out", pkg.ErrConflict)
	}
	return nil
}

func (r *sqliteAttendanceRepo) Upsert(ctx context.Context, a *models.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `
		INSERT INTO attendance (id, employee_id, work_date, check_in, check_out, status, worked_minutes, note, corrected_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, work_date) DO UPDATE SET
			check_in = excluded.check_in, check_out = excluded.check_out, status = excluded.status,
			worked_minutes = excluded.worked_minutes, note = excluded.note,
			corrected_by = excluded.corrected_by, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.EmployeeID, a.WorkDate, database.NullTimestamp(a.CheckIn), database.NullTimestamp(a.CheckOut),
		a.Status, a.WorkedMinutes, a.Note, a.CorrectedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

func (r *sqliteAttendanceRepo) ListByEmployee(ctx context.Context, employeeID, from, to string) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id = ? AND a.work_date BETWEEN ? AND ?
		ORDER BY a.work_date`
	return r.list(ctx, query, employeeID, from, to)
}

func (r *sqliteAttendanceRepo) ListByEmployees(ctx context.Context, employeeIDs []string, from, to string) ([]models.Attendance, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.employee_id IN (` + placeholders(len(employeeIDs)) + `) AND a.work_date BETWEEN ? AND ?
		ORDER BY u.full_name COLLATE NOCASE, a.work_date`
	args := append(stringArgs(employeeIDs), from, to)
	return r.list(ctx, query, args...)
}

func (r *sqliteAttendanceRepo) ListOpen(ctx context.Context, workDate string) ([]models.Attendance, error) {
	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE a.work_date = ? AND a.check_in IS NOT NULL AND a.check_out IS NULL AND a.checkout_reminded = 0`
	return r.list(ctx, query, workDate)
}

func (r *sqliteAttendanceRepo) MarkCheckoutReminded(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE attendance SET checkout_reminded = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark checkout reminder: %w", err)
	}
	return nil
}

func (r *sqliteAttendanceRepo) list(ctx context.Context, query string, args ...any) ([]models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var out []models.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
