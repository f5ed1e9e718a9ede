package repository

import (
	"context"
	"time"

	"github.com/akinalp/workdesk/models"
)

// AttendanceRepository stores one record per employee per work date.
type AttendanceRepository interface {
	// Create inserts a new day; a second record for the same day is
	// pkg.ErrAlreadyExists.
	Create(ctx context.Context, a *models.Attendance) error
	GetByDate(ctx context.Context, employeeID, workDate string) (*models.Attendance, error)
	// CheckOut closes an open record. It returns pkg.ErrConflict when the
	// record was already closed.
	CheckOut(ctx context.Context, id string, at time.Time, workedMinutes int, status models.AttendanceStatus) error
	// Upsert writes a corrected record for (EmployeeID, WorkDate).
	Upsert(ctx context.Context, a *models.Attendance) error
	ListByEmployee(ctx context.Context, employeeID, from, to string) ([]models.Attendance, error)
	ListByEmployees(ctx context.Context, employeeIDs []string, from, to string) ([]models.Attendance, error)
	// ListOpen returns the records of workDate still missing a check-out
	// whose owner has not been reminded yet.
	ListOpen(ctx context.Context, workDate string) ([]models.Attendance, error)
	MarkCheckoutReminded(ctx context.Context, id string) error
}
