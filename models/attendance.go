package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akinalp/workdesk/pkg/tz"
)

// AttendanceStatus classifies a day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceHalfDay AttendanceStatus = "half_day"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceHalfDay, AttendanceAbsent:
		return true
	}
	return false
}

// Attendance is one employee-day. WorkDate is the local calendar date.
type Attendance struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	EmployeeName     string           `json:"employee_name,omitempty"`
	WorkDate         string           `json:"work_date"`
	CheckIn          *time.Time       `json:"check_in"`
	CheckOut         *time.Time       `json:"check_out"`
	Status           AttendanceStatus `json:"status"`
	WorkedMinutes    int              `json:"worked_minutes"`
	Note             string           `json:"note"`
	CorrectedBy      *string          `json:"corrected_by"`
	CheckoutReminded bool             `json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsOpen reports whether the employee checked in but not out.
func (a *Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// CheckInRequest carries an optional note.
type CheckInRequest struct {
	Note string `json:"note"`
}

// CorrectionRequest overwrites a day's record. Times are local "HH:MM".
type CorrectionRequest struct {
	CheckIn  string           `json:"check_in"`
	CheckOut string           `json:"check_out"`
	Status   AttendanceStatus `json:"status"`
	Note     string           `json:"note"`
}

// Validate checks the clock values and their order.
func (r *CorrectionRequest) Validate() error {
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("invalid attendance status %q", r.Status)
	}
	var in, out int
	var err error
	if r.CheckIn != "" {
		if in, err = tz.ParseClock(r.CheckIn); err != nil {
			return fmt.Errorf("check_in must be HH:MM")
		}
	}
	if r.CheckOut != "" {
		if r.CheckIn == "" {
			return fmt.Errorf("check_out requires check_in")
		}
		if out, err = tz.ParseClock(r.CheckOut); err != nil {
			return fmt.Errorf("check_out must be HH:MM")
		}
		if out <= in {
			return fmt.Errorf("check_out must be after check_in")
		}
	}
	if r.CheckIn == "" && r.Status != AttendanceAbsent {
		return fmt.Errorf("check_in is required unless status is absent")
	}
	r.Note = strings.TrimSpace(r.Note)
	if utf8.RuneCountInString(r.Note) > 500 {
		return fmt.Errorf("note must be at most 500 characters")
	}
	return nil
}

// AttendanceSummary aggregates one employee over [From, To].
type AttendanceSummary struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	Workdays      int     `json:"workdays"`
	Present       int     `json:"present"`
	Late          int     `json:"late"`
	HalfDays      int     `json:"half_days"`
	Absent        int     `json:"absent"`
	LeaveDays     float64 `json:"leave_days"`
	WorkedMinutes int     `json:"worked_minutes"`
	OvertimeHours float64 `json:"overtime_hours"`
}
