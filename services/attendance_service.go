package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/repository"
)

// maxRangeDays bounds the date ranges listings and reports accept.
const maxRangeDays = 366

// AttendanceService records check-ins and check-outs. Days are local
// calendar days in the configured time zone.
type AttendanceService interface {
	CheckIn(ctx context.Context, employee *models.User, req *models.CheckInRequest) (*models.Attendance, error)
	CheckOut(ctx context.Context, employee *models.User) (*models.Attendance, error)
	// Today returns the caller's record for today, nil when there is none.
	Today(ctx context.Context, employeeID string) (*models.Attendance, error)
	List(ctx context.Context, viewer *models.User, employeeID, from, to string) ([]models.Attendance, error)
	// Correct overwrites an employee's record for one day.
	Correct(ctx context.Context, actor *models.User, employeeID, day string, req *models.CorrectionRequest) (*models.Attendance, error)
}

type attendanceService struct {
	repo      repository.AttendanceRepository
	userRepo  repository.UserRepository
	summaries SummaryInvalidator
	policy    *config.Policy
	loc       *time.Location
	now       func() time.Time
}

func NewAttendanceService(
	repo repository.AttendanceRepository,
	userRepo repository.UserRepository,
	summaries SummaryInvalidator,
	policy *config.Policy,
	loc *time.Location,
) AttendanceService {
	return &attendanceService{
		repo:      repo,
		userRepo:  userRepo,
		summaries: summaries,
		policy:    policy,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *attendanceService) CheckIn(ctx context.Context, employee *models.User, req *models.CheckInRequest) (*models.Attendance, error) {
	note := strings.TrimSpace(req.Note)
	if len([]rune(note)) > 500 {
		return nil, fmt.Errorf("%w: note must be at most 500 characters", pkg.ErrBadRequest)
	}

	now := s.now().UTC().Truncate(time.Second)
	today := tz.Today(s.loc, now)

	existing, err := s.repo.GetByDate(ctx, employee.ID, today)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already checked in today", pkg.ErrConflict)
	}

	status := models.AttendancePresent
	if minuteOfDay(now, s.loc) > s.policy.StartMinutes()+s.policy.Workday.LateGraceMinutes {
		status = models.AttendanceLate
	}

	a := &models.Attendance{
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName,
		WorkDate:     today,
		CheckIn:      &now,
		Status:       status,
		Note:         note,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: already checked in today", pkg.ErrConflict)
		}
		return nil, err
	}

	log.Debug().Str("component", "attendance").Str("employee_id", employee.ID).Str("status", string(status)).Msg("checked in")
	s.summaries.InvalidateEmployee(ctx, employee.ID)
	return a, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, employee *models.User) (*models.Attendance, error) {
	now := s.now().UTC().Truncate(time.Second)
	today := tz.Today(s.loc, now)

	a, err := s.repo.GetByDate(ctx, employee.ID, today)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: you have not checked in today", pkg.ErrBadRequest)
		}
		return nil, err
	}
	if !a.IsOpen() {
		return nil, fmt.Errorf("%w: already checked out today", pkg.ErrConflict)
	}

	worked := int(now.Sub(*a.CheckIn).Minutes())
	status := a.Status
	if worked < s.halfDayMinutes() {
		status = models.AttendanceHalfDay
	}

	if err := s.repo.CheckOut(ctx, a.ID, now, worked, status); err != nil {
		return nil, err
	}
	a.CheckOut = &now
	a.WorkedMinutes = worked
	a.Status = status

	s.summaries.InvalidateEmployee(ctx, employee.ID)
	return a, nil
}

func (s *attendanceService) Today(ctx context.Context, employeeID string) (*models.Attendance, error) {
	a, err := s.repo.GetByDate(ctx, employeeID, tz.Today(s.loc, s.now()))
	if errors.Is(err, pkg.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

func (s *attendanceService) List(ctx context.Context, viewer *models.User, employeeID, from, to string) ([]models.Attendance, error) {
	if err := authorizeEmployeeReport(ctx, s.userRepo, viewer, employeeID); err != nil {
		return nil, err
	}
	from, to, err := resolveRange(from, to, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByEmployee(ctx, employeeID, from, to)
	return orEmpty(list), err
}

func (s *attendanceService) Correct(ctx context.Context, actor *models.User, employeeID, day string, req *models.CorrectionRequest) (*models.Attendance, error) {
	if _, err := tz.ParseDate(day); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", pkg.ErrBadRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if day > tz.Today(s.loc, s.now()) {
		return nil, fmt.Errorf("%w: cannot correct a future date", pkg.ErrBadRequest)
	}

	employee, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	a := &models.Attendance{
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName,
		WorkDate:     day,
		Note:         req.Note,
		CorrectedBy:  &actor.ID,
	}

	var inMin, outMin int
	if req.CheckIn != "" {
		inMin, _ = tz.ParseClock(req.CheckIn)
		in, err := tz.At(day, inMin, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
		}
		in = in.UTC()
		a.CheckIn = &in
	}
	if req.CheckOut != "" {
		outMin, _ = tz.ParseClock(req.CheckOut)
		out, err := tz.At(day, outMin, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
		}
		out = out.UTC()
		a.CheckOut = &out
		a.WorkedMinutes = int(out.Sub(*a.CheckIn).Minutes())
	}

	a.Status = req.Status
	if a.Status == "" {
		a.Status = s.classify(a.CheckIn != nil, inMin, a.CheckOut != nil, a.WorkedMinutes)
	}

	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}

	log.Info().Str("component", "attendance").Str("employee_id", employeeID).Str("date", day).
		Str("by", actor.ID).Msg("attendance corrected")
	s.summaries.InvalidateEmployee(ctx, employeeID)
	return a, nil
}

// classify derives the status of a corrected day the same way check-in
// and check-out would have.
func (s *attendanceService) classify(checkedIn bool, inMinute int, checkedOut bool, worked int) models.AttendanceStatus {
	switch {
	case !checkedIn:
		return models.AttendanceAbsent
	case checkedOut && worked < s.halfDayMinutes():
		return models.AttendanceHalfDay
	case inMinute > s.policy.StartMinutes()+s.policy.Workday.LateGraceMinutes:
		return models.AttendanceLate
	default:
		return models.AttendancePresent
	}
}

func (s *attendanceService) halfDayMinutes() int {
	if s.policy.Workday.HalfDayMinutes > 0 {
		return s.policy.Workday.HalfDayMinutes
	}
	return s.policy.ScheduledMinutes() / 2
}

func minuteOfDay(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

// resolveRange defaults an empty range to the current month and checks
// the bounds.
func resolveRange(from, to string, now time.Time, loc *time.Location) (string, string, error) {
	monthStart, monthEnd := tz.MonthBounds(now, loc)
	if from == "" {
		from = monthStart
	}
	if to == "" {
		to = monthEnd
	}
	start, err := tz.ParseDate(from)
	if err != nil {
		return "", "", fmt.Errorf("%w: from must be YYYY-MM-DD", pkg.ErrBadRequest)
	}
	end, err := tz.ParseDate(to)
	if err != nil {
		return "", "", fmt.Errorf("%w: to must be YYYY-MM-DD", pkg.ErrBadRequest)
	}
	if end.Before(start) {
		return "", "", fmt.Errorf("%w: to must not be before from", pkg.ErrBadRequest)
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return "", "", fmt.Errorf("%w: range must not exceed %d days", pkg.ErrBadRequest, maxRangeDays)
	}
	return from, to, nil
}

// authorizeEmployeeReport allows the employee, their team lead or manager,
// and holders of reports.read.
func authorizeEmployeeReport(ctx context.Context, users repository.UserRepository, viewer *models.User, employeeID string) error {
	if viewer.ID == employeeID || viewer.Role.Permissions().Has(models.PermReadReports) {
		return nil
	}
	employee, err := users.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if models.Deref(employee.TeamLeadID) == viewer.ID || models.Deref(employee.ManagerID) == viewer.ID {
		return nil
	}
	return fmt.Errorf("%w: you cannot view this employee's attendance", pkg.ErrForbidden)
}
