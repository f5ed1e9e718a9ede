package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/cache"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/repository"
)

const summaryKeyPrefix = "summary:"

// ReportService builds attendance summaries and exports. Summaries are
// cached per employee and range; anything that changes an employee's
// attendance, approved leave or approved overtime drops their entries.
type ReportService interface {
	Summary(ctx context.Context, viewer *models.User, employeeID, from, to string) (*models.AttendanceSummary, error)
	// TeamSummary covers the viewer's direct reports, or every active
	// employee for holders of reports.read.
	TeamSummary(ctx context.Context, viewer *models.User, from, to string) ([]models.AttendanceSummary, error)
	// Export writes an .xlsx workbook of the same population as TeamSummary.
	Export(ctx context.Context, viewer *models.User, from, to string, w io.Writer) error
	InvalidateEmployee(ctx context.Context, employeeID string)
}

type reportService struct {
	attendanceRepo repository.AttendanceRepository
	leaveRepo      repository.LeaveRepository
	overtimeRepo   repository.OvertimeRepository
	userRepo       repository.UserRepository
	store          cache.Store
	ttl            time.Duration
	metrics        *metrics.Registry
	policy         *config.Policy
	loc            *time.Location
	now            func() time.Time
}

func NewReportService(
	attendanceRepo repository.AttendanceRepository,
	leaveRepo repository.LeaveRepository,
	overtimeRepo repository.OvertimeRepository,
	userRepo repository.UserRepository,
	store cache.Store,
	ttl time.Duration,
	reg *metrics.Registry,
	policy *config.Policy,
	loc *time.Location,
) ReportService {
	return &reportService{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		overtimeRepo:   overtimeRepo,
		userRepo:       userRepo,
		store:          store,
		ttl:            ttl,
		metrics:        reg,
		policy:         policy,
		loc:            loc,
		now:            time.Now,
	}
}

func (s *reportService) Summary(ctx context.Context, viewer *models.User, employeeID, from, to string) (*models.AttendanceSummary, error) {
	if err := authorizeEmployeeReport(ctx, s.userRepo, viewer, employeeID); err != nil {
		return nil, err
	}
	from, to, err := resolveRange(from, to, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	employee, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summaries(ctx, []models.User{*employee}, from, to)
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (s *reportService) TeamSummary(ctx context.Context, viewer *models.User, from, to string) ([]models.AttendanceSummary, error) {
	from, to, err := resolveRange(from, to, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	team, err := s.population(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, team, from, to)
}

func (s *reportService) population(ctx context.Context, viewer *models.User) ([]models.User, error) {
	if viewer.Role.Permissions().Has(models.PermReadReports) {
		active := true
		return s.userRepo.List(ctx, models.UserFilter{Active: &active})
	}
	return s.userRepo.ListReports(ctx, viewer.ID)
}

// summaries serves what it can from the cache and computes the rest in
// one batch. The result follows the order of employees.
func (s *reportService) summaries(ctx context.Context, employees []models.User, from, to string) ([]models.AttendanceSummary, error) {
	out := make([]models.AttendanceSummary, len(employees))
	var missing []models.User
	missingAt := make(map[string]int)

	for i, e := range employees {
		var cached models.AttendanceSummary
		hit, err := s.store.GetJSON(ctx, summaryKey(e.ID, from, to), &cached)
		if err != nil {
			log.Warn().Str("component", "reports").Err(err).Msg("summary cache read failed")
		}
		s.metrics.CacheLookup(hit)
		if hit {
			out[i] = cached
			continue
		}
		missing = append(missing, e)
		missingAt[e.ID] = i
	}

	if len(missing) == 0 {
		return out, nil
	}

	computed, err := s.compute(ctx, missing, from, to)
	if err != nil {
		return nil, err
	}
	for _, sum := range computed {
		out[missingAt[sum.EmployeeID]] = sum
		if err := s.store.SetJSON(ctx, summaryKey(sum.EmployeeID, from, to), sum, s.ttl); err != nil {
			log.Warn().Str("component", "reports").Err(err).Msg("summary cache write failed")
		}
	}
	return out, nil
}

// compute aggregates attendance, approved leave and approved overtime.
// A workday counts as absent when it has no record (or an absent record),
// is not covered by approved leave, and is already over.
func (s *reportService) compute(ctx context.Context, employees []models.User, from, to string) ([]models.AttendanceSummary, error) {
	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}

	records, err := s.attendanceRepo.ListByEmployees(ctx, ids, from, to)
	if err != nil {
		return nil, err
	}
	leaves, err := s.leaveRepo.ListApproved(ctx, ids, from, to)
	if err != nil {
		return nil, err
	}
	overtime, err := s.overtimeRepo.ApprovedHours(ctx, ids, from, to)
	if err != nil {
		return nil, err
	}
	workdays, err := tz.WorkdaysBetween(from, to, s.policy.WeekendDays())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	today := tz.Today(s.loc, s.now())

	recordsBy := make(map[string]map[string]models.Attendance, len(employees))
	for _, r := range records {
		if recordsBy[r.EmployeeID] == nil {
			recordsBy[r.EmployeeID] = make(map[string]models.Attendance)
		}
		recordsBy[r.EmployeeID][r.WorkDate] = r
	}

	// leaveBy[employee][day] is the share of the day on leave (1 or 0.5).
	leaveBy := make(map[string]map[string]float64, len(employees))
	for _, l := range leaves {
		days, err := tz.DateRange(max(l.StartDate, from), min(l.EndDate, to))
		if err != nil {
			continue
		}
		if leaveBy[l.EmployeeID] == nil {
			leaveBy[l.EmployeeID] = make(map[string]float64)
		}
		share := 1.0
		if l.HalfDay {
			share = 0.5
		}
		for _, d := range days {
			leaveBy[l.EmployeeID][d] = share
		}
	}

	out := make([]models.AttendanceSummary, 0, len(employees))
	for _, e := range employees {
		sum := models.AttendanceSummary{
			EmployeeID:    e.ID,
			EmployeeName:  e.FullName,
			From:          from,
			To:            to,
			Workdays:      len(workdays),
			OvertimeHours: overtime[e.ID],
		}

		for _, r := range recordsBy[e.ID] {
			sum.WorkedMinutes += r.WorkedMinutes
			switch r.Status {
			case models.AttendancePresent:
				sum.Present++
			case models.AttendanceLate:
				sum.Late++
			case models.AttendanceHalfDay:
				sum.HalfDays++
			}
		}

		for _, d := range workdays {
			share, onLeave := leaveBy[e.ID][d]
			if onLeave {
				sum.LeaveDays += share
				continue
			}
			if d >= today {
				continue
			}
			r, ok := recordsBy[e.ID][d]
			if !ok || r.Status == models.AttendanceAbsent {
				sum.Absent++
			}
		}

		out = append(out, sum)
	}
	return out, nil
}

func (s *reportService) Export(ctx context.Context, viewer *models.User, from, to string, w io.Writer) error {
	from, to, err := resolveRange(from, to, s.now(), s.loc)
	if err != nil {
		return err
	}
	team, err := s.population(ctx, viewer)
	if err != nil {
		return err
	}
	if !viewer.Role.Permissions().Has(models.PermReadReports) {
		team = append(team, *viewer)
	}

	ids := make([]string, len(team))
	for i, e := range team {
		ids[i] = e.ID
	}
	records, err := s.attendanceRepo.ListByEmployees(ctx, ids, from, to)
	if err != nil {
		return err
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].EmployeeName != records[j].EmployeeName {
			return records[i].EmployeeName < records[j].EmployeeName
		}
		return records[i].WorkDate < records[j].WorkDate
	})
	summaries, err := s.summaries(ctx, team, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const daily, totals = "Attendance", "Summary"
	if err := f.SetSheetName("Sheet1", daily); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(totals); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	rows := [][]any{{"Employee", "Date", "Status", "Check in", "Check out", "Worked (h)", "Note"}}
	for _, r := range records {
		rows = append(rows, []any{
			r.EmployeeName, r.WorkDate, string(r.Status),
			s.clock(r.CheckIn), s.clock(r.CheckOut),
			float64(r.WorkedMinutes) / 60, r.Note,
		})
	}
	if err := writeRows(f, daily, rows); err != nil {
		return err
	}

	rows = [][]any{{"Employee", "From", "To", "Workdays", "Present", "Late", "Half days", "Absent", "Leave days", "Worked (h)", "Overtime (h)"}}
	for _, sum := range summaries {
		rows = append(rows, []any{
			sum.EmployeeName, sum.From, sum.To, sum.Workdays, sum.Present, sum.Late, sum.HalfDays,
			sum.Absent, sum.LeaveDays, float64(sum.WorkedMinutes) / 60, sum.OvertimeHours,
		})
	}
	if err := writeRows(f, totals, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *reportService) clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("15:04")
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func (s *reportService) InvalidateEmployee(ctx context.Context, employeeID string) {
	if err := s.store.DeletePrefix(ctx, summaryKeyPrefix+employeeID+":"); err != nil {
		log.Warn().Str("component", "reports").Err(err).Str("employee_id", employeeID).Msg("summary cache invalidation failed")
	}
}

func summaryKey(employeeID, from, to string) string {
	return summaryKeyPrefix + employeeID + ":" + from + ":" + to
}
