package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/workflow"
)

// kindTable describes where a request kind lives. startCol and endCol
// bound the calendar span of a request (equal for single-day kinds);
// summary is a SQL expression naming the request in notifications.
type kindTable struct {
	table    string
	startCol string
	endCol   string
	summary  string
}

// kindTables is the only source of table names interpolated into SQL.
var kindTables = map[workflow.Kind]kindTable{
	workflow.KindLeave: {
		table: "leave_requests", startCol: "start_date", endCol: "end_date",
		summary: "leave_type || ', ' || start_date || ' to ' || end_date",
	},
	workflow.KindPermission: {
		table: "permission_requests", startCol: "permission_date", endCol: "permission_date",
		summary: "permission_date || ', ' || start_time || '-' || end_time",
	},
	workflow.KindOvertime: {
		table: "overtime_requests", startCol: "work_date", endCol: "work_date",
		summary: "work_date || ', ' || printf('%g', hours) || 'h'",
	},
	workflow.KindSubmission: {
		table: "work_submissions", startCol: "work_date", endCol: "work_date",
		summary: "title",
	},
}

func tableFor(kind workflow.Kind) (kindTable, error) {
	t, ok := kindTables[kind]
	if !ok {
		return kindTable{}, fmt.Errorf("%w: unknown request kind %q", pkg.ErrBadRequest, kind)
	}
	return t, nil
}

const requestBaseColumns = `r.id, r.employee_id, COALESCE(u.full_name, ''), r.team_lead_id, r.manager_id,
	r.status, r.last_reminded_at, r.created_at, r.updated_at`

func baseDest(b *models.RequestBase) []any {
	return []any{
		&b.ID, &b.EmployeeID, &b.EmployeeName, &b.TeamLeadID, &b.ManagerID,
		&b.Status, &b.LastRemindedAt, &b.CreatedAt, &b.UpdatedAt,
	}
}

// awaitingClause matches the pending requests approverID can act on.
// Admins may act on any stage, so they see every pending request but
// their own.
func awaitingClause(approverID string, isAdmin bool) (string, []any) {
	if isAdmin {
		return "r.status IN (?, ?) AND r.employee_id != ?",
			[]any{workflow.StatusPendingTeamLead, workflow.StatusPendingManager, approverID}
	}
	return "r.employee_id != ? AND ((r.status = ? AND r.team_lead_id = ?) OR (r.status = ? AND r.manager_id = ?))",
		[]any{approverID, workflow.StatusPendingTeamLead, approverID, workflow.StatusPendingManager, approverID}
}

// requestStore holds the query plumbing the four request repositories share.
// T is the concrete request model; scan fills one from a row whose columns
// are requestBaseColumns followed by columns.
type requestStore[T any] struct {
	db      database.TxQuerier
	kind    workflow.Kind
	columns string
	scan    func(row scanner) (*T, error)
}

func (s requestStore[T]) selectFrom() string {
	t := kindTables[s.kind]
	return `SELECT ` + requestBaseColumns + `, ` + s.columns + `
		FROM ` + t.table + ` r LEFT JOIN users u ON u.id = r.employee_id`
}

func (s requestStore[T]) get(ctx context.Context, id string) (*T, error) {
	item, err := s.scan(s.db.QueryRowContext(ctx, s.selectFrom()+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s request", pkg.ErrNotFound, s.kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s request: %w", s.kind, err)
	}
	return item, nil
}

func (s requestStore[T]) list(ctx context.Context, where []string, args []any, f models.RequestFilter) ([]T, error) {
	t := kindTables[s.kind]
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, f.Status)
	}
	if f.From != "" {
		where = append(where, "r."+t.endCol+" >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "r."+t.startCol+" <= ?")
		args = append(args, f.To)
	}

	query := s.selectFrom()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY r.created_at DESC, r.id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s requests: %w", s.kind, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s request: %w", s.kind, err)
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (s requestStore[T]) listByEmployee(ctx context.Context, employeeID string, f models.RequestFilter) ([]T, error) {
	return s.list(ctx, []string{"r.employee_id = ?"}, []any{employeeID}, f)
}

func (s requestStore[T]) listAwaiting(ctx context.Context, approverID string, isAdmin bool, f models.RequestFilter) ([]T, error) {
	clause, args := awaitingClause(approverID, isAdmin)
	return s.list(ctx, []string{clause}, args, f)
}

// activeStatuses are the statuses that still count against limits.
var activeStatuses = []any{workflow.StatusPendingTeamLead, workflow.StatusPendingManager, workflow.StatusApproved}
