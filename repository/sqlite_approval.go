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
	"github.com/akinalp/workdesk/workflow"
)

type sqliteApprovalRepo struct {
	db database.TxQuerier
}

func NewSQLiteApprovalRepo(db database.TxQuerier) ApprovalRepository {
	return &sqliteApprovalRepo{db: db}
}

func recordQuery(t kindTable) string {
	return `SELECT id, employee_id, COALESCE(team_lead_id, ''), COALESCE(manager_id, ''), status,
		` + t.summary + `, updated_at, last_reminded_at
		FROM ` + t.table
}

func scanRecord(kind workflow.Kind, row scanner) (*models.ApprovalRecord, error) {
	rec := &models.ApprovalRecord{Kind: kind}
	err := row.Scan(
		&rec.ID, &rec.Route.EmployeeID, &rec.Route.TeamLeadID, &rec.Route.ManagerID, &rec.Status,
		&rec.Summary, &rec.UpdatedAt, &rec.LastRemindedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sqliteApprovalRepo) GetRecord(ctx context.Context, kind workflow.Kind, id string) (*models.ApprovalRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(kind, r.db.QueryRowContext(ctx, recordQuery(t)+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s request", pkg.ErrNotFound, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s request: %w", kind, err)
	}
	return rec, nil
}

func (r *sqliteApprovalRepo) UpdateStatus(ctx context.Context, kind workflow.Kind, id string, from, to workflow.Status) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE `+t.table+` SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", kind, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return workflow.ErrNotPending
	}
	return nil
}

func (r *sqliteApprovalRepo) AddAction(ctx context.Context, a *models.ApprovalAction) error {
	a.ID = uuid.NewString()
	query := `
		INSERT INTO approval_actions (id, request_kind, request_id, actor_id, stage, decision,
			from_status, to_status, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.RequestKind, a.RequestID, a.ActorID, a.Stage, a.Decision,
		a.FromStatus, a.ToStatus, a.Comment,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record approval action: %w", err)
	}
	return nil
}

func (r *sqliteApprovalRepo) ListActions(ctx context.Context, kind workflow.Kind, id string) ([]models.ApprovalAction, error) {
	query := `
		SELECT a.id, a.request_kind, a.request_id, a.actor_id, COALESCE(u.full_name, ''), a.stage, a.decision,
			a.from_status, a.to_status, a.comment, a.created_at
		FROM approval_actions a LEFT JOIN users u ON u.id = a.actor_id
		WHERE a.request_kind = ? AND a.request_id = ?
		ORDER BY a.created_at, a.rowid`

	rows, err := r.db.QueryContext(ctx, query, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval actions: %w", err)
	}
	defer rows.Close()

	var actions []models.ApprovalAction
	for rows.Next() {
		var a models.ApprovalAction
		if err := rows.Scan(
			&a.ID, &a.RequestKind, &a.RequestID, &a.ActorID, &a.ActorName, &a.Stage, &a.Decision,
			&a.FromStatus, &a.ToStatus, &a.Comment, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan approval action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (r *sqliteApprovalRepo) ListStale(ctx context.Context, kind workflow.Kind, before time.Time) ([]models.ApprovalRecord, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := recordQuery(t) + `
		WHERE status IN (?, ?) AND max(updated_at, COALESCE(last_reminded_at, updated_at)) < ?
		ORDER BY updated_at`
	rows, err := r.db.QueryContext(ctx, query,
		workflow.StatusPendingTeamLead, workflow.StatusPendingManager, database.Timestamp(before),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale %s requests: %w", kind, err)
	}
	defer rows.Close()

	var out []models.ApprovalRecord
	for rows.Next() {
		rec, err := scanRecord(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s request: %w", kind, err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *sqliteApprovalRepo) MarkReminded(ctx context.Context, kind workflow.Kind, id string, at time.Time) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE `+t.table+` SET last_reminded_at = ? WHERE id = ?`, database.Timestamp(at), id,
	); err != nil {
		return fmt.Errorf("failed to mark %s reminded: %w", kind, err)
	}
	return nil
}

func (r *sqliteApprovalRepo) CountAwaiting(ctx context.Context, approverID string, isAdmin bool) (models.PendingCounts, error) {
	clause, args := awaitingClause(approverID, isAdmin)
	return r.count(ctx, clause, args)
}

func (r *sqliteApprovalRepo) CountPendingByEmployee(ctx context.Context, employeeID string) (models.PendingCounts, error) {
	return r.count(ctx, "r.employee_id = ? AND r.status IN (?, ?)",
		[]any{employeeID, workflow.StatusPendingTeamLead, workflow.StatusPendingManager})
}

func (r *sqliteApprovalRepo) count(ctx context.Context, clause string, args []any) (models.PendingCounts, error) {
	counts := make(models.PendingCounts, len(workflow.Kinds))
	for _, kind := range workflow.Kinds {
		t := kindTables[kind]
		var n int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+t.table+` r WHERE `+clause, args...,
		).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s requests: %w", kind, err)
		}
		counts[kind] = n
	}
	return counts, nil
}
