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
)

const internColumns = `u.id, u.email, u.password_hash, u.full_name, u.phone, u.role, u.department, u.designation,
	u.team_lead_id, u.manager_id, u.join_date, u.language, u.is_active, u.created_at, u.updated_at,
	p.user_id, p.college, p.course, p.mentor_id, p.start_date, p.end_date, p.stipend`

type sqliteInternRepo struct {
	db database.TxQuerier
}

func NewSQLiteInternRepo(db database.TxQuerier) InternRepository {
	return &sqliteInternRepo{db: db}
}

func scanIntern(row scanner) (*models.Intern, error) {
	in := &models.Intern{}
	u, p := &in.User, &in.Profile
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.Department, &u.Designation,
		&u.TeamLeadID, &u.ManagerID, &u.JoinDate, &u.Language, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&p.UserID, &p.College, &p.Course, &p.MentorID, &p.StartDate, &p.EndDate, &p.Stipend,
	)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (r *sqliteInternRepo) Upsert(ctx context.Context, p *models.InternProfile) error {
	query := `
		INSERT INTO intern_profiles (user_id, college, course, mentor_id, start_date, end_date, stipend)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			college = excluded.college, course = excluded.course, mentor_id = excluded.mentor_id,
			start_date = excluded.start_date, end_date = excluded.end_date, stipend = excluded.stipend`

	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.College, p.Course, p.MentorID, p.StartDate, p.EndDate, p.Stipend,
	)
	if err != nil {
		return fmt.Errorf("failed to save intern profile: %w", err)
	}
	return nil
}

func (r *sqliteInternRepo) Get(ctx context.Context, userID string) (*models.Intern, error) {
	query := `SELECT ` + internColumns + `
		FROM users u JOIN intern_profiles p ON p.user_id = u.id
		WHERE u.id = ?`

	in, err := scanIntern(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intern: %w", err)
	}
	return in, nil
}

func (r *sqliteInternRepo) List(ctx context.Context, f models.UserFilter) ([]models.Intern, error) {
	where := []string{"u.role = ?"}
	args := []any{models.RoleIntern}

	if f.Active != nil {
		where = append(where, "u.is_active = ?")
		args = append(args, boolToInt(*f.Active))
	}
	if f.Department != "" {
		where = append(where, "u.department = ?")
		args = append(args, f.Department)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(u.full_name LIKE ? ESCAPE '\\' OR u.email LIKE ? ESCAPE '\\' OR p.college LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(s) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + internColumns + `
		FROM users u JOIN intern_profiles p ON p.user_id = u.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY u.full_name COLLATE NOCASE`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interns: %w", err)
	}
	defer rows.Close()

	var interns []models.Intern
	for rows.Next() {
		in, err := scanIntern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intern: %w", err)
		}
		interns = append(interns, *in)
	}
	return interns, rows.Err()
}
