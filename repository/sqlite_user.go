package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
)

const userColumns = `id, email, password_hash, full_name, phone, role, department, designation,
	team_lead_id, manager_id, join_date, language, is_active, created_at, updated_at`

type sqliteUserRepo struct {
	db database.TxQuerier
}

func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.Department, &u.Designation,
		&u.TeamLeadID, &u.ManagerID, &u.JoinDate, &u.Language, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	query := `
		INSERT INTO users (id, email, password_hash, full_name, phone, role, department, designation,
			team_lead_id, manager_id, join_date, language, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.Role,
		user.Department, user.Designation, user.TeamLeadID, user.ManagerID, user.JoinDate,
		user.Language, boolToInt(user.IsActive),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepo) get(ctx context.Context, where string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, "email = ?", strings.TrimSpace(email))
}

func (r *sqliteUserRepo) List(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	var where []string
	var args []any

	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if f.Department != "" {
		where = append(where, "department = ?")
		args = append(args, f.Department)
	}
	if f.Active != nil {
		where = append(where, "is_active = ?")
		args = append(args, boolToInt(*f.Active))
	}
	if f.TeamLeadID != "" {
		where = append(where, "team_lead_id = ?")
		args = append(args, f.TeamLeadID)
	}
	if f.ManagerID != "" {
		where = append(where, "manager_id = ?")
		args = append(args, f.ManagerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(full_name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\')")
		pattern := "%" + escapeLike(s) + "%"
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY full_name COLLATE NOCASE"

	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	return r.query(ctx, query, args...)
}

func (r *sqliteUserRepo) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	return r.query(ctx, query, stringArgs(ids)...)
}

func (r *sqliteUserRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? AND is_active = 1`, models.RoleAdmin)
}

func (r *sqliteUserRepo) ListReports(ctx context.Context, leaderID string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE is_active = 1 AND id != ? AND (team_lead_id = ? OR manager_id = ?)
		ORDER BY full_name COLLATE NOCASE`
	return r.query(ctx, query, leaderID, leaderID, leaderID)
}

func (r *sqliteUserRepo) query(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *sqliteUserRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET email = ?, full_name = ?, phone = ?, role = ?, department = ?, designation = ?,
			team_lead_id = ?, manager_id = ?, join_date = ?, language = ?, is_active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.FullName, user.Phone, user.Role, user.Department, user.Designation,
		user.TeamLeadID, user.ManagerID, user.JoinDate, user.Language, boolToInt(user.IsActive),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(result, "user")
}

func (r *sqliteUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(result, "user")
}

func (r *sqliteUserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// requireAffected turns "no row matched" into pkg.ErrNotFound.
func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, what)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
