package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// UserRepository stores accounts and the reporting lines between them.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// ListAdmins returns the active admins.
	ListAdmins(ctx context.Context) ([]models.User, error)
	// ListReports returns the active users whose team lead or manager is leaderID.
	ListReports(ctx context.Context, leaderID string) ([]models.User, error)
	// Update writes every mutable column except the password hash.
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Count(ctx context.Context) (int, error)
}
