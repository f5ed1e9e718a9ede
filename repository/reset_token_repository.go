package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// PasswordResetRepository stores hashed password-reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// GetLatestByUserID backs the resend cooldown.
	GetLatestByUserID(ctx context.Context, userID string) (*models.PasswordResetToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}
