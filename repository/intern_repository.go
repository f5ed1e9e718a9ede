package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// InternRepository stores internship profiles.
type InternRepository interface {
	// Upsert creates or replaces the profile of profile.UserID.
	Upsert(ctx context.Context, profile *models.InternProfile) error
	Get(ctx context.Context, userID string) (*models.Intern, error)
	// List returns interns matching filter; filter.Role is ignored.
	List(ctx context.Context, filter models.UserFilter) ([]models.Intern, error)
}
