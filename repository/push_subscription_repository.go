package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// PushSubscriptionRepository stores Web Push endpoints.
type PushSubscriptionRepository interface {
	// Upsert saves sub keyed by endpoint; an endpoint re-registered by a
	// different user moves to that user.
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
	// DeleteGone removes an endpoint the push service reported as expired.
	DeleteGone(ctx context.Context, endpoint string) error
}
