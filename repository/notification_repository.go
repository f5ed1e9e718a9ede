package repository

import (
	"context"

	"github.com/akinalp/workdesk/models"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead marks one of userID's notifications; another user's id is pkg.ErrNotFound.
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// DeleteReadBefore prunes read notifications older than before.
	DeleteReadBefore(ctx context.Context, before string) (int64, error)
}
