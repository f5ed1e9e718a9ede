package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
)

type sqlitePushSubscriptionRepo struct {
	db database.TxQuerier
}

func NewSQLitePushSubscriptionRepo(db database.TxQuerier) PushSubscriptionRepository {
	return &sqlitePushSubscriptionRepo{db: db}
}

func (r *sqlitePushSubscriptionRepo) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, user_agent)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			user_id = excluded.user_id, p256dh = excluded.p256dh,
			auth = excluded.auth, user_agent = excluded.user_agent
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, sub.UserAgent,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (r *sqlitePushSubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, endpoint, p256dh, auth, user_agent, created_at
		FROM push_subscriptions WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	defer rows.Close()

	var out []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.UserAgent, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sqlitePushSubscriptionRepo) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE user_id = ? AND endpoint = ?`, userID, endpoint,
	)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return requireAffected(result, "push subscription")
}

func (r *sqlitePushSubscriptionRepo) DeleteGone(ctx context.Context, endpoint string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint); err != nil {
		return fmt.Errorf("failed to delete expired push subscription: %w", err)
	}
	return nil
}
