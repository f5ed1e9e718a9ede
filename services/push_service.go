package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/crypto"
	"github.com/akinalp/workdesk/pkg/push"
	"github.com/akinalp/workdesk/repository"
)

// PushService stores the browsers' Web Push subscriptions.
type PushService interface {
	// PublicKey is the VAPID key browsers subscribe with, "" when push is off.
	PublicKey() string
	Subscribe(ctx context.Context, userID, userAgent string, req *models.SubscribePushRequest) (*models.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID string, req *models.UnsubscribePushRequest) error
}

type pushService struct {
	repo   repository.PushSubscriptionRepository
	sender push.Sender
	encKey []byte
}

func NewPushService(repo repository.PushSubscriptionRepository, sender push.Sender, encKey []byte) PushService {
	return &pushService{repo: repo, sender: sender, encKey: encKey}
}

func (s *pushService) PublicKey() string {
	if s.sender == nil {
		return ""
	}
	return s.sender.PublicKey()
}

func (s *pushService) Subscribe(ctx context.Context, userID, userAgent string, req *models.SubscribePushRequest) (*models.PushSubscription, error) {
	if s.sender == nil {
		return nil, fmt.Errorf("%w: web push is not configured", pkg.ErrBadRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	sub := &models.PushSubscription{
		UserID:    userID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		UserAgent: truncate(strings.TrimSpace(userAgent), 255),
	}
	if s.encKey != nil {
		var err error
		if sub.P256dh, err = crypto.Encrypt(sub.P256dh, s.encKey); err != nil {
			return nil, fmt.Errorf("failed to encrypt push key: %w", err)
		}
		if sub.Auth, err = crypto.Encrypt(sub.Auth, s.encKey); err != nil {
			return nil, fmt.Errorf("failed to encrypt push key: %w", err)
		}
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *pushService) Unsubscribe(ctx context.Context, userID string, req *models.UnsubscribePushRequest) error {
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", pkg.ErrBadRequest)
	}
	return s.repo.DeleteByEndpoint(ctx, userID, endpoint)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
