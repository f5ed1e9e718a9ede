package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg/crypto"
	"github.com/akinalp/workdesk/pkg/email"
	"github.com/akinalp/workdesk/pkg/i18n"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/pkg/push"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/workflow"
	"github.com/akinalp/workdesk/ws"
)

// NotificationTypeCheckoutReminder is the type of the end-of-day reminder.
const NotificationTypeCheckoutReminder = "checkout_reminder"

// deliveryTimeout bounds the push and email calls of one recipient.
const deliveryTimeout = 10 * time.Second

// RequestNotice describes the request a workflow notice is about. Names
// are display names, already resolved by the caller.
type RequestNotice struct {
	Kind      workflow.Kind
	RequestID string
	Employee  string
	Actor     string
	Summary   string
	Status    workflow.Status
}

// Link is the app path of the request.
func (n RequestNotice) Link() string {
	return fmt.Sprintf("/requests/%s/%s", n.Kind, n.RequestID)
}

// NotificationService stores notifications and delivers them over every
// channel the recipient can be reached on.
type NotificationService interface {
	// Notify fans a workflow outcome out to its recipients. Delivery
	// failures are logged and counted, never returned: the transition that
	// caused them has already been committed.
	Notify(ctx context.Context, notices []workflow.Notice, msg RequestNotice)
	// NotifyAdmins sends event to every active admin except the excluded ids.
	NotifyAdmins(ctx context.Context, event workflow.Event, msg RequestNotice, exclude ...string)
	NotifyCheckoutReminder(ctx context.Context, userID string, checkIn time.Time)

	List(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	pushRepo  repository.PushSubscriptionRepository
	hub       ws.EventPublisher
	pusher    push.Sender  // nil when VAPID keys are not configured
	mailer    email.Sender // nil when Resend is not configured
	metrics   *metrics.Registry
	encKey    []byte // nil: push keys are stored in plain text
	loc       *time.Location
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	pushRepo repository.PushSubscriptionRepository,
	hub ws.EventPublisher,
	pusher push.Sender,
	mailer email.Sender,
	reg *metrics.Registry,
	encKey []byte,
	loc *time.Location,
) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		pushRepo:  pushRepo,
		hub:       hub,
		pusher:    pusher,
		mailer:    mailer,
		metrics:   reg,
		encKey:    encKey,
		loc:       loc,
	}
}

func (s *notificationService) Notify(ctx context.Context, notices []workflow.Notice, msg RequestNotice) {
	if len(notices) == 0 {
		return
	}

	ids := make([]string, 0, len(notices))
	for _, n := range notices {
		ids = append(ids, n.UserID)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		log.Error().Str("component", "notify").Err(err).Msg("failed to load notification recipients")
		return
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, n := range notices {
		user, ok := byID[n.UserID]
		if !ok || !user.IsActive {
			continue
		}

		loc := i18n.NewLocalizer(user.Language)
		params := map[string]string{
			"employee": msg.Employee,
			"actor":    msg.Actor,
			"kind":     loc.T("kind." + string(msg.Kind)),
			"summary":  msg.Summary,
			"status":   string(msg.Status),
		}

		s.deliver(ctx, user, &models.Notification{
			UserID:      user.ID,
			Type:        string(n.Event),
			Title:       loc.T("notify." + string(n.Event) + ".title"),
			Body:        loc.TWithParams("notify."+string(n.Event)+".body", params),
			Link:        msg.Link(),
			RequestKind: string(msg.Kind),
			RequestID:   msg.RequestID,
		})
	}
}

func (s *notificationService) NotifyAdmins(ctx context.Context, event workflow.Event, msg RequestNotice, exclude ...string) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		log.Error().Str("component", "notify").Err(err).Msg("failed to list admins")
		return
	}

	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	var notices []workflow.Notice
	for _, a := range admins {
		if !skip[a.ID] {
			notices = append(notices, workflow.Notice{UserID: a.ID, Event: event})
		}
	}
	s.Notify(ctx, notices, msg)
}

func (s *notificationService) NotifyCheckoutReminder(ctx context.Context, userID string, checkIn time.Time) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Error().Str("component", "notify").Err(err).Str("user_id", userID).Msg("failed to load reminder recipient")
		return
	}
	if !user.IsActive {
		return
	}

	loc := i18n.NewLocalizer(user.Language)
	key := "notify." + NotificationTypeCheckoutReminder
	s.deliver(ctx, user, &models.Notification{
		UserID: user.ID,
		Type:   NotificationTypeCheckoutReminder,
		Title:  loc.T(key + ".title"),
		Body:   loc.TWithParams(key+".body", map[string]string{"time": checkIn.In(s.loc).Format("03:04 PM")}),
		Link:   "/attendance",
	})
}

// deliver stores n and pushes it to the recipient's open sockets, browsers
// and inbox. Each channel fails on its own.
func (s *notificationService) deliver(ctx context.Context, user *models.User, n *models.Notification) {
	logger := log.With().Str("component", "notify").Str("user_id", user.ID).Str("type", n.Type).Logger()

	if err := s.notifRepo.Create(ctx, n); err != nil {
		s.metrics.Notification("db", "error")
		logger.Error().Err(err).Msg("failed to store notification")
		return
	}
	s.metrics.Notification("db", "ok")

	if s.hub != nil && s.hub.IsOnline(user.ID) {
		s.hub.BroadcastToUser(user.ID, ws.Event{Op: ws.OpNotificationCreate, Data: n})
		s.metrics.Notification("ws", "ok")
	} else {
		s.metrics.Notification("ws", "skipped")
	}

	// The originating HTTP request may finish before delivery does.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	s.sendPush(sendCtx, user.ID, n)
	s.sendEmail(sendCtx, user, n)
}

func (s *notificationService) sendPush(ctx context.Context, userID string, n *models.Notification) {
	if s.pusher == nil {
		s.metrics.Notification("push", "skipped")
		return
	}

	subs, err := s.pushRepo.ListByUser(ctx, userID)
	if err != nil {
		s.metrics.Notification("push", "error")
		log.Error().Str("component", "notify").Err(err).Str("user_id", userID).Msg("failed to list push subscriptions")
		return
	}

	payload := push.Payload{Title: n.Title, Body: n.Body, URL: n.Link, Tag: n.Type}
	for _, sub := range subs {
		target, err := s.openSubscription(sub)
		if err != nil {
			s.metrics.Notification("push", "error")
			log.Warn().Str("component", "notify").Err(err).Str("endpoint", sub.Endpoint).Msg("unreadable push subscription")
			continue
		}

		err = s.pusher.Send(ctx, target, payload)
		switch {
		case err == nil:
			s.metrics.Notification("push", "ok")
		case errors.Is(err, push.ErrSubscriptionGone):
			s.metrics.Notification("push", "gone")
			if delErr := s.pushRepo.DeleteGone(ctx, sub.Endpoint); delErr != nil {
				log.Warn().Str("component", "notify").Err(delErr).Msg("failed to delete expired push subscription")
			}
		default:
			s.metrics.Notification("push", "error")
			log.Warn().Str("component", "notify").Err(err).Str("user_id", userID).Msg("push delivery failed")
		}
	}
}

func (s *notificationService) openSubscription(sub models.PushSubscription) (push.Subscription, error) {
	target := push.Subscription{Endpoint: sub.Endpoint, P256dh: sub.P256dh, Auth: sub.Auth}
	if s.encKey == nil {
		return target, nil
	}
	var err error
	if target.P256dh, err = crypto.Decrypt(sub.P256dh, s.encKey); err != nil {
		return target, fmt.Errorf("decrypt p256dh: %w", err)
	}
	if target.Auth, err = crypto.Decrypt(sub.Auth, s.encKey); err != nil {
		return target, fmt.Errorf("decrypt auth: %w", err)
	}
	return target, nil
}

func (s *notificationService) sendEmail(ctx context.Context, user *models.User, n *models.Notification) {
	if s.mailer == nil || user.Email == "" {
		s.metrics.Notification("email", "skipped")
		return
	}
	err := s.mailer.SendNotification(ctx, user.Email, email.Message{
		Subject: n.Title,
		Title:   n.Title,
		Body:    n.Body,
		Link:    n.Link,
	})
	if err != nil {
		s.metrics.Notification("email", "error")
		log.Warn().Str("component", "notify").Err(err).Str("user_id", user.ID).Msg("email delivery failed")
		return
	}
	s.metrics.Notification("email", "ok")
}

func (s *notificationService) List(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	list, err := s.notifRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifRepo.MarkRead(ctx, userID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, userID)
}
