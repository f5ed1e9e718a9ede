// Package push delivers Web Push notifications (VAPID) to browser
// subscriptions.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/akinalp/workdesk/pkg/breaker"
)

// ErrSubscriptionGone means the push service no longer knows the
// subscription (HTTP 404/410); the caller should delete it.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Subscription is the browser PushSubscription the frontend registered.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Payload is what the service worker receives and shows.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Sender is what the notification service depends on.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload Payload) error
	PublicKey() string
}

// VAPIDConfig holds the application server keys.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	// Subject is a mailto: or https: contact for the push service operator.
	Subject string
	TTL     int
}

type vapidSender struct {
	cfg    VAPIDConfig
	client *http.Client
	cb     breaker.Breaker
}

// NewSender creates a VAPID sender.
func NewSender(cfg VAPIDConfig, client *http.Client) Sender {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * 60 * 60
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &vapidSender{cfg: cfg, client: client, cb: breaker.Default("webpush")}
}

// GenerateKeys creates a fresh VAPID key pair.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate vapid keys: %w", err)
	}
	return publicKey, privateKey, nil
}

func (s *vapidSender) PublicKey() string {
	return s.cfg.PublicKey
}

func (s *vapidSender) Send(ctx context.Context, sub Subscription, payload Payload) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	// Only transport errors and 5xx count against the breaker.
	var status int
	_, err = s.cb.Execute(func() (interface{}, error) {
		resp, err := webpush.SendNotificationWithContext(ctx, msg, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}, &webpush.Options{
			HTTPClient:      s.client,
			Subscriber:      s.cfg.Subject,
			VAPIDPublicKey:  s.cfg.PublicKey,
			VAPIDPrivateKey: s.cfg.PrivateKey,
			TTL:             s.cfg.TTL,
			Urgency:         webpush.UrgencyNormal,
		})
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		status = resp.StatusCode
		if status >= 500 {
			return nil, fmt.Errorf("push service answered %d", status)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("web push to %s: %w", endpointHost(sub.Endpoint), err)
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return ErrSubscriptionGone
	case status >= 400:
		return fmt.Errorf("web push to %s: push service answered %d", endpointHost(sub.Endpoint), status)
	}
	return nil
}

// endpointHost keeps logs free of the full capability URL.
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "push-service"
	}
	return u.Host
}
