package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PushSubscription is a browser's Web Push endpoint. The keys are stored
// encrypted when an encryption key is configured.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"-"`
	Auth      string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscribePushRequest mirrors the browser's PushSubscription.toJSON().
type SubscribePushRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (r *SubscribePushRequest) Validate() error {
	r.Endpoint = strings.TrimSpace(r.Endpoint)
	u, err := url.Parse(r.Endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("endpoint must be an https URL")
	}
	if len(r.Endpoint) > 2048 {
		return fmt.Errorf("endpoint is too long")
	}
	if r.Keys.P256dh == "" || r.Keys.Auth == "" {
		return fmt.Errorf("keys.p256dh and keys.auth are required")
	}
	return nil
}

// UnsubscribePushRequest identifies the subscription to drop.
type UnsubscribePushRequest struct {
	Endpoint string `json:"endpoint"`
}
