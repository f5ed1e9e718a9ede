package models

import "time"

// Notification is a stored in-app notification.
type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Link        string    `json:"link"`
	RequestKind string    `json:"request_kind"`
	RequestID   string    `json:"request_id"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationFilter pages through a user's notifications.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
