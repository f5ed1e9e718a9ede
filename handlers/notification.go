package handlers

import (
	"net/http"
	"strconv"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/services"
)

// NotificationHandler serves the in-app inbox and web push subscriptions.
type NotificationHandler struct {
	notifications services.NotificationService
	push          services.PushService
}

func NewNotificationHandler(notifications services.NotificationService, push services.PushService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, push: push}
}

// List godoc
// GET /api/notifications?unread=true&limit=&offset=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, offset := paging(r)
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	list, err := h.notifications.List(r.Context(), user.ID, models.NotificationFilter{
		UnreadOnly: unread,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, list)
}

// UnreadCount godoc
// GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.CountUnread(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]int{"count": n})
}

// MarkRead godoc
// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), user.ID, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

// MarkAllRead godoc
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// VAPIDPublicKey godoc
// GET /api/push/vapid-public-key
// An empty key means push is not configured on this server.
func (h *NotificationHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]string{"public_key": h.push.PublicKey()})
}

// Subscribe godoc
// POST /api/push/subscriptions
// Body: { "endpoint": "...", "keys": { "p256dh": "...", "auth": "..." } }
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SubscribePushRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sub, err := h.push.Subscribe(r.Context(), user.ID, r.UserAgent(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, sub)
}

// Unsubscribe godoc
// DELETE /api/push/subscriptions
// Body: { "endpoint": "..." }
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UnsubscribePushRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.push.Unsubscribe(r.Context(), user.ID, &req); err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}
