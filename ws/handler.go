package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/models"
)

// TokenValidator validates the access token passed in the query string.
// Declared here so ws does not import services.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// UnreadCounter fills the ready payload.
type UnreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Handler upgrades /ws requests.
type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	unread   UnreadCounter
	upgrader websocket.Upgrader
}

// NewHandler builds the upgrade handler. allowedOrigins restricts the
// Origin header; an empty list or "*" allows any origin.
func NewHandler(hub *Hub, tokens TokenValidator, unread UnreadCounter, allowedOrigins []string) *Handler {
	h := &Handler{hub: hub, tokens: tokens, unread: unread}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set[origin] {
			return true
		}
		// Same-origin requests are always fine.
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// HandleConnection authenticates with ?token=, upgrades and registers the
// client. Browsers cannot set an Authorization header on a WebSocket
// handshake, hence the query parameter.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Str("component", "ws").Str("user_id", claims.UserID).Err(err).Msg("upgrade failed")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
	}
	if !h.hub.registerClient(client) {
		conn.Close()
		return
	}

	ready := ReadyData{UserID: claims.UserID}
	if h.unread != nil {
		if n, err := h.unread.CountUnread(r.Context(), claims.UserID); err == nil {
			ready.UnreadCount = n
		}
	}
	client.sendEvent(Event{Op: OpReady, Data: ready})

	go client.WritePump()
	client.ReadPump()
}
