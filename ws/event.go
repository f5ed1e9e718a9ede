// Package ws pushes realtime events to connected browsers.
//
//   - Hub tracks every connection, keyed by user id (a user may have several tabs).
//   - Client is one connection with a read pump and a write pump.
//   - Event is the frame format in both directions.
//
// Services never talk to connections directly: they call
// EventPublisher.BroadcastToUser and the hub fans the event out.
package ws

// Event is one WebSocket frame.
//
// Seq increases by one for every outbound event so a client can notice
// gaps and re-fetch.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → server.
const (
	OpHeartbeat = "heartbeat"
)

// Server → client.
const (
	OpReady              = "ready"
	OpHeartbeatAck       = "heartbeat_ack"
	OpNotificationCreate = "notification_create"
	// OpRequestUpdate is sent to everyone on a request's route when its status changes.
	OpRequestUpdate = "request_update"
)

// ReadyData is the payload of the first event after connecting.
type ReadyData struct {
	UserID      string `json:"user_id"`
	UnreadCount int    `json:"unread_count"`
}

// RequestUpdateData describes a status change of an approval request.
type RequestUpdateData struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
	ActorID    string `json:"actor_id"`
}
