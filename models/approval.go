package models

import (
	"time"

	"github.com/akinalp/workdesk/workflow"
)

// ApprovalAction is one row of a request's audit trail.
type ApprovalAction struct {
	ID          string            `json:"id"`
	RequestKind workflow.Kind     `json:"request_kind"`
	RequestID   string            `json:"request_id"`
	ActorID     *string           `json:"actor_id"`
	ActorName   string            `json:"actor_name"`
	Stage       workflow.Stage    `json:"stage"`
	Decision    workflow.Decision `json:"decision"`
	FromStatus  workflow.Status   `json:"from_status"`
	ToStatus    workflow.Status   `json:"to_status"`
	Comment     string            `json:"comment"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ApprovalRecord is the kind-independent view of a request the transition
// code and the reminder sweep work with.
type ApprovalRecord struct {
	Kind           workflow.Kind   `json:"kind"`
	ID             string          `json:"id"`
	Route          workflow.Route  `json:"-"`
	Status         workflow.Status `json:"status"`
	Summary        string          `json:"summary"`
	UpdatedAt      time.Time       `json:"updated_at"`
	LastRemindedAt *time.Time      `json:"-"`
}

// PendingCounts maps each kind to a number of pending requests.
type PendingCounts map[workflow.Kind]int

// Total sums every kind.
func (c PendingCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
