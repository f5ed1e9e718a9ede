// Package workflow is the approval state machine shared by leave,
// permission, overtime and work-submission requests.
//
// A request walks a chain of stages (team lead, then manager). Each stage
// has exactly one approver, captured in a Route when the request is
// submitted. Admins may act on any stage. The package is pure: it decides
// the next status and who must hear about it, the services persist the
// transition and deliver the notices.
//
//	Pending Team Lead Approval ──approve──▶ Pending Manager Approval ──approve──▶ Approved
//	          │                                       │
//	          └──reject──▶ Rejected ◀──reject──────────┘
//	(any pending) ──employee cancels──▶ Cancelled
package workflow

import (
	"fmt"

	"github.com/akinalp/workdesk/pkg"
)

// Kind identifies the request type.
type Kind string

const (
	KindLeave      Kind = "leave"
	KindPermission Kind = "permission"
	KindOvertime   Kind = "overtime"
	KindSubmission Kind = "submission"
)

// Kinds lists every request kind.
var Kinds = []Kind{KindLeave, KindPermission, KindOvertime, KindSubmission}

// ParseKind validates a kind coming from a URL.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown request kind %q", pkg.ErrBadRequest, s)
}

// Status is the persisted request status.
type Status string

const (
	StatusPendingTeamLead Status = "Pending Team Lead Approval"
	StatusPendingManager  Status = "Pending Manager Approval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusCancelled       Status = "Cancelled"
)

// PendingStatuses are the statuses a request can still leave.
var PendingStatuses = []Status{StatusPendingTeamLead, StatusPendingManager}

// IsPending reports whether s still awaits an approver.
func IsPending(s Status) bool {
	return s == StatusPendingTeamLead || s == StatusPendingManager
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingTeamLead, StatusPendingManager, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Stage is one approval step.
type Stage string

const (
	StageTeamLead Stage = "team_lead"
	StageManager  Stage = "manager"
)

// StageOf maps a pending status to its stage.
func StageOf(s Status) (Stage, bool) {
	switch s {
	case StatusPendingTeamLead:
		return StageTeamLead, true
	case StatusPendingManager:
		return StageManager, true
	}
	return "", false
}

// PendingStatusFor maps a stage to the status that waits on it.
func PendingStatusFor(stage Stage) Status {
	if stage == StageTeamLead {
		return StatusPendingTeamLead
	}
	return StatusPendingManager
}

// Decision is what an actor did. Submit and cancel only appear in the audit trail.
type Decision string

const (
	DecisionSubmit  Decision = "submit"
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionCancel  Decision = "cancel"
)

// Event names the notification a Notice produces.
type Event string

const (
	EventAwaitingApproval Event = "awaiting_approval"
	EventAdvanced         Event = "advanced"
	EventApproved         Event = "approved"
	EventRejected         Event = "rejected"
	EventCancelled        Event = "cancelled"
	EventReminder         Event = "reminder"
)

// Route holds the employee and the approvers captured at submission.
// Org changes after submission do not re-route a request.
type Route struct {
	EmployeeID string
	TeamLeadID string
	ManagerID  string
}

// Actor is the user attempting a transition.
type Actor struct {
	ID      string
	IsAdmin bool
}

// Notice asks for one user to be notified of Event.
type Notice struct {
	UserID string
	Event  Event
}

// Outcome is a computed transition.
type Outcome struct {
	From  Status
	To    Status
	Stage Stage
	// Notices is de-duplicated and never addresses the actor.
	Notices []Notice
	// NotifyAdmins is set when the stage that now needs action has no
	// approver (no manager assigned); admins are expected to act.
	// AdminEvent is what they are told.
	NotifyAdmins bool
	AdminEvent   Event
}

var (
	ErrNotPending      = fmt.Errorf("%w: request is no longer pending", pkg.ErrConflict)
	ErrSelfApproval    = fmt.Errorf("%w: you cannot act on your own request", pkg.ErrForbidden)
	ErrNotApprover     = fmt.Errorf("%w: you are not the approver for this stage", pkg.ErrForbidden)
	ErrNotRequester    = fmt.Errorf("%w: only the requester can cancel a request", pkg.ErrForbidden)
	ErrInvalidDecision = fmt.Errorf("%w: decision must be approve or reject", pkg.ErrBadRequest)
)

// ChainFor returns the configured stages of a kind.
func ChainFor(kind Kind) []Stage {
	if kind == KindOvertime {
		return []Stage{StageManager}
	}
	return []Stage{StageTeamLead, StageManager}
}

// Stages returns the effective chain for a route. The team-lead stage is
// dropped when there is no team lead, when the employee is their own team
// lead, or when the team lead is also the manager (one approval suffices).
// The manager stage always stays; without a manager, admins act on it.
func Stages(kind Kind, r Route) []Stage {
	var out []Stage
	for _, st := range ChainFor(kind) {
		if st == StageTeamLead {
			if r.TeamLeadID == "" || r.TeamLeadID == r.EmployeeID || r.TeamLeadID == r.ManagerID {
				continue
			}
		}
		out = append(out, st)
	}
	return out
}

// Approver returns the user who acts on stage, "" when nobody is assigned.
func (r Route) Approver(stage Stage) string {
	if stage == StageTeamLead {
		return r.TeamLeadID
	}
	if r.ManagerID == r.EmployeeID {
		return ""
	}
	return r.ManagerID
}

// CanAct reports whether actor may decide at stage.
func (r Route) CanAct(stage Stage, actor Actor) bool {
	if actor.ID == r.EmployeeID {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	approver := r.Approver(stage)
	return approver != "" && approver == actor.ID
}

// Initial computes the status of a freshly submitted request.
func Initial(kind Kind, r Route) Outcome {
	stage := Stages(kind, r)[0]
	out := Outcome{To: PendingStatusFor(stage), Stage: stage}
	out.awaiting(r, stage, r.EmployeeID)
	return out
}

// Decide applies an approver's decision to a request in status current.
func Decide(kind Kind, r Route, current Status, actor Actor, d Decision) (Outcome, error) {
	if d != DecisionApprove && d != DecisionReject {
		return Outcome{}, ErrInvalidDecision
	}

	stage, ok := StageOf(current)
	if !ok {
		return Outcome{}, ErrNotPending
	}
	if actor.ID == r.EmployeeID {
		return Outcome{}, ErrSelfApproval
	}
	if !r.CanAct(stage, actor) {
		return Outcome{}, ErrNotApprover
	}

	out := Outcome{From: current, Stage: stage}
	chain := Stages(kind, r)

	if d == DecisionReject {
		out.To = StatusRejected
		out.add(r.EmployeeID, EventRejected, actor.ID)
		if stage == StageManager && hasStage(chain, StageTeamLead) {
			out.add(r.TeamLeadID, EventRejected, actor.ID)
		}
		return out, nil
	}

	if next, ok := nextStage(chain, stage); ok {
		out.To = PendingStatusFor(next)
		out.add(r.EmployeeID, EventAdvanced, actor.ID)
		out.awaiting(r, next, actor.ID)
		return out, nil
	}

	out.To = StatusApproved
	out.add(r.EmployeeID, EventApproved, actor.ID)
	if hasStage(chain, StageTeamLead) {
		out.add(r.TeamLeadID, EventApproved, actor.ID)
	}
	return out, nil
}

// Cancel withdraws a pending request. Only the employee may cancel.
func Cancel(r Route, current Status, actorID string) (Outcome, error) {
	if actorID != r.EmployeeID {
		return Outcome{}, ErrNotRequester
	}
	stage, ok := StageOf(current)
	if !ok {
		return Outcome{}, ErrNotPending
	}

	out := Outcome{From: current, To: StatusCancelled, Stage: stage}
	if approver := r.Approver(stage); approver != "" {
		out.add(approver, EventCancelled, actorID)
	} else {
		out.NotifyAdmins, out.AdminEvent = true, EventCancelled
	}
	return out, nil
}

// Reminder addresses whoever the pending request is waiting on.
func Reminder(r Route, current Status) (Outcome, error) {
	stage, ok := StageOf(current)
	if !ok {
		return Outcome{}, ErrNotPending
	}
	out := Outcome{From: current, To: current, Stage: stage}
	if approver := r.Approver(stage); approver != "" {
		out.add(approver, EventReminder, "")
	} else {
		out.NotifyAdmins, out.AdminEvent = true, EventReminder
	}
	return out, nil
}

// awaiting tells the approver of stage (or admins, if none) that it is their turn.
func (o *Outcome) awaiting(r Route, stage Stage, actorID string) {
	if approver := r.Approver(stage); approver != "" {
		o.add(approver, EventAwaitingApproval, actorID)
		return
	}
	o.NotifyAdmins, o.AdminEvent = true, EventAwaitingApproval
}

func (o *Outcome) add(userID string, ev Event, actorID string) {
	if userID == "" || userID == actorID {
		return
	}
	for _, n := range o.Notices {
		if n.UserID == userID {
			return
		}
	}
	o.Notices = append(o.Notices, Notice{UserID: userID, Event: ev})
}

func hasStage(chain []Stage, s Stage) bool {
	for _, st := range chain {
		if st == s {
			return true
		}
	}
	return false
}

func nextStage(chain []Stage, s Stage) (Stage, bool) {
	for i, st := range chain {
		if st == s && i+1 < len(chain) {
			return chain[i+1], true
		}
	}
	return "", false
}
