package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/workflow"
	"github.com/akinalp/workdesk/ws"
)

// SummaryInvalidator drops cached attendance summaries of an employee.
// Leave and overtime decisions change those summaries.
type SummaryInvalidator interface {
	InvalidateEmployee(ctx context.Context, employeeID string)
}

// ApprovalService is the kind-independent side of the request workflow:
// deciding, cancelling, audit history and pending counts.
type ApprovalService interface {
	Decide(ctx context.Context, actor *models.User, kind workflow.Kind, id string, decision workflow.Decision, comment string) (*models.ApprovalRecord, error)
	Cancel(ctx context.Context, actor *models.User, kind workflow.Kind, id string) (*models.ApprovalRecord, error)
	History(ctx context.Context, viewer *models.User, kind workflow.Kind, id string) ([]models.ApprovalAction, error)
	// AwaitingCounts counts the pending requests, per kind, the viewer can act on.
	AwaitingCounts(ctx context.Context, viewer *models.User) (models.PendingCounts, error)
	// PendingCounts counts the viewer's own requests still in flight.
	PendingCounts(ctx context.Context, viewer *models.User) (models.PendingCounts, error)
}

// ApprovalFlow runs every status change of every request kind: the
// conditional update and its audit row in one transaction, then metrics,
// realtime updates and notifications once committed. The request services
// and ApprovalService share one.
type ApprovalFlow struct {
	db            *sql.DB
	userRepo      repository.UserRepository
	approvalRepo  repository.ApprovalRepository
	notifications NotificationService
	hub           ws.EventPublisher
	metrics       *metrics.Registry
	summaries     SummaryInvalidator
}

func NewApprovalFlow(
	db *sql.DB,
	userRepo repository.UserRepository,
	approvalRepo repository.ApprovalRepository,
	notifications NotificationService,
	hub ws.EventPublisher,
	reg *metrics.Registry,
	summaries SummaryInvalidator,
) *ApprovalFlow {
	return &ApprovalFlow{
		db:            db,
		userRepo:      userRepo,
		approvalRepo:  approvalRepo,
		notifications: notifications,
		hub:           hub,
		metrics:       reg,
		summaries:     summaries,
	}
}

// routeFor snapshots the employee's current approvers. Deactivated
// approvers, and ones whose role can no longer lead or manage, are dropped
// so the request falls through to the next stage (or to the admins)
// instead of waiting on nobody.
func (f *ApprovalFlow) routeFor(ctx context.Context, employee *models.User) (workflow.Route, error) {
	route := workflow.Route{EmployeeID: employee.ID}

	active := func(id *string, allowed func(models.Role) bool) (string, error) {
		if id == nil {
			return "", nil
		}
		u, err := f.userRepo.GetByID(ctx, *id)
		if errors.Is(err, pkg.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if !u.IsActive || !allowed(u.Role) {
			return "", nil
		}
		return u.ID, nil
	}

	var err error
	if route.TeamLeadID, err = active(employee.TeamLeadID, models.Role.CanLead); err != nil {
		return route, err
	}
	if route.ManagerID, err = active(employee.ManagerID, models.Role.CanManage); err != nil {
		return route, err
	}
	return route, nil
}

// submit stores a new request. insert receives the transaction and the
// routed base columns, writes the kind-specific row after any checks of
// its own, and returns the new id.
func (f *ApprovalFlow) submit(
	ctx context.Context,
	employee *models.User,
	kind workflow.Kind,
	insert func(tx *sql.Tx, base models.RequestBase) (string, error),
) error {
	route, err := f.routeFor(ctx, employee)
	if err != nil {
		return err
	}
	out := workflow.Initial(kind, route)

	base := models.RequestBase{
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName,
		TeamLeadID:   models.OptionalID(route.TeamLeadID),
		ManagerID:    models.OptionalID(route.ManagerID),
		Status:       out.To,
	}

	var id string
	err = database.WithTx(ctx, f.db, func(tx *sql.Tx) error {
		var err error
		if id, err = insert(tx, base); err != nil {
			return err
		}
		return repository.NewSQLiteApprovalRepo(tx).AddAction(ctx, &models.ApprovalAction{
			RequestKind: kind,
			RequestID:   id,
			ActorID:     &employee.ID,
			Stage:       out.Stage,
			Decision:    workflow.DecisionSubmit,
			ToStatus:    out.To,
		})
	})
	if err != nil {
		return err
	}

	log.Info().Str("component", "workflow").Str("kind", string(kind)).Str("id", id).
		Str("employee_id", employee.ID).Str("status", string(out.To)).Msg("request submitted")

	f.afterTransition(ctx, kind, id, route, out, employee, employee.FullName)
	return nil
}

func (f *ApprovalFlow) decide(ctx context.Context, actor *models.User, kind workflow.Kind, id string, decision workflow.Decision, comment string) (*models.ApprovalRecord, error) {
	return f.transition(ctx, actor, kind, id, decision, comment, func(rec *models.ApprovalRecord) (workflow.Outcome, error) {
		return workflow.Decide(kind, rec.Route, rec.Status, workflow.Actor{ID: actor.ID, IsAdmin: actor.IsAdmin()}, decision)
	})
}

func (f *ApprovalFlow) cancel(ctx context.Context, actor *models.User, kind workflow.Kind, id string) (*models.ApprovalRecord, error) {
	return f.transition(ctx, actor, kind, id, workflow.DecisionCancel, "", func(rec *models.ApprovalRecord) (workflow.Outcome, error) {
		return workflow.Cancel(rec.Route, rec.Status, actor.ID)
	})
}

func (f *ApprovalFlow) transition(
	ctx context.Context,
	actor *models.User,
	kind workflow.Kind,
	id string,
	decision workflow.Decision,
	comment string,
	compute func(rec *models.ApprovalRecord) (workflow.Outcome, error),
) (*models.ApprovalRecord, error) {
	var rec *models.ApprovalRecord
	var out workflow.Outcome

	err := database.WithTx(ctx, f.db, func(tx *sql.Tx) error {
		approvals := repository.NewSQLiteApprovalRepo(tx)

		var err error
		if rec, err = approvals.GetRecord(ctx, kind, id); err != nil {
			return err
		}
		if out, err = compute(rec); err != nil {
			return err
		}
		if err := approvals.UpdateStatus(ctx, kind, id, out.From, out.To); err != nil {
			return err
		}
		return approvals.AddAction(ctx, &models.ApprovalAction{
			RequestKind: kind,
			RequestID:   id,
			ActorID:     &actor.ID,
			Stage:       out.Stage,
			Decision:    decision,
			FromStatus:  out.From,
			ToStatus:    out.To,
			Comment:     comment,
		})
	})
	if err != nil {
		if errors.Is(err, workflow.ErrNotPending) {
			log.Debug().Str("component", "workflow").Str("kind", string(kind)).Str("id", id).
				Str("actor_id", actor.ID).Msg("transition on a request that is no longer pending")
		}
		return nil, err
	}

	rec.Status = out.To
	log.Info().Str("component", "workflow").Str("kind", string(kind)).Str("id", id).
		Str("actor_id", actor.ID).Str("decision", string(decision)).
		Str("from", string(out.From)).Str("to", string(out.To)).Msg("request transitioned")

	employeeName := ""
	if employee, err := f.userRepo.GetByID(ctx, rec.Route.EmployeeID); err == nil {
		employeeName = employee.FullName
	}
	f.afterTransition(ctx, kind, id, rec.Route, out, actor, employeeName)
	return rec, nil
}

// afterTransition runs the side effects of a committed status change.
// None of them can undo it.
func (f *ApprovalFlow) afterTransition(ctx context.Context, kind workflow.Kind, id string, route workflow.Route, out workflow.Outcome, actor *models.User, employeeName string) {
	f.metrics.Transition(string(kind), string(out.To))

	if f.summaries != nil && (kind == workflow.KindLeave || kind == workflow.KindOvertime) {
		f.summaries.InvalidateEmployee(ctx, route.EmployeeID)
	}

	if f.hub != nil {
		update := ws.Event{Op: ws.OpRequestUpdate, Data: ws.RequestUpdateData{
			Kind:       string(kind),
			ID:         id,
			EmployeeID: route.EmployeeID,
			Status:     string(out.To),
			ActorID:    actor.ID,
		}}
		for _, userID := range uniqueIDs(route.EmployeeID, route.TeamLeadID, route.ManagerID, actor.ID) {
			f.hub.BroadcastToUser(userID, update)
		}
	}

	if f.notifications == nil {
		return
	}

	summary := ""
	if rec, err := f.approvalRepo.GetRecord(ctx, kind, id); err == nil {
		summary = rec.Summary
	} else {
		log.Warn().Str("component", "workflow").Err(err).Str("id", id).Msg("failed to load request summary")
	}

	msg := RequestNotice{
		Kind:      kind,
		RequestID: id,
		Employee:  employeeName,
		Actor:     actor.FullName,
		Summary:   summary,
		Status:    out.To,
	}
	f.notifications.Notify(ctx, out.Notices, msg)
	if out.NotifyAdmins {
		f.notifications.NotifyAdmins(ctx, out.AdminEvent, msg, actor.ID, route.EmployeeID)
	}
}

// canViewRequest allows the requester, anyone on its route, and holders
// of reports.read (admins included).
func canViewRequest(viewer *models.User, route workflow.Route) bool {
	if viewer.ID == route.EmployeeID || viewer.ID == route.TeamLeadID || viewer.ID == route.ManagerID {
		return true
	}
	return viewer.Role.Permissions().Has(models.PermReadReports)
}

func uniqueIDs(ids ...string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type approvalService struct {
	flow         *ApprovalFlow
	approvalRepo repository.ApprovalRepository
}

func NewApprovalService(flow *ApprovalFlow, approvalRepo repository.ApprovalRepository) ApprovalService {
	return &approvalService{flow: flow, approvalRepo: approvalRepo}
}

func (s *approvalService) Decide(ctx context.Context, actor *models.User, kind workflow.Kind, id string, decision workflow.Decision, comment string) (*models.ApprovalRecord, error) {
	req := &models.DecisionRequest{Comment: comment}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	return s.flow.decide(ctx, actor, kind, id, decision, req.Comment)
}

func (s *approvalService) Cancel(ctx context.Context, actor *models.User, kind workflow.Kind, id string) (*models.ApprovalRecord, error) {
	return s.flow.cancel(ctx, actor, kind, id)
}

func (s *approvalService) History(ctx context.Context, viewer *models.User, kind workflow.Kind, id string) ([]models.ApprovalAction, error) {
	rec, err := s.approvalRepo.GetRecord(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !canViewRequest(viewer, rec.Route) {
		return nil, fmt.Errorf("%w: you cannot view this request", pkg.ErrForbidden)
	}
	actions, err := s.approvalRepo.ListActions(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []models.ApprovalAction{}
	}
	return actions, nil
}

func (s *approvalService) AwaitingCounts(ctx context.Context, viewer *models.User) (models.PendingCounts, error) {
	return s.approvalRepo.CountAwaiting(ctx, viewer.ID, viewer.IsAdmin())
}

func (s *approvalService) PendingCounts(ctx context.Context, viewer *models.User) (models.PendingCounts, error) {
	return s.approvalRepo.CountPendingByEmployee(ctx, viewer.ID)
}
