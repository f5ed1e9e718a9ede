package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/workflow"
	"github.com/akinalp/workdesk/ws"
)

func submitLeave(t *testing.T, e *testEnv, employee *models.User, start, end string) *models.LeaveRequest {
	t.Helper()
	leave, err := e.leaves.Submit(context.Background(), employee, &models.CreateLeaveRequest{
		LeaveType: "casual",
		StartDate: start,
		EndDate:   end,
		Reason:    "family trip",
	})
	require.NoError(t, err)
	return leave
}

func TestLeaveTwoStageApproval(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	// 2030-03-04 is a Monday.
	leave := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-06")
	assert.Equal(t, workflow.StatusPendingTeamLead, leave.Status)
	assert.Equal(t, 3.0, leave.Days)
	assert.Equal(t, 1, e.unread(t, o.lead.ID))
	assert.Equal(t, 0, e.unread(t, o.manager.ID))

	t.Run("manager cannot skip the team lead", func(t *testing.T) {
		_, err := e.approvals.Decide(ctx, o.manager, workflow.KindLeave, leave.ID, workflow.DecisionApprove, "")
		assert.ErrorIs(t, err, pkg.ErrForbidden)
	})

	rec, err := e.approvals.Decide(ctx, o.lead, workflow.KindLeave, leave.ID, workflow.DecisionApprove, "  looks fine ")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManager, rec.Status)
	assert.Equal(t, 1, e.unread(t, o.manager.ID))
	assert.Equal(t, 1, e.unread(t, o.employee.ID))

	t.Run("team lead cannot act twice", func(t *testing.T) {
		_, err := e.approvals.Decide(ctx, o.lead, workflow.KindLeave, leave.ID, workflow.DecisionApprove, "")
		assert.ErrorIs(t, err, pkg.ErrForbidden)
	})

	rec, err = e.approvals.Decide(ctx, o.manager, workflow.KindLeave, leave.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, rec.Status)
	assert.Equal(t, 2, e.unread(t, o.employee.ID))
	assert.Equal(t, 2, e.unread(t, o.lead.ID))

	stored, err := e.leaves.Get(ctx, o.employee, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, stored.Status)

	history, err := e.approvals.History(ctx, o.employee, workflow.KindLeave, leave.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, workflow.DecisionSubmit, history[0].Decision)
	assert.Equal(t, workflow.DecisionApprove, history[1].Decision)
	assert.Equal(t, "looks fine", history[1].Comment)
	assert.Equal(t, workflow.StatusPendingManager, history[1].ToStatus)
	assert.Equal(t, workflow.StatusApproved, history[2].ToStatus)

	assert.Contains(t, e.hub.ops(o.employee.ID), ws.OpRequestUpdate)

	t.Run("approved requests cannot be cancelled", func(t *testing.T) {
		_, err := e.approvals.Cancel(ctx, o.employee, workflow.KindLeave, leave.ID)
		assert.ErrorIs(t, err, pkg.ErrConflict)
	})

	t.Run("outsiders cannot read the history", func(t *testing.T) {
		other := e.user(t, "other@example.com", models.RoleEmployee, nil, nil)
		_, err := e.approvals.History(ctx, other, workflow.KindLeave, leave.ID)
		assert.ErrorIs(t, err, pkg.ErrForbidden)
		_, err = e.leaves.Get(ctx, other, leave.ID)
		assert.ErrorIs(t, err, pkg.ErrForbidden)
	})
}

func TestRejectAtManagerStageNotifiesTeamLead(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	leave := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")
	_, err := e.approvals.Decide(ctx, o.lead, workflow.KindLeave, leave.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)

	rec, err := e.approvals.Decide(ctx, o.manager, workflow.KindLeave, leave.ID, workflow.DecisionReject, "busy week")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, rec.Status)

	// awaiting + rejected for the lead, advanced + rejected for the employee.
	assert.Equal(t, 2, e.unread(t, o.lead.ID))
	assert.Equal(t, 2, e.unread(t, o.employee.ID))
}

func TestConcurrentDecisionsCommitOnce(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	ot, err := e.overtime.Submit(ctx, o.employee, &models.CreateOvertimeRequest{
		WorkDate: "2024-03-04",
		Hours:    2,
		Reason:   "release night",
	})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusPendingManager, ot.Status)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, actor := range []*models.User{o.manager, o.admin} {
		wg.Add(1)
		go func(i int, actor *models.User) {
			defer wg.Done()
			_, errs[i] = e.approvals.Decide(ctx, actor, workflow.KindOvertime, ot.ID, workflow.DecisionApprove, "")
		}(i, actor)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, pkg.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	history, err := e.approvals.History(ctx, o.employee, workflow.KindOvertime, ot.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAdminsActWithoutManager(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.user(t, "admin@example.com", models.RoleAdmin, nil, nil)
	second := e.user(t, "admin2@example.com", models.RoleAdmin, nil, nil)
	loner := e.user(t, "loner@example.com", models.RoleEmployee, nil, nil)

	sub, err := e.submissions.Submit(ctx, loner, &models.CreateSubmissionRequest{
		Title:    "Quarterly report",
		WorkDate: "2024-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManager, sub.Status)
	assert.Equal(t, 1, e.unread(t, admin.ID))
	assert.Equal(t, 1, e.unread(t, second.ID))

	counts, err := e.approvals.AwaitingCounts(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[workflow.KindSubmission])

	rec, err := e.approvals.Decide(ctx, second, workflow.KindSubmission, sub.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, rec.Status)
	assert.Equal(t, 1, e.unread(t, loner.ID))
}

func TestCancelWithoutManagerNotifiesAdmins(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.user(t, "admin@example.com", models.RoleAdmin, nil, nil)
	loner := e.user(t, "loner@example.com", models.RoleEmployee, nil, nil)

	sub, err := e.submissions.Submit(ctx, loner, &models.CreateSubmissionRequest{
		Title:    "Quarterly report",
		WorkDate: "2024-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, e.unread(t, admin.ID))

	rec, err := e.approvals.Cancel(ctx, loner, workflow.KindSubmission, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCancelled, rec.Status)
	// awaiting + cancelled
	assert.Equal(t, 2, e.unread(t, admin.ID))
	assert.Equal(t, 0, e.unread(t, loner.ID))
}

func TestDeactivatedApproverIsSkipped(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	o.lead.IsActive = false
	require.NoError(t, e.users.Update(ctx, o.lead))

	leave := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")
	assert.Equal(t, workflow.StatusPendingManager, leave.Status)
	assert.Nil(t, leave.TeamLeadID)
	assert.Equal(t, 1, e.unread(t, o.manager.ID))
}

func TestDemotedApproverIsSkipped(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	_, err := e.employees.Update(ctx, o.admin, o.lead.ID, &models.UpdateUserRequest{Role: ptr(models.RoleEmployee)})
	require.NoError(t, err)

	leave := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")
	assert.Equal(t, workflow.StatusPendingManager, leave.Status)
	assert.Nil(t, leave.TeamLeadID)
	assert.Equal(t, 0, e.unread(t, o.lead.ID))
	assert.Equal(t, 1, e.unread(t, o.manager.ID))

	rec, err := e.approvals.Decide(ctx, o.manager, workflow.KindLeave, leave.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, rec.Status)
}

func TestTeamLeadStageSkippedWhenLeadIsManager(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	boss := e.user(t, "boss@example.com", models.RoleManager, nil, nil)
	emp := e.user(t, "emp@example.com", models.RoleEmployee, boss, boss)

	p, err := e.permissions.Submit(ctx, emp, &models.CreatePermissionRequest{
		Date:      "2030-03-04",
		StartTime: "10:00",
		EndTime:   "11:00",
		Reason:    "bank",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManager, p.Status)

	rec, err := e.approvals.Decide(ctx, boss, workflow.KindPermission, p.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, rec.Status)
}

func TestSelfApprovalRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	sub, err := e.submissions.Submit(ctx, o.lead, &models.CreateSubmissionRequest{Title: "Design doc", WorkDate: "2024-03-04"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManager, sub.Status)

	_, err = e.approvals.Decide(ctx, o.lead, workflow.KindSubmission, sub.ID, workflow.DecisionApprove, "")
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	leave := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")

	_, err := e.approvals.Cancel(ctx, o.lead, workflow.KindLeave, leave.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	rec, err := e.approvals.Cancel(ctx, o.employee, workflow.KindLeave, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCancelled, rec.Status)
	// awaiting + cancelled
	assert.Equal(t, 2, e.unread(t, o.lead.ID))

	pending, err := e.approvals.PendingCounts(ctx, o.employee)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Total())

	_, err = e.approvals.Cancel(ctx, o.employee, workflow.KindLeave, leave.ID)
	assert.ErrorIs(t, err, pkg.ErrConflict)
}

func TestDecideValidatesInput(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)
	leave := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")

	_, err := e.approvals.Decide(ctx, o.lead, workflow.KindLeave, leave.ID, workflow.DecisionCancel, "")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'x'
	}
	_, err = e.approvals.Decide(ctx, o.lead, workflow.KindLeave, leave.ID, workflow.DecisionApprove, string(long))
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = e.approvals.Decide(ctx, o.lead, workflow.KindLeave, "missing", workflow.DecisionApprove, "")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}
