package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/workflow"
)

func TestLeaveSubmitChecks(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	// Mon 2030-03-04 .. Fri 2030-03-15: ten workdays of the twelve-day quota.
	first := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-15")
	assert.Equal(t, 10.0, first.Days)

	tests := []struct {
		name string
		req  models.CreateLeaveRequest
		want error
	}{
		{"unknown type", models.CreateLeaveRequest{LeaveType: "sabbatical", StartDate: "2030-05-06", EndDate: "2030-05-06", Reason: "x"}, pkg.ErrBadRequest},
		{"weekend only", models.CreateLeaveRequest{LeaveType: "casual", StartDate: "2030-03-16", EndDate: "2030-03-17", Reason: "x"}, pkg.ErrBadRequest},
		{"end before start", models.CreateLeaveRequest{LeaveType: "casual", StartDate: "2030-05-07", EndDate: "2030-05-06", Reason: "x"}, pkg.ErrBadRequest},
		{"overlap", models.CreateLeaveRequest{LeaveType: "sick", StartDate: "2030-03-06", EndDate: "2030-03-06", Reason: "x"}, pkg.ErrConflict},
		{"quota counts pending days", models.CreateLeaveRequest{LeaveType: "casual", StartDate: "2030-04-01", EndDate: "2030-04-03", Reason: "x"}, pkg.ErrBadRequest},
		{"missing reason", models.CreateLeaveRequest{LeaveType: "casual", StartDate: "2030-05-06", EndDate: "2030-05-06"}, pkg.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := e.leaves.Submit(ctx, o.employee, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unlimited type has no quota", func(t *testing.T) {
		_, err := e.leaves.Submit(ctx, o.employee, &models.CreateLeaveRequest{
			LeaveType: "unpaid", StartDate: "2030-04-01", EndDate: "2030-04-12", Reason: "travel",
		})
		assert.NoError(t, err)
	})

	t.Run("half day counts half", func(t *testing.T) {
		l, err := e.leaves.Submit(ctx, o.employee, &models.CreateLeaveRequest{
			LeaveType: "casual", StartDate: "2030-05-06", EndDate: "2030-05-06", HalfDay: true, Reason: "doctor",
		})
		require.NoError(t, err)
		assert.Equal(t, 0.5, l.Days)
	})

	t.Run("cancelled leave frees its dates", func(t *testing.T) {
		_, err := e.approvals.Cancel(ctx, o.employee, workflow.KindLeave, first.ID)
		require.NoError(t, err)
		_, err = e.leaves.Submit(ctx, o.employee, &models.CreateLeaveRequest{
			LeaveType: "sick", StartDate: "2030-03-06", EndDate: "2030-03-06", Reason: "flu",
		})
		assert.NoError(t, err)
	})
}

func TestLeaveBalance(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	approved := submitLeave(t, e, o.employee, "2030-03-04", "2030-03-05")
	_, err := e.approvals.Decide(ctx, o.lead, workflow.KindLeave, approved.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	_, err = e.approvals.Decide(ctx, o.manager, workflow.KindLeave, approved.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	submitLeave(t, e, o.employee, "2030-03-11", "2030-03-11")

	balances, err := e.leaves.Balance(ctx, o.employee, o.employee.ID, 2030)
	require.NoError(t, err)
	require.Len(t, balances, len(e.policy.LeaveTypes))

	casual := balances[0]
	assert.Equal(t, "casual", casual.LeaveType)
	assert.Equal(t, 2.0, casual.Taken)
	assert.Equal(t, 1.0, casual.Pending)
	require.NotNil(t, casual.Remaining)
	assert.Equal(t, 9.0, *casual.Remaining)

	unpaid := balances[len(balances)-1]
	assert.Nil(t, unpaid.Remaining)

	t.Run("the manager may look", func(t *testing.T) {
		_, err := e.leaves.Balance(ctx, o.manager, o.employee.ID, 2030)
		assert.NoError(t, err)
	})

	t.Run("a peer may not", func(t *testing.T) {
		peer := e.user(t, "peer@example.com", models.RoleEmployee, o.lead, o.manager)
		_, err := e.leaves.Balance(ctx, peer, o.employee.ID, 2030)
		assert.ErrorIs(t, err, pkg.ErrForbidden)
	})
}

func TestLeaveListings(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")
	submitLeave(t, e, o.employee, "2030-03-05", "2030-03-05")

	mine, err := e.leaves.ListMine(ctx, o.employee, models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	awaiting, err := e.leaves.ListAwaiting(ctx, o.lead, models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, awaiting, 2)

	awaiting, err = e.leaves.ListAwaiting(ctx, o.manager, models.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, awaiting)
	assert.NotNil(t, awaiting)

	_, err = e.leaves.ListMine(ctx, o.employee, models.RequestFilter{Status: "Sideways"})
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestPermissionLimits(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	submit := func(date, start, end string) (*models.PermissionRequest, error) {
		return e.permissions.Submit(ctx, o.employee, &models.CreatePermissionRequest{
			Date: date, StartTime: start, EndTime: end, Reason: "errand",
		})
	}

	_, err := submit("2030-03-04", "10:00", "13:00")
	assert.ErrorIs(t, err, pkg.ErrBadRequest, "longer than the policy allows")

	p, err := submit("2030-03-04", "09:00", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 60, p.Minutes)

	_, err = submit("2030-03-04", "09:30", "10:30")
	assert.ErrorIs(t, err, pkg.ErrConflict, "overlaps the first one")

	_, err = submit("2030-03-05", "14:00", "15:00")
	require.NoError(t, err)

	_, err = submit("2030-03-06", "14:00", "15:00")
	assert.ErrorIs(t, err, pkg.ErrBadRequest, "monthly limit reached")

	_, err = submit("2030-04-01", "14:00", "15:00")
	assert.NoError(t, err, "a new month starts over")
}

func TestOvertimeRules(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)
	svc := e.overtime.(*overtimeService)
	svc.now = func() time.Time { return at("2024-03-06 12:00") }

	submit := func(date string, hours float64) error {
		_, err := e.overtime.Submit(ctx, o.employee, &models.CreateOvertimeRequest{WorkDate: date, Hours: hours, Reason: "deploy"})
		return err
	}

	assert.ErrorIs(t, submit("2024-03-07", 2), pkg.ErrBadRequest, "future date")
	assert.ErrorIs(t, submit("2024-03-05", 7), pkg.ErrBadRequest, "above the daily ceiling")
	require.NoError(t, submit("2024-03-05", 3))
	assert.ErrorIs(t, submit("2024-03-05", 1), pkg.ErrConflict, "one claim per day")
	assert.NoError(t, submit("2024-03-06", 1))

	awaiting, err := e.overtime.ListAwaiting(ctx, o.manager, models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, awaiting, 2)

	awaiting, err = e.overtime.ListAwaiting(ctx, o.lead, models.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, awaiting)
}
