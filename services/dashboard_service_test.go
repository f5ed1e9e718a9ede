package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/workflow"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	dash := NewDashboardService(e.attendance, e.reports, e.approvals, e.notifications, e.leaves, e.users, e.policy, e.loc)
	setNow := func(now time.Time) {
		e.freeze(now)
		dash.(*dashboardService).now = func() time.Time { return now }
	}

	setNow(at("2024-03-04 09:10"))
	_, err := e.attendance.CheckIn(ctx, o.employee, &models.CheckInRequest{})
	require.NoError(t, err)
	submitLeave(t, e, o.employee, "2024-03-11", "2024-03-11")

	t.Run("employee", func(t *testing.T) {
		setNow(at("2024-03-04 12:00"))
		d, err := dash.Get(ctx, o.employee)
		require.NoError(t, err)
		require.NotNil(t, d.Today)
		assert.True(t, d.Today.IsOpen())
		assert.NotNil(t, d.Month)
		assert.Equal(t, 1, d.MyPending[workflow.KindLeave])
		assert.Equal(t, 0, d.AwaitingMe.Total())
		assert.Zero(t, d.TeamSize)
		assert.False(t, d.CheckoutReminder)

		require.NotEmpty(t, d.LeaveBalance)
		assert.Equal(t, "casual", d.LeaveBalance[0].LeaveType)
		assert.Equal(t, 1.0, d.LeaveBalance[0].Pending)
	})

	t.Run("checkout reminder after hours", func(t *testing.T) {
		setNow(at("2024-03-04 19:45"))
		d, err := dash.Get(ctx, o.employee)
		require.NoError(t, err)
		assert.True(t, d.CheckoutReminder)
	})

	t.Run("team lead", func(t *testing.T) {
		setNow(at("2024-03-04 12:00"))
		d, err := dash.Get(ctx, o.lead)
		require.NoError(t, err)
		assert.Nil(t, d.Today)
		assert.Equal(t, 1, d.AwaitingMe[workflow.KindLeave])
		assert.Equal(t, 1, d.TeamSize)
		assert.Equal(t, 1, d.UnreadCount, "the awaiting-approval notification")
	})
}
