package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/models"
)

func (e *testEnv) sweeper(interval time.Duration) Sweeper {
	return NewSweeper(SweeperDeps{
		Approvals:     e.approvalRepo,
		Attendance:    e.attendanceRep,
		Users:         e.users,
		Sessions:      e.sessions,
		ResetTokens:   e.resets,
		Notifications: e.notifRepo,
	}, e.notifications, e.store, e.registry, e.policy, e.loc, config.SweepConfig{
		Interval:      interval,
		ReminderAfter: 24 * time.Hour,
	})
}

func TestSweepRemindsStaleApprovals(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)
	loner := e.user(t, "loner@example.com", models.RoleEmployee, nil, nil)

	submitLeave(t, e, o.employee, "2030-03-04", "2030-03-04")
	_, err := e.submissions.Submit(ctx, loner, &models.CreateSubmissionRequest{Title: "Design doc", WorkDate: "2024-03-04"})
	require.NoError(t, err)

	s := e.sweeper(15 * time.Minute)

	res, err := s.RunOnce(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Reminders, "nothing is a day old yet")

	later := time.Now().UTC().Add(48 * time.Hour)
	res, err = s.RunOnce(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Reminders)
	assert.Equal(t, 2, e.unread(t, o.lead.ID), "awaiting + reminder")
	assert.Equal(t, 2, e.unread(t, o.admin.ID), "the manager-less request falls to the admins")
	assert.Equal(t, 0, e.unread(t, loner.ID))

	res, err = s.RunOnce(ctx, later.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Reminders, "reminded within the last day")
}

func TestSweepSkipsWhileLocked(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	s := e.sweeper(15 * time.Minute)
	now := time.Now()

	res, err := s.RunOnce(ctx, now)
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	res, err = s.RunOnce(ctx, now)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestSweepCheckoutReminders(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	o := e.org(t)

	checkIn := at("2024-03-04 09:00")
	checkOut := at("2024-03-04 17:00")
	require.NoError(t, e.attendanceRep.Create(ctx, &models.Attendance{
		EmployeeID: o.employee.ID, WorkDate: "2024-03-04", CheckIn: &checkIn, Status: models.AttendancePresent,
	}))
	require.NoError(t, e.attendanceRep.Create(ctx, &models.Attendance{
		EmployeeID: o.lead.ID, WorkDate: "2024-03-04", CheckIn: &checkIn, CheckOut: &checkOut,
		Status: models.AttendancePresent, WorkedMinutes: 480,
	}))

	s := e.sweeper(15 * time.Minute)

	// Workday ends 18:30; reminders start an hour later.
	res, err := s.RunOnce(ctx, at("2024-03-04 19:00"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.CheckoutReminders)

	res, err = s.RunOnce(ctx, at("2024-03-04 19:45"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.CheckoutReminders)
	assert.Equal(t, 1, e.unread(t, o.employee.ID))
	assert.Equal(t, 0, e.unread(t, o.lead.ID))

	res, err = s.RunOnce(ctx, at("2024-03-04 22:00"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.CheckoutReminders, "reminded once per day")

	t.Run("not on weekends", func(t *testing.T) {
		saturday := at("2024-03-09 09:00")
		require.NoError(t, e.attendanceRep.Create(ctx, &models.Attendance{
			EmployeeID: o.manager.ID, WorkDate: "2024-03-09", CheckIn: &saturday, Status: models.AttendancePresent,
		}))
		res, err := s.RunOnce(ctx, at("2024-03-09 21:00"))
		require.NoError(t, err)
		assert.Equal(t, 0, res.CheckoutReminders)
	})
}

func TestSweeperStartStop(t *testing.T) {
	e := newTestEnv(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := e.sweeper(10 * time.Millisecond)
	s.Start()
	s.Start()
	time.Sleep(35 * time.Millisecond)
	s.Stop()
	s.Stop()
}
