package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/pkg"
)

var fullRoute = Route{EmployeeID: "emp", TeamLeadID: "lead", ManagerID: "mgr"}

func TestStagesSkipTeamLead(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		route Route
		want  []Stage
	}{
		{"full chain", KindLeave, fullRoute, []Stage{StageTeamLead, StageManager}},
		{"overtime is manager only", KindOvertime, fullRoute, []Stage{StageManager}},
		{"no team lead", KindPermission, Route{EmployeeID: "emp", ManagerID: "mgr"}, []Stage{StageManager}},
		{"employee is own lead", KindSubmission, Route{EmployeeID: "lead", TeamLeadID: "lead", ManagerID: "mgr"}, []Stage{StageManager}},
		{"lead is manager", KindLeave, Route{EmployeeID: "emp", TeamLeadID: "mgr", ManagerID: "mgr"}, []Stage{StageManager}},
		{"nobody assigned", KindLeave, Route{EmployeeID: "emp"}, []Stage{StageManager}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stages(tt.kind, tt.route))
		})
	}
}

func TestInitial(t *testing.T) {
	out := Initial(KindLeave, fullRoute)
	assert.Equal(t, StatusPendingTeamLead, out.To)
	assert.Equal(t, []Notice{{UserID: "lead", Event: EventAwaitingApproval}}, out.Notices)
	assert.False(t, out.NotifyAdmins)

	out = Initial(KindOvertime, fullRoute)
	assert.Equal(t, StatusPendingManager, out.To)
	assert.Equal(t, []Notice{{UserID: "mgr", Event: EventAwaitingApproval}}, out.Notices)

	out = Initial(KindLeave, Route{EmployeeID: "emp"})
	assert.Equal(t, StatusPendingManager, out.To)
	assert.Empty(t, out.Notices)
	assert.True(t, out.NotifyAdmins)
}

func TestTwoStageApproval(t *testing.T) {
	out, err := Decide(KindLeave, fullRoute, StatusPendingTeamLead, Actor{ID: "lead"}, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingTeamLead, out.From)
	assert.Equal(t, StatusPendingManager, out.To)
	assert.Equal(t, StageTeamLead, out.Stage)
	assert.ElementsMatch(t, []Notice{
		{UserID: "emp", Event: EventAdvanced},
		{UserID: "mgr", Event: EventAwaitingApproval},
	}, out.Notices)

	out, err = Decide(KindLeave, fullRoute, StatusPendingManager, Actor{ID: "mgr"}, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, out.To)
	assert.ElementsMatch(t, []Notice{
		{UserID: "emp", Event: EventApproved},
		{UserID: "lead", Event: EventApproved},
	}, out.Notices)
}

func TestRejections(t *testing.T) {
	out, err := Decide(KindLeave, fullRoute, StatusPendingTeamLead, Actor{ID: "lead"}, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.To)
	assert.Equal(t, []Notice{{UserID: "emp", Event: EventRejected}}, out.Notices)

	out, err = Decide(KindLeave, fullRoute, StatusPendingManager, Actor{ID: "mgr"}, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.To)
	assert.ElementsMatch(t, []Notice{
		{UserID: "emp", Event: EventRejected},
		{UserID: "lead", Event: EventRejected},
	}, out.Notices)

	// No team-lead stage: the lead is not told about the manager's rejection.
	out, err = Decide(KindOvertime, fullRoute, StatusPendingManager, Actor{ID: "mgr"}, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, []Notice{{UserID: "emp", Event: EventRejected}}, out.Notices)
}

func TestAuthorizationByRelationship(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		actor   Actor
		wantErr error
	}{
		{"manager cannot act at team-lead stage", StatusPendingTeamLead, Actor{ID: "mgr"}, ErrNotApprover},
		{"lead cannot act at manager stage", StatusPendingManager, Actor{ID: "lead"}, ErrNotApprover},
		{"stranger", StatusPendingTeamLead, Actor{ID: "someone"}, ErrNotApprover},
		{"employee approves own request", StatusPendingTeamLead, Actor{ID: "emp"}, ErrSelfApproval},
		{"admin approving own request", StatusPendingManager, Actor{ID: "emp", IsAdmin: true}, ErrSelfApproval},
		{"already approved", StatusApproved, Actor{ID: "mgr"}, ErrNotPending},
		{"already cancelled", StatusCancelled, Actor{ID: "lead"}, ErrNotPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decide(KindLeave, fullRoute, tt.current, tt.actor, DecisionApprove)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestErrorsMapToHTTPSentinels(t *testing.T) {
	assert.ErrorIs(t, ErrNotPending, pkg.ErrConflict)
	assert.ErrorIs(t, ErrNotApprover, pkg.ErrForbidden)
	assert.ErrorIs(t, ErrSelfApproval, pkg.ErrForbidden)
	assert.ErrorIs(t, ErrInvalidDecision, pkg.ErrBadRequest)
}

func TestAdminActsOnAnyStage(t *testing.T) {
	admin := Actor{ID: "root", IsAdmin: true}

	out, err := Decide(KindLeave, fullRoute, StatusPendingTeamLead, admin, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingManager, out.To)

	unmanaged := Route{EmployeeID: "emp"}
	out, err = Decide(KindLeave, unmanaged, StatusPendingManager, admin, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, out.To)
	assert.Equal(t, []Notice{{UserID: "emp", Event: EventApproved}}, out.Notices)
}

func TestNoticesSkipActor(t *testing.T) {
	// The manager is also an admin and approves the lead stage themselves:
	// they must not be notified that it is now their turn.
	out, err := Decide(KindLeave, fullRoute, StatusPendingTeamLead, Actor{ID: "mgr", IsAdmin: true}, DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, []Notice{{UserID: "emp", Event: EventAdvanced}}, out.Notices)
}

func TestInvalidDecision(t *testing.T) {
	_, err := Decide(KindLeave, fullRoute, StatusPendingTeamLead, Actor{ID: "lead"}, DecisionCancel)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestCancel(t *testing.T) {
	out, err := Cancel(fullRoute, StatusPendingManager, "emp")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, out.To)
	assert.Equal(t, []Notice{{UserID: "mgr", Event: EventCancelled}}, out.Notices)

	_, err = Cancel(fullRoute, StatusPendingManager, "lead")
	assert.ErrorIs(t, err, ErrNotRequester)

	// Nobody assigned to the stage: the admins were acting, so they hear about it.
	out, err = Cancel(Route{EmployeeID: "emp"}, StatusPendingManager, "emp")
	require.NoError(t, err)
	assert.Empty(t, out.Notices)
	assert.True(t, out.NotifyAdmins)
	assert.Equal(t, EventCancelled, out.AdminEvent)

	_, err = Cancel(fullRoute, StatusApproved, "emp")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestReminder(t *testing.T) {
	out, err := Reminder(fullRoute, StatusPendingTeamLead)
	require.NoError(t, err)
	assert.Equal(t, []Notice{{UserID: "lead", Event: EventReminder}}, out.Notices)

	out, err = Reminder(Route{EmployeeID: "emp"}, StatusPendingManager)
	require.NoError(t, err)
	assert.True(t, out.NotifyAdmins)
	assert.Equal(t, EventReminder, out.AdminEvent)

	_, err = Reminder(fullRoute, StatusRejected)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestParseKindAndStatus(t *testing.T) {
	k, err := ParseKind("overtime")
	require.NoError(t, err)
	assert.Equal(t, KindOvertime, k)

	_, err = ParseKind("vacation")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	assert.True(t, StatusPendingManager.Valid())
	assert.False(t, Status("Pending").Valid())
	assert.True(t, IsPending(StatusPendingTeamLead))
	assert.False(t, IsPending(StatusApproved))
}
