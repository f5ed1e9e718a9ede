package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/workdesk/workflow"
)

func TestCreateUserRequestValidate(t *testing.T) {
	lead := "  "
	req := CreateUserRequest{
		Email:      "  Asha@Example.COM ",
		Password:   "longenough",
		FullName:   " Asha Rao ",
		TeamLeadID: &lead,
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "asha@example.com", req.Email)
	assert.Equal(t, "Asha Rao", req.FullName)
	assert.Equal(t, RoleEmployee, req.Role)
	assert.Equal(t, "en", req.Language)
	assert.Nil(t, req.TeamLeadID)

	bad := []CreateUserRequest{
		{Email: "nope", Password: "longenough", FullName: "A"},
		{Email: "a@b.co", Password: "short", FullName: "A"},
		{Email: "a@b.co", Password: "longenough", FullName: ""},
		{Email: "a@b.co", Password: "longenough", FullName: "A", Role: "ceo"},
		{Email: "a@b.co", Password: "longenough", FullName: "A", JoinDate: "01/02/2024"},
	}
	for _, r := range bad {
		assert.Error(t, r.Validate(), "%+v", r)
	}
}

func TestUpdateUserRequestApply(t *testing.T) {
	lead := "lead-1"
	u := &User{FullName: "Old", TeamLeadID: &lead, Role: RoleEmployee}

	clear := ""
	name := "New Name"
	role := RoleTeamLead
	req := UpdateUserRequest{FullName: &name, TeamLeadID: &clear, Role: &role}
	require.NoError(t, req.Validate())
	req.Apply(u)

	assert.Equal(t, "New Name", u.FullName)
	assert.Nil(t, u.TeamLeadID)
	assert.Equal(t, RoleTeamLead, u.Role)
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleAdmin.Permissions().Has(PermWriteEmployees))
	assert.True(t, RoleManager.Permissions().Has(PermReadReports))
	assert.False(t, RoleManager.Permissions().Has(PermWriteEmployees))
	assert.True(t, RoleTeamLead.Permissions().Has(PermActApprovals))
	assert.False(t, RoleTeamLead.Permissions().Has(PermManageAttendance))
	assert.False(t, RoleIntern.Permissions().Has(PermReadEmployees))
	assert.True(t, RoleManager.CanManage())
	assert.False(t, RoleTeamLead.CanManage())
	assert.True(t, RoleTeamLead.CanLead())
}

func TestCreateLeaveRequestValidate(t *testing.T) {
	ok := CreateLeaveRequest{LeaveType: " Casual ", StartDate: "2024-03-04", EndDate: "2024-03-06", Reason: "family"}
	require.NoError(t, ok.Validate())
	assert.Equal(t, "casual", ok.LeaveType)

	tests := []struct {
		name string
		req  CreateLeaveRequest
	}{
		{"end before start", CreateLeaveRequest{LeaveType: "casual", StartDate: "2024-03-06", EndDate: "2024-03-04", Reason: "x"}},
		{"half day over range", CreateLeaveRequest{LeaveType: "casual", StartDate: "2024-03-04", EndDate: "2024-03-05", HalfDay: true, Reason: "x"}},
		{"missing reason", CreateLeaveRequest{LeaveType: "casual", StartDate: "2024-03-04", EndDate: "2024-03-04"}},
		{"bad date", CreateLeaveRequest{LeaveType: "casual", StartDate: "2024-3-4", EndDate: "2024-03-04", Reason: "x"}},
		{"spans years", CreateLeaveRequest{LeaveType: "casual", StartDate: "2024-12-30", EndDate: "2025-01-02", Reason: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.req.Validate())
		})
	}
}

func TestCreatePermissionRequestMinutes(t *testing.T) {
	req := CreatePermissionRequest{Date: "2024-03-04", StartTime: "10:00", EndTime: "11:30", Reason: "bank"}
	minutes, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, 90, minutes)

	req.EndTime = "09:00"
	_, err = req.Validate()
	assert.Error(t, err)
}

func TestCreateSubmissionRequestLink(t *testing.T) {
	req := CreateSubmissionRequest{Title: "Report", Link: "https://example.com/doc", WorkDate: "2024-03-04"}
	require.NoError(t, req.Validate())

	req.Link = "javascript:alert(1)"
	assert.Error(t, req.Validate())

	req.Link = "/relative"
	assert.Error(t, req.Validate())
}

func TestCorrectionRequestValidate(t *testing.T) {
	assert.NoError(t, (&CorrectionRequest{CheckIn: "09:30", CheckOut: "18:00"}).Validate())
	assert.NoError(t, (&CorrectionRequest{Status: AttendanceAbsent}).Validate())
	assert.Error(t, (&CorrectionRequest{CheckIn: "18:00", CheckOut: "09:00"}).Validate())
	assert.Error(t, (&CorrectionRequest{CheckOut: "18:00"}).Validate())
	assert.Error(t, (&CorrectionRequest{}).Validate())
}

func TestInternFieldsValidate(t *testing.T) {
	f := InternFields{StartDate: "2024-06-01", EndDate: "2024-08-31", Stipend: 10000}
	require.NoError(t, f.Validate())

	f.EndDate = "2024-05-01"
	assert.Error(t, f.Validate())
}

func TestRequestBaseRoute(t *testing.T) {
	lead := "lead"
	b := RequestBase{EmployeeID: "emp", TeamLeadID: &lead}
	assert.Equal(t, workflow.Route{EmployeeID: "emp", TeamLeadID: "lead"}, b.Route())
	assert.True(t, b.Involves("lead"))
	assert.False(t, b.Involves("mgr"))
}

func TestRequestFilterNormalize(t *testing.T) {
	f := RequestFilter{Limit: 1000}
	require.NoError(t, f.Normalize())
	assert.Equal(t, 50, f.Limit)

	f = RequestFilter{Status: "pending"}
	assert.Error(t, f.Normalize())
}
