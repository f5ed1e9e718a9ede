package models

import (
	"fmt"
	"strings"

	"github.com/akinalp/workdesk/pkg/tz"
)

// LeaveRequest is a request for one or more days off.
type LeaveRequest struct {
	RequestBase
	LeaveType string  `json:"leave_type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	HalfDay   bool    `json:"half_day"`
	Days      float64 `json:"days"`
	Reason    string  `json:"reason"`
}

// CreateLeaveRequest is the submission body. The leave type is checked
// against the work policy by the service.
type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	HalfDay   bool   `json:"half_day"`
	Reason    string `json:"reason"`
}

func (r *CreateLeaveRequest) Validate() error {
	r.LeaveType = strings.ToLower(strings.TrimSpace(r.LeaveType))
	if r.LeaveType == "" {
		return fmt.Errorf("leave_type is required")
	}
	start, err := tz.ParseDate(r.StartDate)
	if err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	end, err := tz.ParseDate(r.EndDate)
	if err != nil {
		return fmt.Errorf("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	if r.HalfDay && r.StartDate != r.EndDate {
		return fmt.Errorf("a half-day leave must start and end on the same day")
	}
	if start.Year() != end.Year() {
		return fmt.Errorf("a leave cannot span two calendar years")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return validateReason(r.Reason)
}

// LeaveBalance is the standing of one leave type for a year.
// Remaining is nil for unlimited types.
type LeaveBalance struct {
	LeaveType string   `json:"leave_type"`
	Name      string   `json:"name"`
	Quota     float64  `json:"quota"`
	Taken     float64  `json:"taken"`
	Pending   float64  `json:"pending"`
	Remaining *float64 `json:"remaining"`
}
