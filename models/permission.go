package models

import (
	"fmt"
	"strings"

	"github.com/akinalp/workdesk/pkg/tz"
)

// PermissionRequest asks for a few hours off within a workday.
type PermissionRequest struct {
	RequestBase
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Minutes   int    `json:"minutes"`
	Reason    string `json:"reason"`
}

type CreatePermissionRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

// Validate checks the payload and returns the requested duration in minutes.
func (r *CreatePermissionRequest) Validate() (int, error) {
	if _, err := tz.ParseDate(r.Date); err != nil {
		return 0, fmt.Errorf("date must be YYYY-MM-DD")
	}
	start, err := tz.ParseClock(r.StartTime)
	if err != nil {
		return 0, fmt.Errorf("start_time must be HH:MM")
	}
	end, err := tz.ParseClock(r.EndTime)
	if err != nil {
		return 0, fmt.Errorf("end_time must be HH:MM")
	}
	if end <= start {
		return 0, fmt.Errorf("end_time must be after start_time")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if err := validateReason(r.Reason); err != nil {
		return 0, err
	}
	return end - start, nil
}
