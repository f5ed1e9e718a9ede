package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/akinalp/workdesk/pkg/tz"
)

// OvertimeRequest claims extra hours worked on a past or current day.
type OvertimeRequest struct {
	RequestBase
	WorkDate string  `json:"work_date"`
	Hours    float64 `json:"hours"`
	Reason   string  `json:"reason"`
}

type CreateOvertimeRequest struct {
	WorkDate string  `json:"work_date"`
	Hours    float64 `json:"hours"`
	Reason   string  `json:"reason"`
}

// Validate checks format and sign. The per-day ceiling and the
// not-in-the-future rule need the policy and the clock, so the service
// enforces them.
func (r *CreateOvertimeRequest) Validate() error {
	if _, err := tz.ParseDate(r.WorkDate); err != nil {
		return fmt.Errorf("work_date must be YYYY-MM-DD")
	}
	if r.Hours <= 0 || math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0) {
		return fmt.Errorf("hours must be greater than zero")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return validateReason(r.Reason)
}
