package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/workflow"
)

// RequestBase holds the columns every approval-tracked request shares.
// TeamLeadID and ManagerID are the approvers captured at submission.
type RequestBase struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	EmployeeName   string          `json:"employee_name,omitempty"`
	TeamLeadID     *string         `json:"team_lead_id"`
	ManagerID      *string         `json:"manager_id"`
	Status         workflow.Status `json:"status"`
	LastRemindedAt *time.Time      `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Route returns the approval route snapshot of the request.
func (b *RequestBase) Route() workflow.Route {
	return workflow.Route{
		EmployeeID: b.EmployeeID,
		TeamLeadID: Deref(b.TeamLeadID),
		ManagerID:  Deref(b.ManagerID),
	}
}

// Involves reports whether userID is the requester or one of its approvers.
func (b *RequestBase) Involves(userID string) bool {
	return b.EmployeeID == userID || Deref(b.TeamLeadID) == userID || Deref(b.ManagerID) == userID
}

// RequestFilter narrows a request listing. From/To bound the request's own
// date column.
type RequestFilter struct {
	Status workflow.Status
	From   string
	To     string
	Limit  int
	Offset int
}

// Normalize validates the filter and applies the paging defaults.
func (f *RequestFilter) Normalize() error {
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("invalid status %q", f.Status)
	}
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := tz.ParseDate(d); err != nil {
			return fmt.Errorf("dates must be YYYY-MM-DD")
		}
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

// DecisionRequest is the body of an approve or reject call.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

func (r *DecisionRequest) Validate() error {
	r.Comment = strings.TrimSpace(r.Comment)
	if utf8.RuneCountInString(r.Comment) > 1000 {
		return fmt.Errorf("comment must be at most 1000 characters")
	}
	return nil
}

func validateReason(reason string) error {
	n := utf8.RuneCountInString(reason)
	if n < 1 || n > 500 {
		return fmt.Errorf("reason must be between 1 and 500 characters")
	}
	return nil
}
