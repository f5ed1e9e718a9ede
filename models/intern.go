package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/akinalp/workdesk/pkg/tz"
)

// InternProfile is the internship record attached to a user with role intern.
type InternProfile struct {
	UserID    string  `json:"user_id"`
	College   string  `json:"college"`
	Course    string  `json:"course"`
	MentorID  *string `json:"mentor_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Stipend   float64 `json:"stipend"`
}

// Intern is the user plus their profile, as the API returns it.
type Intern struct {
	User
	Profile InternProfile `json:"profile"`
}

// InternFields is the profile part of the create and update payloads.
type InternFields struct {
	College   string  `json:"college"`
	Course    string  `json:"course"`
	MentorID  *string `json:"mentor_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Stipend   float64 `json:"stipend"`
}

// Validate checks the internship period and stipend.
func (f *InternFields) Validate() error {
	f.College = strings.TrimSpace(f.College)
	f.Course = strings.TrimSpace(f.Course)
	if utf8.RuneCountInString(f.College) > 200 || utf8.RuneCountInString(f.Course) > 200 {
		return fmt.Errorf("college and course must be at most 200 characters")
	}
	start, err := tz.ParseDate(f.StartDate)
	if err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	end, err := tz.ParseDate(f.EndDate)
	if err != nil {
		return fmt.Errorf("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	if f.Stipend < 0 {
		return fmt.Errorf("stipend must not be negative")
	}
	f.MentorID = OptionalID(Deref(f.MentorID))
	return nil
}

// CreateInternRequest creates the account and the profile together.
type CreateInternRequest struct {
	CreateUserRequest
	InternFields
}

// Validate checks both halves and forces the intern role.
func (r *CreateInternRequest) Validate() error {
	r.Role = RoleIntern
	if err := r.CreateUserRequest.Validate(); err != nil {
		return err
	}
	return r.InternFields.Validate()
}

// UpdateInternRequest updates the account fields that are present and,
// when Profile is set, replaces the profile.
type UpdateInternRequest struct {
	UpdateUserRequest
	Profile *InternFields `json:"profile"`
}

func (r *UpdateInternRequest) Validate() error {
	if r.Role != nil && *r.Role != RoleIntern {
		return fmt.Errorf("an intern's role cannot be changed here")
	}
	if err := r.UpdateUserRequest.Validate(); err != nil {
		return err
	}
	if r.Profile != nil {
		return r.Profile.Validate()
	}
	return nil
}
