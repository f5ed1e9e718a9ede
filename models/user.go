// Package models defines the domain types shared by every layer: database
// rows, API payloads and the request bodies the handlers decode.
//
// `json:"-"` keeps secrets (password hashes, refresh tokens) out of API
// responses. Nullable columns are pointers.
package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akinalp/workdesk/pkg/tz"
)

// Role is the organisational role of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleTeamLead Role = "team_lead"
	RoleEmployee Role = "employee"
	RoleIntern   Role = "intern"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeamLead, RoleEmployee, RoleIntern:
		return true
	}
	return false
}

// CanLead reports whether a user with this role may be assigned as a team lead.
func (r Role) CanLead() bool {
	return r == RoleTeamLead || r == RoleManager || r == RoleAdmin
}

// CanManage reports whether a user with this role may be assigned as a manager.
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

// User is an account: employee, intern, approver or admin.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	TeamLeadID   *string   `json:"team_lead_id"`
	ManagerID    *string   `json:"manager_id"`
	JoinDate     string    `json:"join_date"`
	Language     string    `json:"language"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Deref returns the value of an optional id, "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OptionalID turns "" into nil for nullable id columns.
func OptionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateUserRequest is the admin payload for a new employee account.
type CreateUserRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	Phone       string  `json:"phone"`
	Role        Role    `json:"role"`
	Department  string  `json:"department"`
	Designation string  `json:"designation"`
	JoinDate    string  `json:"join_date"`
	TeamLeadID  *string `json:"team_lead_id"`
	ManagerID   *string `json:"manager_id"`
	Language    string  `json:"language"`
}

// Validate normalises and checks the payload.
func (r *CreateUserRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	r.FullName = strings.TrimSpace(r.FullName)
	if err := validateFullName(r.FullName); err != nil {
		return err
	}
	if r.Role == "" {
		r.Role = RoleEmployee
	}
	if !r.Role.Valid() {
		return fmt.Errorf("invalid role %q", r.Role)
	}
	r.Phone = strings.TrimSpace(r.Phone)
	if utf8.RuneCountInString(r.Phone) > 32 {
		return fmt.Errorf("phone must be at most 32 characters")
	}
	r.Department = strings.TrimSpace(r.Department)
	r.Designation = strings.TrimSpace(r.Designation)
	if r.JoinDate != "" {
		if _, err := tz.ParseDate(r.JoinDate); err != nil {
			return fmt.Errorf("join_date must be YYYY-MM-DD")
		}
	}
	if r.Language == "" {
		r.Language = "en"
	}
	r.TeamLeadID = OptionalID(Deref(r.TeamLeadID))
	r.ManagerID = OptionalID(Deref(r.ManagerID))
	return nil
}

// UpdateUserRequest is a partial admin update. For TeamLeadID and
// ManagerID, nil leaves the value alone and "" clears it.
type UpdateUserRequest struct {
	FullName    *string `json:"full_name"`
	Phone       *string `json:"phone"`
	Role        *Role   `json:"role"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
	JoinDate    *string `json:"join_date"`
	TeamLeadID  *string `json:"team_lead_id"`
	ManagerID   *string `json:"manager_id"`
	IsActive    *bool   `json:"is_active"`
}

// Validate checks the fields that are present.
func (r *UpdateUserRequest) Validate() error {
	if r.FullName != nil {
		name := strings.TrimSpace(*r.FullName)
		if err := validateFullName(name); err != nil {
			return err
		}
		r.FullName = &name
	}
	if r.Role != nil && !r.Role.Valid() {
		return fmt.Errorf("invalid role %q", *r.Role)
	}
	if r.Phone != nil && utf8.RuneCountInString(*r.Phone) > 32 {
		return fmt.Errorf("phone must be at most 32 characters")
	}
	if r.JoinDate != nil && *r.JoinDate != "" {
		if _, err := tz.ParseDate(*r.JoinDate); err != nil {
			return fmt.Errorf("join_date must be YYYY-MM-DD")
		}
	}
	return nil
}

// Apply copies the present fields onto u.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.FullName != nil {
		u.FullName = *r.FullName
	}
	if r.Phone != nil {
		u.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
	if r.Department != nil {
		u.Department = strings.TrimSpace(*r.Department)
	}
	if r.Designation != nil {
		u.Designation = strings.TrimSpace(*r.Designation)
	}
	if r.JoinDate != nil {
		u.JoinDate = *r.JoinDate
	}
	if r.TeamLeadID != nil {
		u.TeamLeadID = OptionalID(*r.TeamLeadID)
	}
	if r.ManagerID != nil {
		u.ManagerID = OptionalID(*r.ManagerID)
	}
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
}

// UpdateProfileRequest is what a user may change about themselves.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Language *string `json:"language"`
}

// Validate checks the fields that are present.
func (r *UpdateProfileRequest) Validate() error {
	if r.FullName != nil {
		name := strings.TrimSpace(*r.FullName)
		if err := validateFullName(name); err != nil {
			return err
		}
		r.FullName = &name
	}
	if r.Phone != nil && utf8.RuneCountInString(*r.Phone) > 32 {
		return fmt.Errorf("phone must be at most 32 characters")
	}
	return nil
}

// LoginRequest is the login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalises the email and checks both fields are present.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ChangePasswordRequest is the body of POST /api/users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserFilter narrows a user listing. Zero values mean "any".
type UserFilter struct {
	Role       Role
	Department string
	Active     *bool
	Search     string
	TeamLeadID string
	ManagerID  string
	Limit      int
	Offset     int
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	if utf8.RuneCountInString(email) > 254 {
		return fmt.Errorf("email is too long")
	}
	return nil
}

func validateFullName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > 100 {
		return fmt.Errorf("full name must be between 1 and 100 characters")
	}
	return nil
}
