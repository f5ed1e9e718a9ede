package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/pkg/i18n"
	"github.com/akinalp/workdesk/repository"
)

const maxUserPage = 500

// EmployeeService manages user accounts and the reporting lines
// (team lead, manager) the approval workflow routes on.
type EmployeeService interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.UpdateUserRequest) (*models.User, error)
	// Deactivate is a soft delete: the row stays for history, the sessions go.
	Deactivate(ctx context.Context, actor *models.User, id string) error
	// Team returns the caller's direct reports; an admin gets every active user.
	Team(ctx context.Context, viewer *models.User) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	// EnsureAdmin creates an admin account unless the email already exists.
	// The bool reports whether an account was created.
	EnsureAdmin(ctx context.Context, email, password, fullName string) (*models.User, bool, error)
}

type employeeService struct {
	db          *sql.DB
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

func NewEmployeeService(
	db *sql.DB,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
) EmployeeService {
	return &employeeService{
		db:          db,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func (s *employeeService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if req.Role == models.RoleIntern {
		return nil, fmt.Errorf("%w: interns are created through the intern endpoints", pkg.ErrBadRequest)
	}
	if err := validateReportingLine(ctx, s.userRepo, "", req.TeamLeadID, req.ManagerID); err != nil {
		return nil, err
	}

	user, err := newUserFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("component", "employees").Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	user.PasswordHash = ""
	return user, nil
}

func (s *employeeService) Get(ctx context.Context, viewer *models.User, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewUser(viewer, user) {
		return nil, fmt.Errorf("%w: you cannot view this user", pkg.ErrForbidden)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *employeeService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, fmt.Errorf("%w: invalid role %q", pkg.ErrBadRequest, filter.Role)
	}
	if filter.Limit <= 0 || filter.Limit > maxUserPage {
		filter.Limit = maxUserPage
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return scrubUsers(users), nil
}

func (s *employeeService) Update(ctx context.Context, actor *models.User, id string, req *models.UpdateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	var user *models.User
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := repository.NewSQLiteUserRepo(tx)

		var err error
		user, err = users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkRoleChange(actor, user, req.Role); err != nil {
			return err
		}
		if actor.ID == id && req.IsActive != nil && !*req.IsActive {
			return fmt.Errorf("%w: you cannot deactivate yourself", pkg.ErrForbidden)
		}

		wasActive := user.IsActive
		prevRole, prevLead, prevManager := user.Role, models.Deref(user.TeamLeadID), models.Deref(user.ManagerID)
		req.Apply(user)

		// Only links the request touches are checked, so a stale link left by
		// an approver's demotion does not block unrelated edits.
		roleChanged := user.Role != prevRole
		var lead, manager *string
		if roleChanged || models.Deref(user.TeamLeadID) != prevLead {
			lead = user.TeamLeadID
		}
		if roleChanged || models.Deref(user.ManagerID) != prevManager {
			manager = user.ManagerID
		}
		if err := validateReportingLine(ctx, users, user.ID, lead, manager); err != nil {
			return err
		}
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		if wasActive && !user.IsActive {
			return repository.NewSQLiteSessionRepo(tx).DeleteByUserID(ctx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *employeeService) Deactivate(ctx context.Context, actor *models.User, id string) error {
	if actor.ID == id {
		return fmt.Errorf("%w: you cannot deactivate yourself", pkg.ErrForbidden)
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := repository.NewSQLiteUserRepo(tx)
		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !user.IsActive {
			return nil
		}
		user.IsActive = false
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		return repository.NewSQLiteSessionRepo(tx).DeleteByUserID(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info().Str("component", "employees").Str("user_id", id).Str("by", actor.ID).Msg("user deactivated")
	return nil
}

func (s *employeeService) Team(ctx context.Context, viewer *models.User) ([]models.User, error) {
	if viewer.IsAdmin() {
		active := true
		return s.List(ctx, models.UserFilter{Active: &active})
	}
	users, err := s.userRepo.ListReports(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return scrubUsers(users), nil
}

func (s *employeeService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if req.Language != nil && !i18n.IsSupported(*req.Language) {
		return nil, fmt.Errorf("%w: unsupported language %q", pkg.ErrBadRequest, *req.Language)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *employeeService) EnsureAdmin(ctx context.Context, email, password, fullName string) (*models.User, bool, error) {
	req := &models.CreateUserRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     models.RoleAdmin,
	}
	if err := req.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		existing.PasswordHash = ""
		return existing, false, nil
	}
	if !errors.Is(err, pkg.ErrNotFound) {
		return nil, false, err
	}

	user, err := newUserFromRequest(req)
	if err != nil {
		return nil, false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	log.Info().Str("component", "employees").Str("email", user.Email).Msg("admin account created")
	user.PasswordHash = ""
	return user, true, nil
}

func newUserFromRequest(req *models.CreateUserRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
		Department:   req.Department,
		Designation:  req.Designation,
		TeamLeadID:   req.TeamLeadID,
		ManagerID:    req.ManagerID,
		JoinDate:     req.JoinDate,
		Language:     req.Language,
		IsActive:     true,
	}, nil
}

// validateReportingLine checks that the team lead and manager exist, are
// active, hold a role that can approve, and are not the user itself.
// selfID is "" for a user that does not exist yet.
func validateReportingLine(ctx context.Context, users repository.UserRepository, selfID string, teamLeadID, managerID *string) error {
	check := func(field string, id *string, allowed func(models.Role) bool) error {
		if id == nil {
			return nil
		}
		if *id == selfID {
			return fmt.Errorf("%w: %s cannot be the user itself", pkg.ErrBadRequest, field)
		}
		ref, err := users.GetByID(ctx, *id)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				return fmt.Errorf("%w: %s does not reference a user", pkg.ErrBadRequest, field)
			}
			return err
		}
		if !ref.IsActive {
			return fmt.Errorf("%w: %s references a deactivated user", pkg.ErrBadRequest, field)
		}
		if !allowed(ref.Role) {
			return fmt.Errorf("%w: %s references a user with role %s", pkg.ErrBadRequest, field, ref.Role)
		}
		return nil
	}

	if err := check("team_lead_id", teamLeadID, models.Role.CanLead); err != nil {
		return err
	}
	return check("manager_id", managerID, models.Role.CanManage)
}

// checkRoleChange guards role edits: an admin cannot demote themselves,
// and the intern role only moves through the intern endpoints.
func checkRoleChange(actor, user *models.User, newRole *models.Role) error {
	if newRole == nil || *newRole == user.Role {
		return nil
	}
	if actor.ID == user.ID && user.IsAdmin() {
		return fmt.Errorf("%w: you cannot change your own admin role", pkg.ErrForbidden)
	}
	if *newRole == models.RoleIntern || user.Role == models.RoleIntern {
		return fmt.Errorf("%w: use the intern endpoints to change intern accounts", pkg.ErrBadRequest)
	}
	return nil
}

// canViewUser allows the user themselves, their approvers and anyone
// allowed to read employees.
func canViewUser(viewer, target *models.User) bool {
	if viewer.ID == target.ID || viewer.Role.Permissions().Has(models.PermReadEmployees) {
		return true
	}
	return models.Deref(target.TeamLeadID) == viewer.ID || models.Deref(target.ManagerID) == viewer.ID
}

func scrubUsers(users []models.User) []models.User {
	if users == nil {
		return []models.User{}
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users
}
