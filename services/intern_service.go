package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/models"
	"github.com/akinalp/workdesk/pkg"
	"github.com/akinalp/workdesk/repository"
)

// InternService manages intern accounts: a user with role intern plus
// an internship profile, always written together.
type InternService interface {
	Create(ctx context.Context, req *models.CreateInternRequest) (*models.Intern, error)
	Get(ctx context.Context, viewer *models.User, id string) (*models.Intern, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.Intern, error)
	Update(ctx context.Context, actor *models.User, id string, req *models.UpdateInternRequest) (*models.Intern, error)
}

type internService struct {
	db         *sql.DB
	internRepo repository.InternRepository
}

func NewInternService(db *sql.DB, internRepo repository.InternRepository) InternService {
	return &internService{db: db, internRepo: internRepo}
}

func (s *internService) Create(ctx context.Context, req *models.CreateInternRequest) (*models.Intern, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := newUserFromRequest(&req.CreateUserRequest)
	if err != nil {
		return nil, err
	}

	var intern *models.Intern
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := repository.NewSQLiteUserRepo(tx)
		interns := repository.NewSQLiteInternRepo(tx)

		if err := validateReportingLine(ctx, users, "", user.TeamLeadID, user.ManagerID); err != nil {
			return err
		}
		if err := validateMentor(ctx, users, "", req.MentorID); err != nil {
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		if err := interns.Upsert(ctx, profileFromFields(user.ID, &req.InternFields)); err != nil {
			return err
		}

		var err error
		intern, err = interns.Get(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("component", "employees").Str("user_id", intern.ID).Msg("intern created")
	intern.PasswordHash = ""
	return intern, nil
}

func (s *internService) Get(ctx context.Context, viewer *models.User, id string) (*models.Intern, error) {
	intern, err := s.internRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewUser(viewer, &intern.User) && models.Deref(intern.Profile.MentorID) != viewer.ID {
		return nil, fmt.Errorf("%w: you cannot view this intern", pkg.ErrForbidden)
	}
	intern.PasswordHash = ""
	return intern, nil
}

func (s *internService) List(ctx context.Context, filter models.UserFilter) ([]models.Intern, error) {
	if filter.Limit <= 0 || filter.Limit > maxUserPage {
		filter.Limit = maxUserPage
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	interns, err := s.internRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if interns == nil {
		return []models.Intern{}, nil
	}
	for i := range interns {
		interns[i].PasswordHash = ""
	}
	return interns, nil
}

func (s *internService) Update(ctx context.Context, actor *models.User, id string, req *models.UpdateInternRequest) (*models.Intern, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	var intern *models.Intern
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		users := repository.NewSQLiteUserRepo(tx)
		interns := repository.NewSQLiteInternRepo(tx)

		current, err := interns.Get(ctx, id)
		if err != nil {
			return err
		}
		user := &current.User
		if actor.ID == id && req.IsActive != nil && !*req.IsActive {
			return fmt.Errorf("%w: you cannot deactivate yourself", pkg.ErrForbidden)
		}

		wasActive := user.IsActive
		req.Apply(user)
		if err := validateReportingLine(ctx, users, user.ID, user.TeamLeadID, user.ManagerID); err != nil {
			return err
		}
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		if wasActive && !user.IsActive {
			if err := repository.NewSQLiteSessionRepo(tx).DeleteByUserID(ctx, user.ID); err != nil {
				return err
			}
		}

		if req.Profile != nil {
			if err := validateMentor(ctx, users, user.ID, req.Profile.MentorID); err != nil {
				return err
			}
			if err := interns.Upsert(ctx, profileFromFields(user.ID, req.Profile)); err != nil {
				return err
			}
		}

		intern, err = interns.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	intern.PasswordHash = ""
	return intern, nil
}

// validateMentor requires an active user other than the intern. Any role
// may mentor.
func validateMentor(ctx context.Context, users repository.UserRepository, selfID string, mentorID *string) error {
	if mentorID == nil {
		return nil
	}
	if *mentorID == selfID {
		return fmt.Errorf("%w: mentor_id cannot be the intern", pkg.ErrBadRequest)
	}
	mentor, err := users.GetByID(ctx, *mentorID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: mentor_id does not reference a user", pkg.ErrBadRequest)
		}
		return err
	}
	if !mentor.IsActive {
		return fmt.Errorf("%w: mentor_id references a deactivated user", pkg.ErrBadRequest)
	}
	return nil
}

func profileFromFields(userID string, f *models.InternFields) *models.InternProfile {
	return &models.InternProfile{
		UserID:    userID,
		College:   f.College,
		Course:    f.Course,
		MentorID:  f.MentorID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Stipend:   f.Stipend,
	}
}
