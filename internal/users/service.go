package users

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mzielinski/usermgmt-backend/pkg/db"
	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
	"github.com/mzielinski/usermgmt-backend/pkg/errors"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
)

const emailUniqueConstraint = "idx_emails_user_address"

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// WelcomeNotifier dispatches the registration greeting for a user.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *models.User, addresses []string) error
}

// Service is the user lifecycle surface: CRUD over user records plus
// reconciliation of their owned email addresses and welcome dispatch.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	Get(ctx context.Context, id uint64) (*UserDTO, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Update(ctx context.Context, id uint64, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, id uint64) error
	SendWelcome(ctx context.Context, id uint64) error
}

type serviceImpl struct {
	repo     Repository
	tx       TxRunner
	notifier WelcomeNotifier
	logg     *logger.Logger
}

// NewService wires the user lifecycle service.
func NewService(repo Repository, tx TxRunner, notifier WelcomeNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("users: transaction runner is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("users: welcome notifier is required")
	}
	return &serviceImpl{repo: repo, tx: tx, notifier: notifier, logg: logg}, nil
}

func (s *serviceImpl) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	user := &models.User{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Create(ctx, user); err != nil {
			return s.mapWriteError(err, "creating user")
		}

		for _, in := range input.Emails {
			email := &models.Email{
				UserID:    user.ID,
				Address:   in.Address,
				IsPrimary: in.IsPrimary,
			}
			if err := repo.CreateEmail(ctx, email); err != nil {
				return s.mapWriteError(err, "creating user email")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(ctx, user.ID)
	s.logg.Info(ctx, "user created")

	return s.Get(ctx, user.ID)
}

func (s *serviceImpl) Get(ctx context.Context, id uint64) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading user")
	}
	return FromModel(user), nil
}

func (s *serviceImpl) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing users")
	}

	dtos := make([]UserDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return &ListResult{Users: dtos, Total: total}, nil
}

func (s *serviceImpl) Update(ctx context.Context, id uint64, input UpdateUserInput) (*UserDTO, error) {
	ctx = s.logg.WithUserID(ctx, id)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "user not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading user")
		}

		attrs := map[string]any{}
		if input.FirstName != nil {
			attrs["first_name"] = *input.FirstName
		}
		if input.LastName != nil {
			attrs["last_name"] = *input.LastName
		}
		if input.PhoneNumber != nil {
			attrs["phone_number"] = *input.PhoneNumber
		}
		if err := repo.UpdateAttributes(ctx, id, attrs); err != nil {
			return s.mapWriteError(err, "updating user attributes")
		}

		if input.Emails != nil {
			if err := s.applyEmailDirectives(ctx, repo, id, input.Emails); err != nil {
				return s.mapWriteError(err, "reconciling user emails")
			}
			if err := s.repairPrimary(ctx, repo, id); err != nil {
				return s.mapWriteError(err, "repairing primary email")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "user updated")
	return s.Get(ctx, id)
}

func (s *serviceImpl) Delete(ctx context.Context, id uint64) error {
	ctx = s.logg.WithUserID(ctx, id)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.CodeNotFound, "user not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading user")
		}

		if err := repo.DeleteEmailsForUser(ctx, id); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "deleting user emails")
		}
		if err := repo.SoftDelete(ctx, id); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "deleting user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(ctx, "user deleted")
	return nil
}

func (s *serviceImpl) SendWelcome(ctx context.Context, id uint64) error {
	ctx = s.logg.WithUserID(ctx, id)

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New(errors.CodeNotFound, "user not found")
		}
		return errors.Wrap(errors.CodeInternal, err, "loading user")
	}

	addresses := make([]string, 0, len(user.Emails))
	for _, e := range user.Emails {
		addresses = append(addresses, e.Address)
	}
	if len(addresses) == 0 {
		s.logg.Warn(ctx, "welcome requested for user without emails")
		return nil
	}

	if err := s.notifier.SendWelcome(ctx, user, addresses); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "dispatching welcome notification")
	}

	s.logg.Info(ctx, "welcome notification dispatched")
	return nil
}

func (s *serviceImpl) mapWriteError(err error, action string) error {
	if err == nil {
		return nil
	}
	if typed := errors.As(err); typed != nil {
		return typed
	}
	if db.IsUniqueViolation(err, emailUniqueConstraint) {
		return errors.New(errors.CodeConflict, "email address already exists for this user").
			WithDetails(map[string]string{"field": "email"})
	}
	return errors.Wrap(errors.CodeInternal, err, action)
}
