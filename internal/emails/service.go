package emails

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

// Service manages a user's email collection as a nested resource.
// Every operation is scoped to the owning user; touching another
// user's rows is rejected outright rather than reported as missing.
type Service interface {
	List(ctx context.Context, userID uint64, query ListQuery) (*ListResult, error)
	Add(ctx context.Context, userID uint64, input AddInput) (*EmailDTO, error)
	Get(ctx context.Context, userID, emailID uint64) (*EmailDTO, error)
	Update(ctx context.Context, userID, emailID uint64, input UpdateInput) (*EmailDTO, error)
	Delete(ctx context.Context, userID, emailID uint64) error
}

type serviceImpl struct {
	repo Repository
	tx   TxRunner
	logg *logger.Logger
}

// NewService wires the nested email resource service.
func NewService(repo Repository, tx TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("emails: repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("emails: transaction runner is required")
	}
	return &serviceImpl{repo: repo, tx: tx, logg: logg}, nil
}

func (s *serviceImpl) List(ctx context.Context, userID uint64, query ListQuery) (*ListResult, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	page := query.Page.Normalize()
	rows, total, err := s.repo.ListForUser(ctx, userID, page.PerPage, query.Page.Offset())
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing user emails")
	}

	dtos := make([]EmailDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return &ListResult{Emails: dtos, Total: total}, nil
}

func (s *serviceImpl) Add(ctx context.Context, userID uint64, input AddInput) (*EmailDTO, error) {
	ctx = s.logg.WithUserID(ctx, userID)

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	// top-level additions reject an address already present anywhere
	// in the system, unlike the tolerant reconciliation path
	taken, err := s.repo.AddressExists(ctx, input.Address)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "checking address uniqueness")
	}
	if taken {
		return nil, errors.New(errors.CodeConflict, "email address already registered").
			WithDetails(map[string]string{"field": "email"})
	}

	email := &models.Email{
		UserID:    userID,
		Address:   input.Address,
		IsPrimary: input.IsPrimary,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Create(ctx, email); err != nil {
			if db.IsUniqueViolation(err, emailUniqueConstraint) {
				return errors.New(errors.CodeConflict, "email address already registered").
					WithDetails(map[string]string{"field": "email"})
			}
			return errors.Wrap(errors.CodeInternal, err, "creating email")
		}
		if email.IsPrimary {
			if err := repo.DemoteOthers(ctx, userID, email.ID); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "demoting previous primary")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "email added")
	return FromModel(email), nil
}

func (s *serviceImpl) Get(ctx context.Context, userID, emailID uint64) (*EmailDTO, error) {
	email, err := s.findOwned(ctx, userID, emailID)
	if err != nil {
		return nil, err
	}
	return FromModel(email), nil
}

func (s *serviceImpl) Update(ctx context.Context, userID, emailID uint64, input UpdateInput) (*EmailDTO, error) {
	ctx = s.logg.WithUserID(ctx, userID)

	email, err := s.findOwned(ctx, userID, emailID)
	if err != nil {
		return nil, err
	}

	if input.Address != nil {
		email.Address = *input.Address
	}
	if input.IsPrimary != nil {
		email.IsPrimary = *input.IsPrimary
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Update(ctx, email); err != nil {
			if db.IsUniqueViolation(err, emailUniqueConstraint) {
				return errors.New(errors.CodeConflict, "email address already registered").
					WithDetails(map[string]string{"field": "email"})
			}
			return errors.Wrap(errors.CodeInternal, err, "updating email")
		}
		if email.IsPrimary {
			if err := repo.DemoteOthers(ctx, userID, email.ID); err != nil {
				return errors.Wrap(errors.CodeInternal, err, "demoting previous primary")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "email updated")
	return s.Get(ctx, userID, emailID)
}

func (s *serviceImpl) Delete(ctx context.Context, userID, emailID uint64) error {
	ctx = s.logg.WithUserID(ctx, userID)

	if _, err := s.findOwned(ctx, userID, emailID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, emailID); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting email")
	}

	s.logg.Info(ctx, "email deleted")
	return nil
}

func (s *serviceImpl) requireUser(ctx context.Context, userID uint64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "loading user")
	}
	if !exists {
		return errors.New(errors.CodeNotFound, "user not found")
	}
	return nil
}

// findOwned loads the email and verifies ownership. A row that exists
// but belongs to someone else is a forbidden access, not a missing one.
func (s *serviceImpl) findOwned(ctx context.Context, userID, emailID uint64) (*models.Email, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	email, err := s.repo.FindByID(ctx, emailID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.CodeNotFound, "email not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading email")
	}
	if email.UserID != userID {
		return nil, errors.New(errors.CodeForbidden, "email does not belong to this user")
	}
	return email, nil
}
