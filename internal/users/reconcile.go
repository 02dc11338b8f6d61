package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
)

// applyEmailDirectives walks the submitted email directives in order and
// mutates the user's email set accordingly. Directives referencing email
// rows that do not belong to the user are skipped without error, so a
// stale client payload cannot fail the whole update.
func (s *serviceImpl) applyEmailDirectives(ctx context.Context, repo Repository, userID uint64, directives []EmailDirective) error {
	for _, d := range directives {
		switch {
		case d.Delete:
			if d.ID == nil {
				continue
			}
			if _, err := repo.DeleteUserEmail(ctx, userID, *d.ID); err != nil {
				return err
			}
		case d.ID != nil:
			email, err := repo.FindUserEmail(ctx, userID, *d.ID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}
			if d.Address != nil {
				email.Address = *d.Address
			}
			if d.IsPrimary != nil {
				email.IsPrimary = *d.IsPrimary
			}
			if err := repo.UpdateEmail(ctx, email); err != nil {
				return err
			}
		default:
			if d.Address == nil {
				continue
			}
			email := &models.Email{
				UserID:  userID,
				Address: *d.Address,
			}
			if d.IsPrimary != nil {
				email.IsPrimary = *d.IsPrimary
			}
			if err := repo.CreateEmail(ctx, email); err != nil {
				return err
			}
		}
	}
	return nil
}

// repairPrimary restores the single-primary invariant over the user's
// remaining emails: when several rows are flagged primary, all but the
// first in persisted order are demoted; when none is flagged and at
// least one email exists, the first is promoted. An empty set is left
// alone.
func (s *serviceImpl) repairPrimary(ctx context.Context, repo Repository, userID uint64) error {
	emails, err := repo.FindUserEmails(ctx, userID)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return nil
	}

	primarySeen := false
	for i := range emails {
		if !emails[i].IsPrimary {
			continue
		}
		if !primarySeen {
			primarySeen = true
			continue
		}
		emails[i].IsPrimary = false
		if err := repo.UpdateEmail(ctx, &emails[i]); err != nil {
			return err
		}
	}

	if !primarySeen {
		emails[0].IsPrimary = true
		if err := repo.UpdateEmail(ctx, &emails[0]); err != nil {
			return err
		}
	}
	return nil
}
