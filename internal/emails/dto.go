package emails

import (
	"time"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
	"github.com/mzielinski/usermgmt-backend/pkg/pagination"
)

// EmailDTO is the transport shape for an email address row.
type EmailDTO struct {
	ID         uint64     `json:"id"`
	UserID     uint64     `json:"user_id"`
	Email      string     `json:"email"`
	IsPrimary  bool       `json:"is_primary"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AddInput carries a new address for a user's collection.
type AddInput struct {
	Address   string
	IsPrimary bool
}

// UpdateInput mutates an existing address; nil fields stay untouched.
type UpdateInput struct {
	Address   *string
	IsPrimary *bool
}

// ListResult wraps one page of a user's emails and the total count.
type ListResult struct {
	Emails []EmailDTO
	Total  int64
}

// ListQuery configures pagination for a user's email listing.
type ListQuery struct {
	Page pagination.Params
}

func FromModel(e *models.Email) *EmailDTO {
	if e == nil {
		return nil
	}
	return &EmailDTO{
		ID:         e.ID,
		UserID:     e.UserID,
		Email:      e.Address,
		IsPrimary:  e.IsPrimary,
		IsVerified: e.IsVerified(),
		VerifiedAt: e.VerifiedAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
