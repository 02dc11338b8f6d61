package users

import (
	"time"

	"github.com/mzielinski/usermgmt-backend/pkg/db/models"
)

// EmailDTO is the transport shape for a single email address.
type EmailDTO struct {
	ID         uint64     `json:"id"`
	Email      string     `json:"email"`
	IsPrimary  bool       `json:"is_primary"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UserDTO is the transport shape for a user with eagerly loaded emails.
type UserDTO struct {
	ID           uint64     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FullName     string     `json:"full_name"`
	PhoneNumber  string     `json:"phone_number"`
	Emails       []EmailDTO `json:"emails"`
	EmailsCount  int        `json:"emails_count"`
	PrimaryEmail *string    `json:"primary_email"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateEmailInput is one email attached during user creation.
type CreateEmailInput struct {
	Address   string
	IsPrimary bool
}

// CreateUserInput holds validated attributes for a new user.
type CreateUserInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Emails      []CreateEmailInput
}

// EmailDirective is one per-email change applied during a user update.
// A nil ID means create; Delete plus an ID removes the email; an ID without
// Delete updates the existing email. Nil optional fields keep their zero
// values (IsPrimary defaults to false).
type EmailDirective struct {
	ID        *uint64
	Address   *string
	IsPrimary *bool
	Delete    bool
}

// UpdateUserInput carries partial attribute updates. Nil pointer fields are
// absent from the request and must stay untouched; a nil Emails slice means
// the email set is not being modified.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Emails      []EmailDirective
}

// ListResult wraps one page of users and the total row count.
type ListResult struct {
	Users []UserDTO
	Total int64
}

func EmailFromModel(e models.Email) EmailDTO {
	return EmailDTO{
		ID:         e.ID,
		Email:      e.Address,
		IsPrimary:  e.IsPrimary,
		IsVerified: e.IsVerified(),
		VerifiedAt: e.VerifiedAt,
		CreatedAt:  e.CreatedAt,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	emails := make([]EmailDTO, 0, len(u.Emails))
	var primary *string
	for _, e := range u.Emails {
		emails = append(emails, EmailFromModel(e))
		if e.IsPrimary && primary == nil {
			addr := e.Address
			primary = &addr
		}
	}

	return &UserDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		PhoneNumber:  u.PhoneNumber,
		Emails:       emails,
		EmailsCount:  len(emails),
		PrimaryEmail: primary,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
