package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mzielinski/usermgmt-backend/api/responses"
	"github.com/mzielinski/usermgmt-backend/api/validators"
	"github.com/mzielinski/usermgmt-backend/internal/users"
	pkgerrors "github.com/mzielinski/usermgmt-backend/pkg/errors"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
	"github.com/mzielinski/usermgmt-backend/pkg/pagination"
)

type createEmailRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	IsPrimary *bool  `json:"is_primary,omitempty"`
}

type createUserRequest struct {
	FirstName   string               `json:"first_name" validate:"required,max=255"`
	LastName    string               `json:"last_name" validate:"required,max=255"`
	PhoneNumber string               `json:"phone_number" validate:"required,phone,max=20"`
	Emails      []createEmailRequest `json:"emails" validate:"required,min=1,max=10,dive"`
}

func (req *createUserRequest) normalize() error {
	seen := map[string]bool{}
	primaries := 0
	for _, e := range req.Emails {
		addr := strings.ToLower(strings.TrimSpace(e.Email))
		if seen[addr] {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate email addresses are not allowed").
				WithDetails(map[string]string{"emails": addr})
		}
		seen[addr] = true
		if e.IsPrimary != nil && *e.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "only one email can be marked as primary")
	}
	// no explicit primary elects the first address
	if primaries == 0 {
		t := true
		req.Emails[0].IsPrimary = &t
	}
	return nil
}

func (req *createUserRequest) toInput() users.CreateUserInput {
	input := users.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	for _, e := range req.Emails {
		input.Emails = append(input.Emails, users.CreateEmailInput{
			Address:   e.Email,
			IsPrimary: e.IsPrimary != nil && *e.IsPrimary,
		})
	}
	return input
}

type updateEmailDirective struct {
	ID        *uint64 `json:"id,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
	Delete    *bool   `json:"delete,omitempty"`
}

func (d updateEmailDirective) isDelete() bool {
	return d.Delete != nil && *d.Delete
}

type updateUserRequest struct {
	FirstName   *string                 `json:"first_name,omitempty" validate:"omitempty,min=1,max=255"`
	LastName    *string                 `json:"last_name,omitempty" validate:"omitempty,min=1,max=255"`
	PhoneNumber *string                 `json:"phone_number,omitempty" validate:"omitempty,phone,max=20"`
	Emails      *[]updateEmailDirective `json:"emails,omitempty" validate:"omitempty,min=1,max=10,dive"`
}

func (req *updateUserRequest) validateDirectives() error {
	if req.Emails == nil {
		return nil
	}

	seen := map[string]bool{}
	remaining := 0
	primaries := 0
	for _, d := range *req.Emails {
		if d.Email != nil {
			addr := strings.ToLower(strings.TrimSpace(*d.Email))
			if seen[addr] {
				return pkgerrors.New(pkgerrors.CodeValidation, "duplicate email addresses are not allowed").
					WithDetails(map[string]string{"emails": addr})
			}
			seen[addr] = true
		}
		if d.isDelete() {
			continue
		}
		if d.Email == nil && d.ID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "email address is required")
		}
		remaining++
		if d.IsPrimary != nil && *d.IsPrimary {
			primaries++
		}
	}

	if primaries > 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "only one email can be marked as primary")
	}
	if remaining == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one email must remain")
	}
	if primaries == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one email must be marked as primary")
	}
	return nil
}

func (req *updateUserRequest) toInput() users.UpdateUserInput {
	input := users.UpdateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Emails != nil {
		directives := make([]users.EmailDirective, 0, len(*req.Emails))
		for _, d := range *req.Emails {
			directives = append(directives, users.EmailDirective{
				ID:        d.ID,
				Address:   d.Email,
				IsPrimary: d.IsPrimary,
				Delete:    d.isDelete(),
			})
		}
		input.Emails = directives
	}
	return input
}

// UsersList returns a paginated page of users with search and sorting.
func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := users.ListQuery{
			Search: r.URL.Query().Get("search"),
			Sort:   r.URL.Query().Get("sort"),
			Order:  r.URL.Query().Get("order"),
			Page:   pagination.Params{Page: page, PerPage: perPage},
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := pagination.MetaFor(query.Page, result.Total, len(result.Users))
		responses.WritePage(w, pagination.Page{
			Data:  result.Users,
			Meta:  meta,
			Links: pagination.LinksFor(r.URL.Path, r.URL.Query(), meta),
		})
	}
}

// UsersCreate registers a user with their initial email set.
func UsersCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := body.normalize(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// UsersGet returns one user with their emails.
func UsersGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// UsersUpdate applies attribute changes and email directives.
func UsersUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := body.validateDirectives(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// UsersDelete soft-deletes a user and removes their emails.
func UsersDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// UsersWelcome dispatches the welcome notification to all of the
// user's addresses.
func UsersWelcome(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SendWelcome(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{
			"message": "welcome notification queued",
			"user_id": id,
		})
	}
}
