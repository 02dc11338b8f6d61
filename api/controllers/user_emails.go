package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mzielinski/usermgmt-backend/api/responses"
	"github.com/mzielinski/usermgmt-backend/api/validators"
	"github.com/mzielinski/usermgmt-backend/internal/emails"
	pkgerrors "github.com/mzielinski/usermgmt-backend/pkg/errors"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
	"github.com/mzielinski/usermgmt-backend/pkg/pagination"
)

type addEmailRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	IsPrimary *bool  `json:"is_primary,omitempty"`
}

type updateEmailRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	IsPrimary *bool   `json:"is_primary,omitempty"`
}

func emailPathIDs(r *http.Request) (uint64, uint64, error) {
	userID, err := validators.ParsePathID(chi.URLParam(r, "userID"))
	if err != nil {
		return 0, 0, err
	}
	emailID, err := validators.ParsePathID(chi.URLParam(r, "emailID"))
	if err != nil {
		return 0, 0, err
	}
	return userID, emailID, nil
}

// UserEmailsList returns a page of the user's email addresses.
func UserEmailsList(svc emails.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email service unavailable"))
			return
		}

		userID, err := validators.ParsePathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

		params := pagination.Params{Page: page, PerPage: perPage}
		result, err := svc.List(r.Context(), userID, emails.ListQuery{Page: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := pagination.MetaFor(params, result.Total, len(result.Emails))
		responses.WritePage(w, pagination.Page{
			Data:  result.Emails,
			Meta:  meta,
			Links: pagination.LinksFor(r.URL.Path, r.URL.Query(), meta),
		})
	}
}

// UserEmailsAdd attaches a new address to the user.
func UserEmailsAdd(svc emails.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email service unavailable"))
			return
		}

		userID, err := validators.ParsePathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addEmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Add(r.Context(), userID, emails.AddInput{
			Address:   body.Email,
			IsPrimary: body.IsPrimary != nil && *body.IsPrimary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UserEmailsGet returns one owned email address.
func UserEmailsGet(svc emails.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email service unavailable"))
			return
		}

		userID, emailID, err := emailPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), userID, emailID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// UserEmailsUpdate changes an owned address or its primary flag.
func UserEmailsUpdate(svc emails.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email service unavailable"))
			return
		}

		userID, emailID, err := emailPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateEmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Email == nil && body.IsPrimary == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}

		dto, err := svc.Update(r.Context(), userID, emailID, emails.UpdateInput{
			Address:   body.Email,
			IsPrimary: body.IsPrimary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// UserEmailsDelete removes one owned address.
func UserEmailsDelete(svc emails.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "email service unavailable"))
			return
		}

		userID, emailID, err := emailPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, emailID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
