package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mzielinski/usermgmt-backend/internal/users"
	pkgerrors "github.com/mzielinski/usermgmt-backend/pkg/errors"
)

type fakeUserService struct {
	createFn      func(ctx context.Context, input users.CreateUserInput) (*users.UserDTO, error)
	getFn         func(ctx context.Context, id uint64) (*users.UserDTO, error)
	listFn        func(ctx context.Context, query users.ListQuery) (*users.ListResult, error)
	updateFn      func(ctx context.Context, id uint64, input users.UpdateUserInput) (*users.UserDTO, error)
	deleteFn      func(ctx context.Context, id uint64) error
	sendWelcomeFn func(ctx context.Context, id uint64) error
}

func (f *fakeUserService) Create(ctx context.Context, input users.CreateUserInput) (*users.UserDTO, error) {
	return f.createFn(ctx, input)
}

func (f *fakeUserService) Get(ctx context.Context, id uint64) (*users.UserDTO, error) {
	return f.getFn(ctx, id)
}

func (f *fakeUserService) List(ctx context.Context, query users.ListQuery) (*users.ListResult, error) {
	return f.listFn(ctx, query)
}

func (f *fakeUserService) Update(ctx context.Context, id uint64, input users.UpdateUserInput) (*users.UserDTO, error) {
	return f.updateFn(ctx, id, input)
}

func (f *fakeUserService) Delete(ctx context.Context, id uint64) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeUserService) SendWelcome(ctx context.Context, id uint64) error {
	return f.sendWelcomeFn(ctx, id)
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rc := chi.NewRouteContext()
	for key, value := range params {
		rc.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestUsersListSuccess(t *testing.T) {
	svc := &fakeUserService{
		listFn: func(_ context.Context, query users.ListQuery) (*users.ListResult, error) {
			if query.Search != "anna" {
				t.Fatalf("expected search forwarded, got %q", query.Search)
			}
			if query.Page.PerPage != 5 {
				t.Fatalf("expected per_page 5, got %d", query.Page.PerPage)
			}
			return &users.ListResult{
				Users: []users.UserDTO{{ID: 1, FirstName: "Anna"}},
				Total: 11,
			}, nil
		},
	}
	handler := UsersList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?search=anna&per_page=5&page=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data []users.UserDTO `json:"data"`
		Meta struct {
			Total       int64 `json:"total"`
			PerPage     int   `json:"per_page"`
			CurrentPage int   `json:"current_page"`
			LastPage    int   `json:"last_page"`
		} `json:"meta"`
		Links struct {
			Prev *string `json:"prev"`
			Next *string `json:"next"`
		} `json:"links"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].FirstName != "Anna" {
		t.Fatalf("unexpected data %v", envelope.Data)
	}
	if envelope.Meta.Total != 11 || envelope.Meta.LastPage != 3 || envelope.Meta.CurrentPage != 2 {
		t.Fatalf("unexpected meta %+v", envelope.Meta)
	}
	if envelope.Links.Prev == nil || envelope.Links.Next == nil {
		t.Fatalf("expected prev and next links on a middle page")
	}
}

func TestUsersListClampsPerPage(t *testing.T) {
	svc := &fakeUserService{
		listFn: func(_ context.Context, query users.ListQuery) (*users.ListResult, error) {
			if query.Page.PerPage != 100 {
				t.Fatalf("expected per_page clamped to 100, got %d", query.Page.PerPage)
			}
			return &users.ListResult{}, nil
		},
	}
	handler := UsersList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?per_page=5000", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestUsersCreateSuccess(t *testing.T) {
	var received users.CreateUserInput
	svc := &fakeUserService{
		createFn: func(_ context.Context, input users.CreateUserInput) (*users.UserDTO, error) {
			received = input
			return &users.UserDTO{ID: 7, FirstName: input.FirstName}, nil
		},
	}
	handler := UsersCreate(svc, nil)

	payload := []byte(`{
		"first_name": "Anna",
		"last_name": "Nowak",
		"phone_number": "+48123456789",
		"emails": [
			{"email": "anna@example.com"},
			{"email": "anna.work@example.com"}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	// when no email is flagged, the first is promoted before the
	// service is invoked
	if len(received.Emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(received.Emails))
	}
	if !received.Emails[0].IsPrimary || received.Emails[1].IsPrimary {
		t.Fatalf("expected first email promoted to primary, got %+v", received.Emails)
	}
}

func TestUsersCreateRejectsMultiplePrimaries(t *testing.T) {
	handler := UsersCreate(&fakeUserService{}, nil)

	payload := []byte(`{
		"first_name": "Anna",
		"last_name": "Nowak",
		"phone_number": "+48123456789",
		"emails": [
			{"email": "a@example.com", "is_primary": true},
			{"email": "b@example.com", "is_primary": true}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUsersCreateRejectsDuplicateAddresses(t *testing.T) {
	handler := UsersCreate(&fakeUserService{}, nil)

	payload := []byte(`{
		"first_name": "Anna",
		"last_name": "Nowak",
		"phone_number": "+48123456789",
		"emails": [
			{"email": "same@example.com"},
			{"email": "Same@Example.com"}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUsersCreateRequiresEmails(t *testing.T) {
	handler := UsersCreate(&fakeUserService{}, nil)

	payload := []byte(`{"first_name": "Anna", "last_name": "Nowak", "phone_number": "+48123456789", "emails": []}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUsersGetNotFound(t *testing.T) {
	svc := &fakeUserService{
		getFn: func(_ context.Context, _ uint64) (*users.UserDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		},
	}
	handler := UsersGet(svc, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/users/42", nil), map[string]string{"userID": "42"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestUsersGetRejectsMalformedID(t *testing.T) {
	handler := UsersGet(&fakeUserService{}, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil), map[string]string{"userID": "abc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUsersUpdateRejectsAllDeleted(t *testing.T) {
	handler := UsersUpdate(&fakeUserService{}, nil)

	payload := []byte(`{"emails": [{"id": 1, "delete": true}]}`)
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/api/v1/users/1", bytes.NewReader(payload)), map[string]string{"userID": "1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUsersUpdateRejectsNoPrimary(t *testing.T) {
	handler := UsersUpdate(&fakeUserService{}, nil)

	payload := []byte(`{"emails": [{"id": 1, "email": "a@example.com"}]}`)
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/api/v1/users/1", bytes.NewReader(payload)), map[string]string{"userID": "1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUsersUpdateSuccess(t *testing.T) {
	var received users.UpdateUserInput
	svc := &fakeUserService{
		updateFn: func(_ context.Context, id uint64, input users.UpdateUserInput) (*users.UserDTO, error) {
			if id != 5 {
				t.Fatalf("expected id 5 got %d", id)
			}
			received = input
			return &users.UserDTO{ID: id, FirstName: "Maria"}, nil
		},
	}
	handler := UsersUpdate(svc, nil)

	payload := []byte(`{
		"first_name": "Maria",
		"emails": [
			{"id": 1, "email": "new@example.com", "is_primary": true},
			{"id": 2, "delete": true}
		]
	}`)
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/api/v1/users/5", bytes.NewReader(payload)), map[string]string{"userID": "5"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if received.FirstName == nil || *received.FirstName != "Maria" {
		t.Fatalf("expected first_name forwarded, got %v", received.FirstName)
	}
	if len(received.Emails) != 2 || !received.Emails[1].Delete {
		t.Fatalf("unexpected directives %+v", received.Emails)
	}
}

func TestUsersDeleteNoContent(t *testing.T) {
	svc := &fakeUserService{
		deleteFn: func(_ context.Context, id uint64) error {
			if id != 9 {
				t.Fatalf("expected id 9 got %d", id)
			}
			return nil
		},
	}
	handler := UsersDelete(svc, nil)

	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/api/v1/users/9", nil), map[string]string{"userID": "9"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rec.Body.String())
	}
}

func TestUsersWelcomeAccepted(t *testing.T) {
	svc := &fakeUserService{
		sendWelcomeFn: func(_ context.Context, id uint64) error {
			return nil
		},
	}
	handler := UsersWelcome(svc, nil)

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/api/v1/users/3/welcome", nil), map[string]string{"userID": "3"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Message string `json:"message"`
			UserID  uint64 `json:"user_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.UserID != 3 || envelope.Data.Message == "" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}
