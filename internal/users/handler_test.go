package users_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cerviguard/console/internal/identity"
	"github.com/cerviguard/console/internal/users"
	"github.com/cerviguard/console/pkg/routes"
)

type fakeSystem struct {
	users     []users.User
	createErr error

	created     *users.CreateCommand
	deactivated *uuid.UUID
	deleted     *uuid.UUID
}

func (f *fakeSystem) Handler() *users.Handler { return nil }

func (f *fakeSystem) List(ctx context.Context) ([]users.User, error) {
	return f.users, nil
}

func (f *fakeSystem) Find(ctx context.Context, id uuid.UUID) (*users.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeSystem) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeSystem) Create(ctx context.Context, cmd users.CreateCommand) (*users.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &cmd
	return &users.User{
		ID:        uuid.New(),
		Username:  cmd.Username,
		Role:      cmd.Role,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

func (f *fakeSystem) Deactivate(ctx context.Context, id uuid.UUID) (*users.User, error) {
	f.deactivated = &id
	u, err := f.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Active = false
	return u, nil
}

func (f *fakeSystem) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = &id
	return nil
}

func newTestMux(t *testing.T, sys users.System) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	routes.Register(mux, users.NewHandler(sys, logger).Routes())
	return mux
}

func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(identity.WithUser(r.Context(), identity.User{
		ID:       uuid.NewString(),
		Username: "registry.admin",
		Role:     identity.RoleAdmin,
	}))
}

func asClinician(r *http.Request) *http.Request {
	return r.WithContext(identity.WithUser(r.Context(), identity.User{
		ID:       uuid.NewString(),
		Username: "dr.okafor",
		Role:     identity.RoleUser,
	}))
}

func TestListRequiresAdmin(t *testing.T) {
	mux := newTestMux(t, &fakeSystem{})

	req := asClinician(httptest.NewRequest("GET", "/users", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestListUsers(t *testing.T) {
	sys := &fakeSystem{users: []users.User{
		{ID: uuid.New(), Username: "dr.okafor", Role: identity.RoleUser, Active: true},
		{ID: uuid.New(), Username: "registry.admin", Role: identity.RoleAdmin, Active: true},
	}}
	mux := newTestMux(t, sys)

	req := asAdmin(httptest.NewRequest("GET", "/users", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dr.okafor") {
		t.Error("response missing expected account")
	}
}

func TestCreateUser(t *testing.T) {
	sys := &fakeSystem{}
	mux := newTestMux(t, sys)

	body := strings.NewReader(`{"username": "dr.adeyemi", "role": "user"}`)
	req := asAdmin(httptest.NewRequest("POST", "/users", body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if sys.created == nil || sys.created.Username != "dr.adeyemi" {
		t.Errorf("created = %+v, want dr.adeyemi", sys.created)
	}
}

func TestCreateUserConflict(t *testing.T) {
	mux := newTestMux(t, &fakeSystem{createErr: users.ErrDuplicate})

	body := strings.NewReader(`{"username": "dr.okafor", "role": "user"}`)
	req := asAdmin(httptest.NewRequest("POST", "/users", body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestDeactivateUser(t *testing.T) {
	account := users.User{ID: uuid.New(), Username: "dr.okafor", Role: identity.RoleUser, Active: true}
	sys := &fakeSystem{users: []users.User{account}}
	mux := newTestMux(t, sys)

	req := asAdmin(httptest.NewRequest("POST", "/users/"+account.ID.String()+"/deactivate", nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sys.deactivated == nil || *sys.deactivated != account.ID {
		t.Errorf("deactivated = %v, want %s", sys.deactivated, account.ID)
	}
}

func TestDeleteUser(t *testing.T) {
	account := users.User{ID: uuid.New(), Username: "dr.okafor", Role: identity.RoleUser}
	sys := &fakeSystem{users: []users.User{account}}
	mux := newTestMux(t, sys)

	req := asAdmin(httptest.NewRequest("DELETE", "/users/"+account.ID.String(), nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if sys.deleted == nil || *sys.deleted != account.ID {
		t.Errorf("deleted = %v, want %s", sys.deleted, account.ID)
	}
}

func TestFindUserUnknownID(t *testing.T) {
	mux := newTestMux(t, &fakeSystem{})

	req := asAdmin(httptest.NewRequest("GET", "/users/"+uuid.NewString(), nil))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
