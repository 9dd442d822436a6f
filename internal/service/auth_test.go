package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/service"
)

type mockAuthBackend struct {
	logout     func(ctx context.Context) error
	getVisitor func(ctx context.Context, id int) (domain.Visitor, error)
}

func (m *mockAuthBackend) LoginURL() string { return "http://museum.test/api/v1/auth/google/login" }
func (m *mockAuthBackend) Logout(ctx context.Context) error {
	return m.logout(ctx)
}
func (m *mockAuthBackend) GetVisitor(ctx context.Context, id int) (domain.Visitor, error) {
	return m.getVisitor(ctx, id)
}

var _ service.AuthBackend = (*mockAuthBackend)(nil)

func successCallback() service.LoginCallback {
	return service.LoginCallback{
		VisitorID: 7,
		Name:      "Ana Torres",
		Email:     "ana@example.com",
		Success:   true,
		Token:     "tok",
	}
}

func TestAuthService_Login_StoresUser(t *testing.T) {
	backend := &mockAuthBackend{
		getVisitor: func(_ context.Context, id int) (domain.Visitor, error) {
			assert.Equal(t, 7, id)
			return domain.Visitor{ID: 7, Email: "Ana@Example.com", Country: "Bolivia", City: "La Paz", EntryType: domain.EntryStudent, ProfileComplete: true}, nil
		},
	}
	svc := service.NewAuthService(backend, discardLogger())
	st := anonymousState(t)

	u, err := svc.Login(context.Background(), st, successCallback())

	require.NoError(t, err)
	assert.True(t, u.Authenticated)
	assert.True(t, u.ProfileComplete)
	assert.Equal(t, "La Paz", u.City)
	assert.Equal(t, "tok", st.Token())

	me, err := svc.Me(st)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStudent, me.EntryType)
}

func TestAuthService_Login_NoToken_ProfileLookupFailureStillLogsIn(t *testing.T) {
	backend := &mockAuthBackend{
		getVisitor: func(context.Context, int) (domain.Visitor, error) {
			return domain.Visitor{}, errors.New("backend down")
		},
	}
	svc := service.NewAuthService(backend, discardLogger())
	st := anonymousState(t)
	cb := successCallback()
	cb.Token = ""

	u, err := svc.Login(context.Background(), st, cb)

	require.NoError(t, err)
	assert.False(t, u.ProfileComplete)
	assert.True(t, st.Authenticated())
}

func TestAuthService_Login_UnverifiedIdentityRejected(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		visitor domain.Visitor
		err     error
	}{
		{"lookup fails with token", "tok", domain.Visitor{}, errors.New("401 unauthorized")},
		{"token belongs to another visitor", "tok", domain.Visitor{ID: 8, Email: "ana@example.com"}, nil},
		{"email differs", "tok", domain.Visitor{ID: 7, Email: "mallory@example.com"}, nil},
		{"email differs without token", "", domain.Visitor{ID: 7, Email: "mallory@example.com"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := &mockAuthBackend{
				getVisitor: func(context.Context, int) (domain.Visitor, error) {
					return tc.visitor, tc.err
				},
			}
			svc := service.NewAuthService(backend, discardLogger())
			st := anonymousState(t)
			cb := successCallback()
			cb.Token = tc.token

			_, err := svc.Login(context.Background(), st, cb)

			require.ErrorIs(t, err, domain.ErrUnauthenticated)
			assert.ErrorContains(t, err, "visitor could not be verified")
			assert.False(t, st.Authenticated())
			assert.Empty(t, st.Token())
		})
	}
}

func TestAuthService_Login_Rejected(t *testing.T) {
	tests := []struct {
		name string
		edit func(*service.LoginCallback)
	}{
		{"error param", func(cb *service.LoginCallback) { cb.Error = "access_denied" }},
		{"not successful", func(cb *service.LoginCallback) { cb.Success = false }},
		{"missing id", func(cb *service.LoginCallback) { cb.VisitorID = 0 }},
		{"missing name", func(cb *service.LoginCallback) { cb.Name = " " }},
		{"missing email", func(cb *service.LoginCallback) { cb.Email = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewAuthService(&mockAuthBackend{}, discardLogger())
			st := anonymousState(t)
			cb := successCallback()
			tc.edit(&cb)

			_, err := svc.Login(context.Background(), st, cb)

			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
			assert.False(t, st.Authenticated())
		})
	}
}

func TestAuthService_Logout_BackendFailureStillClears(t *testing.T) {
	called := false
	backend := &mockAuthBackend{
		logout: func(context.Context) error {
			called = true
			return errors.New("timeout")
		},
	}
	svc := service.NewAuthService(backend, discardLogger())
	st := loggedInState(t)

	require.NoError(t, svc.Logout(context.Background(), st))

	assert.True(t, called)
	assert.False(t, st.Authenticated())
	_, err := svc.Me(st)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_Logout_Anonymous_SkipsBackend(t *testing.T) {
	svc := service.NewAuthService(&mockAuthBackend{}, discardLogger())

	require.NoError(t, svc.Logout(context.Background(), anonymousState(t)))
}
