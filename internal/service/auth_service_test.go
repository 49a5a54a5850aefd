package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowal/splitmate/internal/api"
	"github.com/mkowal/splitmate/internal/models"
	"github.com/mkowal/splitmate/internal/session"
	"github.com/mkowal/splitmate/internal/storage/sqlite"
)

type fakeAuthGateway struct {
	loginErr    error
	registerErr error

	loginCalls    int
	registerCalls int
}

func (f *fakeAuthGateway) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: 1, Username: username}, nil
}

func (f *fakeAuthGateway) Login(ctx context.Context, username, password string) (string, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "tok-" + username, nil
}

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	dir, err := os.MkdirTemp("", "splitmate-auth-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return session.NewManager(store)
}

func TestLoginPersistsToken(t *testing.T) {
	gw := &fakeAuthGateway{}
	sessions := newTestSessions(t)
	svc := NewAuthService(gw, sessions)
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "alice", "hunter2"))
	assert.True(t, sessions.Authenticated())
	assert.Equal(t, "tok-alice", sessions.Token(ctx))

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, sessions.Authenticated())
}

func TestLoginValidation(t *testing.T) {
	gw := &fakeAuthGateway{}
	svc := NewAuthService(gw, newTestSessions(t))

	err := svc.Login(context.Background(), "  ", "")
	require.ErrorIs(t, err, api.ErrValidation)
	assert.Zero(t, gw.loginCalls)
}

func TestLoginFailureLeavesSessionUnauthenticated(t *testing.T) {
	gw := &fakeAuthGateway{loginErr: &api.Error{Op: "login", Kind: api.ErrAuth, StatusCode: 400}}
	sessions := newTestSessions(t)
	svc := NewAuthService(gw, sessions)

	err := svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, api.ErrAuth)
	assert.False(t, sessions.Authenticated())
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	gw := &fakeAuthGateway{}
	sessions := newTestSessions(t)
	svc := NewAuthService(gw, sessions)

	user, err := svc.Register(context.Background(), "bob", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.False(t, sessions.Authenticated())
}

func TestRegisterConflictPassesThrough(t *testing.T) {
	gw := &fakeAuthGateway{registerErr: &api.Error{Op: "register", Kind: api.ErrConflict, StatusCode: 400}}
	svc := NewAuthService(gw, newTestSessions(t))

	_, err := svc.Register(context.Background(), "bob", "hunter2")
	require.ErrorIs(t, err, api.ErrConflict)
}
