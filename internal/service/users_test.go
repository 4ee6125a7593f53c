package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/models"
)

func TestUserService_MeAndEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, aliceInput())

	me, err := env.users.Me(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Login)

	email, err := env.users.Email(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	_, err = env.users.Me(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.users.Email(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.register(t, aliceInput())
	for _, login := range []string{"bobby", "carol"} {
		in := aliceInput()
		in.Login = login
		in.Email = login + "@example.com"
		in.Role = string(models.RoleExecutor)
		env.register(t, in)
	}

	all, err := env.users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	execs, err := env.users.List(ctx, "executor")
	require.NoError(t, err)
	require.Len(t, execs, 2)
	for _, u := range execs {
		assert.Equal(t, models.RoleExecutor, u.Role)
	}

	_, err = env.users.List(ctx, "superuser")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Delete_RevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, aliceInput())

	require.NoError(t, env.users.Delete(ctx, reg.UserID))
	assert.Empty(t, env.refreshRecords(t, reg.UserID))

	_, err := env.auth.Refresh(ctx, reg.RefreshToken, laptopUA)
	assert.ErrorIs(t, err, ErrTokenReuse)

	err = env.users.Delete(ctx, reg.UserID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserDeleted}, env.events.types())
}
