package repo

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/db"
	"github.com/Skotchmaster/auth_service/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return New(gdb)
}

func newUser(login string, role models.Role) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Name:         "Name",
		Surname:      "Surname",
		Login:        login,
		Email:        login + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
}

func newToken(userID, device string) *models.RefreshToken {
	return &models.RefreshToken{JTI: uuid.NewString(), UserID: userID, Device: device}
}

func TestGormRepo_CreateUserWithToken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice", models.RoleUser)
	rt := newToken(u.ID, "Chrome / Linux / PC")
	require.NoError(t, r.CreateUserWithToken(ctx, u, rt))

	got, err := r.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	stored, err := r.FindRefreshByJTI(ctx, rt.JTI)
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.UserID)
	assert.Equal(t, "Chrome / Linux / PC", stored.Device)
}

func TestGormRepo_CreateUserWithToken_Duplicate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := newUser("alice", models.RoleUser)
	require.NoError(t, r.CreateUserWithToken(ctx, first, newToken(first.ID, "d")))

	sameLogin := newUser("alice", models.RoleUser)
	sameLogin.Email = "other@example.com"
	rt := newToken(sameLogin.ID, "d")
	err := r.CreateUserWithToken(ctx, sameLogin, rt)
	require.ErrorIs(t, err, ErrDuplicate)

	sameEmail := newUser("bob", models.RoleUser)
	sameEmail.Email = first.Email
	err = r.CreateUserWithToken(ctx, sameEmail, newToken(sameEmail.ID, "d"))
	require.ErrorIs(t, err, ErrDuplicate)

	// the token of the rejected user must have been rolled back with it
	_, err = r.FindRefreshByJTI(ctx, rt.JTI)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_GetUser_NotFound(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetUserEmail(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_ListUsers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, u := range []*models.User{
		newUser("carol", models.RoleExecutor),
		newUser("alice", models.RoleUser),
		newUser("bob", models.RoleExecutor),
	} {
		require.NoError(t, r.CreateUser(ctx, u))
	}

	all, err := r.ListUsers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Login)

	executor := models.RoleExecutor
	execs, err := r.ListUsers(ctx, &executor)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, "bob", execs[0].Login)
	assert.Equal(t, "carol", execs[1].Login)

	admin := models.RoleAdmin
	none, err := r.ListUsers(ctx, &admin)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGormRepo_DeleteUser_Cascades(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice", models.RoleUser)
	rt := newToken(u.ID, "d1")
	require.NoError(t, r.CreateUserWithToken(ctx, u, rt))
	require.NoError(t, r.CreateRefreshToken(ctx, newToken(u.ID, "d2")))

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	left, err := r.ListRefreshByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	err = r.DeleteUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormRepo_DeleteRefreshByDevice(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice", models.RoleUser)
	require.NoError(t, r.CreateUserWithToken(ctx, u, newToken(u.ID, "laptop")))
	phone := newToken(u.ID, "phone")
	require.NoError(t, r.CreateRefreshToken(ctx, phone))

	n, err := r.DeleteRefreshByDevice(ctx, u.ID, "laptop")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = r.DeleteRefreshByDevice(ctx, u.ID, "laptop")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = r.FindRefreshByJTI(ctx, phone.JTI)
	assert.NoError(t, err)
}

func TestGormRepo_RotateRefreshToken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice", models.RoleUser)
	old := newToken(u.ID, "laptop")
	require.NoError(t, r.CreateUserWithToken(ctx, u, old))

	next := newToken(u.ID, "laptop")
	require.NoError(t, r.RotateRefreshToken(ctx, old.JTI, u.ID, "laptop", next))

	_, err := r.FindRefreshByJTI(ctx, old.JTI)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.FindRefreshByJTI(ctx, next.JTI)
	assert.NoError(t, err)
}

func TestGormRepo_RotateRefreshToken_ReuseWipesAll(t *testing.T) {
	tests := []struct {
		name   string
		jti    func(old *models.RefreshToken) string
		device string
	}{
		{name: "unknown jti", jti: func(*models.RefreshToken) string { return uuid.NewString() }, device: "laptop"},
		{name: "other device", jti: func(old *models.RefreshToken) string { return old.JTI }, device: "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRepo(t)
			ctx := context.Background()

			u := newUser("alice", models.RoleUser)
			old := newToken(u.ID, "laptop")
			require.NoError(t, r.CreateUserWithToken(ctx, u, old))
			require.NoError(t, r.CreateRefreshToken(ctx, newToken(u.ID, "tablet")))

			next := newToken(u.ID, tt.device)
			err := r.RotateRefreshToken(ctx, tt.jti(old), u.ID, tt.device, next)
			require.ErrorIs(t, err, ErrTokenReuse)

			left, err := r.ListRefreshByUser(ctx, u.ID)
			require.NoError(t, err)
			assert.Empty(t, left)
		})
	}
}

func TestGormRepo_RotateRefreshToken_Concurrent(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := newUser("alice", models.RoleUser)
	old := newToken(u.ID, "laptop")
	require.NoError(t, r.CreateUserWithToken(ctx, u, old))

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.RotateRefreshToken(ctx, old.JTI, u.ID, "laptop", newToken(u.ID, "laptop"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrTokenReuse)
	}
	// one rotation wins, and the losers' reuse wipes the winner's new record
	assert.Equal(t, 1, ok)
	left, err := r.ListRefreshByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
