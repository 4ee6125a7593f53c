package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/db"
	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const ua = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type integrationEnv struct {
	db  *gorm.DB
	svc *service.AuthService
	rp  *repo.GormRepo
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	dsn := os.Getenv("AUTH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUTH_TEST_DATABASE_URL is required for tests")
	}

	gdb, err := db.OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	codec, err := tokens.NewCodec([]byte("test-jwt-secret"), "HS256", "auth-test")
	require.NoError(t, err)

	rp := repo.New(gdb)
	env := &integrationEnv{
		db: gdb,
		rp: rp,
		svc: &service.AuthService{
			Store:      rp,
			Hasher:     hash.NewBcrypt(bcrypt.MinCost),
			Codec:      codec,
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
			Events:     events.Noop{},
		},
	}

	t.Cleanup(func() {
		truncateTables(t, gdb)
		_ = db.Close(gdb)
	})

	return env
}

func truncateTables(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	gdb.Exec("TRUNCATE TABLE refresh_tokens, users RESTART IDENTITY CASCADE")
}

func uniqueLogin() string {
	return "u_" + uuid.NewString()[:8]
}

func register(t *testing.T, env *integrationEnv) *service.TokenPair {
	t.Helper()
	login := uniqueLogin()
	pair, err := env.svc.Register(context.Background(), service.RegisterInput{
		Name:      "Alice",
		Surname:   "Liddell",
		Login:     login,
		Email:     login + "@example.com",
		Password:  "Secret123",
		UserAgent: ua,
	})
	require.NoError(t, err)
	return pair
}

func TestAuthService_Register_SuccessAndConflict(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	login := uniqueLogin()

	in := service.RegisterInput{
		Name:     "Alice",
		Surname:  "Liddell",
		Login:    login,
		Email:    login + "@example.com",
		Password: "Secret123",
	}
	_, err := env.svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = env.svc.Register(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrDuplicateIdentity)
}

func TestAuthService_Refresh_ConcurrentRotationHasOneWinner(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	pair := register(t, env)

	const workers = 10
	errs := make([]error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = env.svc.Refresh(ctx, pair.RefreshToken, ua)
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, service.ErrTokenReuse)
	}
	assert.LessOrEqual(t, ok, 1)
}

func TestGormRepo_DeleteUser_CascadesOnPostgres(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()
	pair := register(t, env)

	require.NoError(t, env.rp.DeleteUser(ctx, pair.UserID))

	left, err := env.rp.ListRefreshByUser(ctx, pair.UserID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
