package userstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authsvc/pkg/auth"
	"github.com/dmitrymomot/authsvc/pkg/jwt"
)

type storeFactory func(t *testing.T) auth.UserStorage

func newMemory(t *testing.T) auth.UserStorage {
	t.Helper()
	return NewMemoryStore()
}

func newSQLite(t *testing.T) auth.UserStorage {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "users.db")
	backend, err := Open(context.Background(), dsn, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close(context.Background()) })
	require.Equal(t, BackendSQLite, backend.Name)
	return backend.Users
}

// newExternal opens a backend from an env-provided url and skips when unset.
func newExternal(envVar string) storeFactory {
	return func(t *testing.T) auth.UserStorage {
		t.Helper()
		dsn := os.Getenv(envVar)
		if dsn == "" {
			t.Skipf("%s is not set", envVar)
		}
		ctx := context.Background()
		opts := Options{}
		opts.Mongo.Database = "authsvc_test_" + uuid.NewString()[:8]
		backend, err := Open(ctx, dsn, opts)
		require.NoError(t, err)
		t.Cleanup(func() { _ = backend.Close(context.Background()) })
		return backend.Users
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	runStorageSuite(t, newMemory)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	runStorageSuite(t, newSQLite)
}

func TestMongoStore(t *testing.T) {
	t.Parallel()
	runStorageSuite(t, newExternal("MONGODB_TEST_URL"))
}

func TestPostgresStore(t *testing.T) {
	// Tables are shared across subtests, so this suite runs serially.
	if os.Getenv("POSTGRES_TEST_URL") == "" {
		t.Skip("POSTGRES_TEST_URL is not set")
	}
	runStorageSuite(t, newExternal("POSTGRES_TEST_URL"))
}

func sampleUser(email string, created time.Time) *auth.User {
	return &auth.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		AuthProvider: auth.ProviderEmail,
		Avatar:       "https://example.com/ana.png",
		Location:     "Lisbon",
		Role:         auth.RoleRegistered,
		CreatedAt:    created,
	}
}

func runStorageSuite(t *testing.T, newStore storeFactory) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("create and read back", func(t *testing.T) {
		store := newStore(t)
		email := uniqueEmail("ana")
		u := sampleUser(email, base)
		require.NoError(t, store.CreateUser(ctx, u))

		byEmail, err := store.GetUserByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "Ana", byEmail.Name)
		assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)
		assert.Equal(t, auth.ProviderEmail, byEmail.AuthProvider)
		assert.Empty(t, byEmail.GoogleID)
		assert.Equal(t, "Lisbon", byEmail.Location)
		assert.Equal(t, auth.RoleRegistered, byEmail.Role)
		assert.True(t, base.Equal(byEmail.CreatedAt))

		byID, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, email, byID.Email)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetUserByEmail(ctx, uniqueEmail("ghost"))
		assert.ErrorIs(t, err, auth.ErrUserNotFound)

		_, err = store.GetUserByID(ctx, uuid.New())
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		store := newStore(t)
		email := uniqueEmail("dup")
		require.NoError(t, store.CreateUser(ctx, sampleUser(email, base)))

		err := store.CreateUser(ctx, sampleUser(email, base))
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("defaults role and creation time", func(t *testing.T) {
		store := newStore(t)
		u := sampleUser(uniqueEmail("bare"), time.Time{})
		u.Role = ""
		require.NoError(t, store.CreateUser(ctx, u))

		got, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleVisitor, got.Role)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("update relinks provider and clears hash", func(t *testing.T) {
		store := newStore(t)
		u := sampleUser(uniqueEmail("link"), base)
		require.NoError(t, store.CreateUser(ctx, u))

		u.AuthProvider = auth.ProviderGoogle
		u.GoogleID = "google-sub-1"
		u.PasswordHash = ""
		u.Avatar = "https://example.com/new.png"
		require.NoError(t, store.UpdateUser(ctx, u))

		got, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.ProviderGoogle, got.AuthProvider)
		assert.Equal(t, "google-sub-1", got.GoogleID)
		assert.Empty(t, got.PasswordHash)
		assert.Equal(t, "https://example.com/new.png", got.Avatar)
		assert.Equal(t, u.Email, got.Email)
	})

	t.Run("update of unknown user", func(t *testing.T) {
		store := newStore(t)
		err := store.UpdateUser(ctx, sampleUser(uniqueEmail("none"), base))
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("list in creation order without hashes", func(t *testing.T) {
		store := newStore(t)
		first := sampleUser(uniqueEmail("first"), base)
		second := sampleUser(uniqueEmail("second"), base.Add(time.Minute))
		second.AuthProvider = auth.ProviderGoogle
		second.GoogleID = "google-sub-2"
		second.PasswordHash = ""
		require.NoError(t, store.CreateUser(ctx, first))
		require.NoError(t, store.CreateUser(ctx, second))

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)

		var got []*auth.User
		for _, u := range users {
			if u.ID == first.ID || u.ID == second.ID {
				got = append(got, u)
			}
			assert.Empty(t, u.PasswordHash)
		}
		require.Len(t, got, 2)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, second.ID, got[1].ID)
		assert.Equal(t, "google-sub-2", got[1].GoogleID)
	})

	t.Run("concurrent registration admits one account", func(t *testing.T) {
		store := newStore(t)
		svc := auth.NewService(store, jwt.NewFromString("secret"), nil,
			auth.WithPasswordHasher(auth.NewBcryptHasher(auth.WithCost(bcrypt.MinCost))),
		)
		email := uniqueEmail("race")

		const attempts = 4
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			oks  int
			dups int
		)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Register(ctx, auth.RegisterInput{
					Name:         "Ana",
					Email:        email,
					Password:     "s3cret!",
					AuthProvider: auth.ProviderEmail,
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					oks++
				case assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists):
					dups++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, oks)
		assert.Equal(t, attempts-1, dups)
	})
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.com"
}
