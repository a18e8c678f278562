package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/postgres"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway postgres container and returns a migrated store.
func setupPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "bioauth",
			"POSTGRES_PASSWORD": "bioauth",
			"POSTGRES_DB":       "bioauth",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://bioauth:bioauth@%s:%s/bioauth?sslmode=disable", host, port.Port())
	s, err := postgres.NewStore(ctx, url, postgres.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newIdentity(t *testing.T, username, tpl string) domain.Identity {
	t.Helper()
	i := domain.Identity{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		Active:       true,
	}
	if tpl != "" {
		parsed, err := biohash.Parse(tpl)
		require.NoError(t, err)
		i.Template = &parsed
	}
	return i
}

func TestPostgresStore(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	alice := newIdentity(t, "alice", "1,0,1,0")
	bob := newIdentity(t, "bob", "0,1,0,1")
	require.NoError(t, s.Identities().CreateIdentity(ctx, alice))
	require.NoError(t, s.Identities().CreateIdentity(ctx, bob))

	t.Run("duplicate username", func(t *testing.T) {
		dup := newIdentity(t, "alice", "")
		dup.Email = "someone@example.com"
		require.ErrorIs(t, s.Identities().CreateIdentity(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("concurrent duplicates", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make([]error, 6)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = s.Identities().CreateIdentity(ctx, newIdentity(t, "carol", ""))
			}()
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, store.ErrAlreadyExists)
		}
		require.Equal(t, 1, ok)
	})

	t.Run("list active enrolled", func(t *testing.T) {
		got, err := s.Identities().ListActiveEnrolled(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, alice.ID, got[0].ID)
		require.True(t, alice.Template.Equal(*got[0].Template))

		require.NoError(t, s.Identities().SetActive(ctx, alice.ID, false))
		got, err = s.Identities().ListActiveEnrolled(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, bob.ID, got[0].ID)
	})

	t.Run("touch last auth", func(t *testing.T) {
		later := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.Identities().TouchLastAuth(ctx, bob.ID, later))
		require.NoError(t, s.Identities().TouchLastAuth(ctx, bob.ID, later.Add(-time.Minute)))

		got, err := s.Identities().GetIdentityByID(ctx, bob.ID)
		require.NoError(t, err)
		require.True(t, later.Equal(*got.LastAuthAt))
	})

	t.Run("attempts", func(t *testing.T) {
		d := 3
		require.NoError(t, s.Attempts().CreateAttempt(ctx, domain.AuthAttempt{
			ID: idx.New().String(), IdentityID: &bob.ID, Timestamp: time.Now(),
			Success: true, Distance: &d, Method: domain.MethodBiometricLogin,
		}))
		require.NoError(t, s.Attempts().CreateAttempt(ctx, domain.AuthAttempt{
			ID: idx.New().String(), Timestamp: time.Now(), Method: domain.MethodBiometricLogin,
		}))

		got, err := s.Attempts().ListRecentAttempts(ctx, bob.ID, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, 3, *got[0].Distance)

		n, err := s.Attempts().CountAttempts(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Identities().GetIdentityByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
