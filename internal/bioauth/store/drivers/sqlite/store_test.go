package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newIdentity(username string, tpl *biohash.Template) domain.Identity {
	return domain.Identity{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Template:     tpl,
		CreatedAt:    time.Now(),
		Active:       true,
	}
}

func template(t *testing.T, text string) *biohash.Template {
	t.Helper()
	tpl, err := biohash.Parse(text)
	require.NoError(t, err)
	return &tpl
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())

	empty, err := s.Identities().IsEmpty(context.Background())
	require.NoError(t, err)
	require.True(t, empty)
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := newIdentity("alice", template(t, "1,0,1,1"))
	require.NoError(t, s.Identities().CreateIdentity(ctx, in))

	got, err := s.Identities().GetIdentityByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, in.ID, got.ID)
	require.Equal(t, "alice@example.com", got.Email)
	require.True(t, got.Active)
	require.Nil(t, got.LastAuthAt)
	require.NotNil(t, got.Template)
	require.True(t, in.Template.Equal(*got.Template))
	require.WithinDuration(t, in.CreatedAt, got.CreatedAt, time.Millisecond)

	byID, err := s.Identities().GetIdentityByID(ctx, in.ID)
	require.NoError(t, err)
	require.Equal(t, got, byID)
}

func TestGetIdentityNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Identities().GetIdentityByID(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Identities().GetIdentityByUsername(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateIdentityDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Identities().CreateIdentity(ctx, newIdentity("bob", nil)))

	t.Run("username", func(t *testing.T) {
		dup := newIdentity("bob", nil)
		dup.Email = "other@example.com"
		require.ErrorIs(t, s.Identities().CreateIdentity(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("email", func(t *testing.T) {
		dup := newIdentity("robert", nil)
		dup.Email = "bob@example.com"
		require.ErrorIs(t, s.Identities().CreateIdentity(ctx, dup), store.ErrAlreadyExists)
	})
}

func TestConcurrentDuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Identities().CreateIdentity(ctx, newIdentity("carol", nil))
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
}

func TestListActiveEnrolledOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := newIdentity("first", template(t, "0,0,0,0"))
	second := newIdentity("second", template(t, "1,1,1,1"))
	unenrolled := newIdentity("unenrolled", nil)
	inactive := newIdentity("inactive", template(t, "0,1,0,1"))

	for _, i := range []domain.Identity{first, second, unenrolled, inactive} {
		require.NoError(t, s.Identities().CreateIdentity(ctx, i))
	}
	require.NoError(t, s.Identities().SetActive(ctx, inactive.ID, false))

	got, err := s.Identities().ListActiveEnrolled(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, first.ID, got[0].ID)
	require.Equal(t, second.ID, got[1].ID)
}

func TestUpdateTemplate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	i := newIdentity("dave", nil)
	require.NoError(t, s.Identities().CreateIdentity(ctx, i))

	tpl := template(t, "1,1,0,0")
	require.NoError(t, s.Identities().UpdateTemplate(ctx, i.ID, *tpl))

	got, err := s.Identities().GetIdentityByID(ctx, i.ID)
	require.NoError(t, err)
	require.True(t, got.Enrolled())
	require.True(t, tpl.Equal(*got.Template))

	require.ErrorIs(t, s.Identities().UpdateTemplate(ctx, "missing", *tpl), store.ErrNotFound)
}

func TestTouchLastAuthIsMonotone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	i := newIdentity("erin", nil)
	require.NoError(t, s.Identities().CreateIdentity(ctx, i))

	later := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	require.NoError(t, s.Identities().TouchLastAuth(ctx, i.ID, later))
	require.NoError(t, s.Identities().TouchLastAuth(ctx, i.ID, earlier))

	got, err := s.Identities().GetIdentityByID(ctx, i.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastAuthAt)
	require.True(t, later.Equal(*got.LastAuthAt))
}

func TestSetActiveNotFound(t *testing.T) {
	s := newTestStore(t)
	require.ErrorIs(t, s.Identities().SetActive(context.Background(), "missing", false), store.ErrNotFound)
}

func TestAttemptsOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	i := newIdentity("frank", template(t, "1,0,1,0"))
	require.NoError(t, s.Identities().CreateIdentity(ctx, i))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for n := range 5 {
		d := n
		require.NoError(t, s.Attempts().CreateAttempt(ctx, domain.AuthAttempt{
			ID:         idx.NewAt(base.Add(time.Duration(n) * time.Minute)).String(),
			IdentityID: &i.ID,
			Timestamp:  base.Add(time.Duration(n) * time.Minute),
			Success:    n%2 == 0,
			Distance:   &d,
			Method:     domain.MethodBiometricVerify,
		}))
	}

	all, err := s.Attempts().ListAttemptsByIdentity(ctx, i.ID)
	require.NoError(t, err)
	require.Len(t, all, 5)
	require.Equal(t, 0, *all[0].Distance)
	require.Equal(t, 4, *all[4].Distance)
	require.Equal(t, domain.MethodBiometricVerify, all[0].Method)

	recent, err := s.Attempts().ListRecentAttempts(ctx, i.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, 4, *recent[0].Distance)
	require.Equal(t, 2, *recent[2].Distance)
}

func TestAttemptWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Attempts().CreateAttempt(ctx, domain.AuthAttempt{
		ID:        idx.New().String(),
		Timestamp: time.Now(),
		Method:    domain.MethodBiometricLogin,
	}))

	n, err := s.Attempts().CountAttempts(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestAttemptRejectsUnknownMethod(t *testing.T) {
	s := newTestStore(t)

	err := s.Attempts().CreateAttempt(context.Background(), domain.AuthAttempt{
		ID:        idx.New().String(),
		Timestamp: time.Now(),
		Method:    domain.AuthMethod("retina"),
	})
	require.Error(t, err)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Identities().CreateIdentity(ctx, newIdentity("gina", nil)))
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Identities().GetIdentityByUsername(ctx, "gina")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Identities().CreateIdentity(ctx, newIdentity("gina", nil))
	}))

	_, err = s.Identities().GetIdentityByUsername(ctx, "gina")
	require.NoError(t, err)
}
