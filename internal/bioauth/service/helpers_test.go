package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery staple"

type fixture struct {
	store    store.Store
	audit    *AuditRecorder
	auth     *AuthService
	ids      *IdentityService
	stats    *StatsService
	failures []error
}

func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newFixture(t *testing.T, st store.Store, policy Policy) *fixture {
	t.Helper()

	f := &fixture{store: st}
	hasher := cryptox.NewHasher("test-pepper")

	f.audit = &AuditRecorder{
		Store:     st,
		Timeout:   policy.StoreTimeout,
		OnFailure: func(err error) { f.failures = append(f.failures, err) },
	}
	f.auth = &AuthService{Store: st, Hasher: hasher, Audit: f.audit, Policy: policy}
	f.ids = &IdentityService{Store: st, Hasher: hasher, Policy: policy}
	f.stats = &StatsService{Store: st, Policy: policy}
	return f
}

func newDefaultFixture(t *testing.T) *fixture {
	return newFixture(t, newSQLiteStore(t), DefaultPolicy())
}

// register creates an active identity with tpl enrolled (nil for none).
func (f *fixture) register(t *testing.T, username string, tpl *biohash.Template) domain.Identity {
	t.Helper()

	in := RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
	}
	if tpl != nil {
		in.Probe.Template = biohash.Encode(*tpl)
	}

	identity, err := f.ids.Register(context.Background(), in)
	require.NoError(t, err)
	return identity
}

func (f *fixture) attempts(t *testing.T) int64 {
	t.Helper()
	n, err := f.store.Attempts().CountAttempts(context.Background())
	require.NoError(t, err)
	return n
}

func zeros() biohash.Template { return biohash.New(biohash.DefaultBits) }

// flipped returns t with the first n bits inverted.
func flipped(t biohash.Template, n int) biohash.Template {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	return t.Flip(positions...)
}

func intPtr(v int) *int { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// faultyStore wraps a real store to inject slow reads or failing writes.
type faultyStore struct {
	store.Store
	blockReads  bool
	attemptsErr error
}

func (s *faultyStore) Identities() store.Identities {
	return &faultyIdentities{Identities: s.Store.Identities(), block: s.blockReads}
}

func (s *faultyStore) Attempts() store.Attempts {
	return &faultyAttempts{Attempts: s.Store.Attempts(), err: s.attemptsErr}
}

type faultyIdentities struct {
	store.Identities
	block bool
}

func (r *faultyIdentities) wait(ctx context.Context) error {
	if !r.block {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Minute):
		return errors.New("faulty store: not cancelled")
	}
}

func (r *faultyIdentities) ListActiveEnrolled(ctx context.Context) ([]domain.Identity, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.Identities.ListActiveEnrolled(ctx)
}

func (r *faultyIdentities) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	if err := r.wait(ctx); err != nil {
		return domain.Identity{}, err
	}
	return r.Identities.GetIdentityByID(ctx, id)
}

type faultyAttempts struct {
	store.Attempts
	err error
}

func (r *faultyAttempts) CreateAttempt(ctx context.Context, a domain.AuthAttempt) error {
	if r.err != nil {
		return r.err
	}
	return r.Attempts.CreateAttempt(ctx, a)
}

type stubExtractor struct {
	tpl biohash.Template
	err error
}

func (e stubExtractor) Extract(context.Context, []byte, []byte) (biohash.Template, error) {
	return e.tpl, e.err
}
