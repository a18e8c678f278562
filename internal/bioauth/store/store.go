package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Sub-repositories are reached through methods so a Tx
// can hand out the same repositories bound to the transaction.
type Store interface {
	Identities() Identities
	Attempts() Attempts

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Identities interface {
	// CreateIdentity inserts a new identity. A username or email clash is
	// reported as ErrAlreadyExists by the unique constraints, so concurrent
	// registrations of the same handle cannot both succeed.
	CreateIdentity(ctx context.Context, i domain.Identity) error

	GetIdentityByID(ctx context.Context, id string) (domain.Identity, error)
	GetIdentityByUsername(ctx context.Context, username string) (domain.Identity, error)

	// ListActiveEnrolled returns every active identity with a template, in
	// insertion (ID) order. The matcher's first-wins tie-break depends on
	// this order staying stable.
	ListActiveEnrolled(ctx context.Context) ([]domain.Identity, error)

	// UpdateTemplate replaces the enrolled template.
	UpdateTemplate(ctx context.Context, id string, tpl biohash.Template) error

	// TouchLastAuth moves last_auth_at forward to at. It never moves it
	// backwards, so concurrent successful logins cannot lose the newest one.
	TouchLastAuth(ctx context.Context, id string, at time.Time) error

	// SetActive flips the soft-delete flag.
	SetActive(ctx context.Context, id string, active bool) error

	IsEmpty(ctx context.Context) (bool, error)
}

type Attempts interface {
	// CreateAttempt appends an audit record. Records are never updated.
	CreateAttempt(ctx context.Context, a domain.AuthAttempt) error

	// ListAttemptsByIdentity returns all attempts for an identity, oldest first.
	ListAttemptsByIdentity(ctx context.Context, identityID string) ([]domain.AuthAttempt, error)

	// ListRecentAttempts returns up to limit attempts for an identity,
	// newest first.
	ListRecentAttempts(ctx context.Context, identityID string, limit int) ([]domain.AuthAttempt, error)

	// CountAttempts returns the total number of audit records.
	CountAttempts(ctx context.Context) (int64, error)
}
