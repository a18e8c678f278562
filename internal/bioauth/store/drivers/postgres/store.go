package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Options tunes the connection pool. Zero values keep the pgx defaults.
type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultOptions returns the pool settings used by the service.
func DefaultOptions() Options {
	return Options{
		MaxConns:        20,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	db   dbtx
}

func NewStore(ctx context.Context, url string, opts Options) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool, db: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // ErrTxClosed after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Identities() store.Identities { return &identitiesRepo{db: s.db} }
func (s *Store) Attempts() store.Attempts     { return &attemptsRepo{db: s.db} }

type txStore struct {
	tx pgx.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit(context.Background()) }
func (t *txStore) Rollback() error { return t.tx.Rollback(context.Background()) }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.ErrTxClosed
}

func (t *txStore) Identities() store.Identities { return &identitiesRepo{db: t.tx} }
func (t *txStore) Attempts() store.Attempts     { return &attemptsRepo{db: t.tx} }

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}

func mapTemplate(text *string) (*biohash.Template, error) {
	if text == nil {
		return nil, nil
	}
	tpl, err := biohash.Parse(*text)
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func optionalTemplate(t *biohash.Template) *string {
	if t == nil {
		return nil
	}
	s := biohash.Encode(*t)
	return &s
}

func scanIdentity(row pgx.Row) (domain.Identity, error) {
	var (
		i    domain.Identity
		tpl  *string
		last *time.Time
	)
	if err := row.Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &tpl, &i.CreatedAt, &last, &i.Active); err != nil {
		return domain.Identity{}, mapNotFound(err)
	}

	t, err := mapTemplate(tpl)
	if err != nil {
		return domain.Identity{}, err
	}
	i.Template = t
	i.CreatedAt = i.CreatedAt.UTC()
	if last != nil {
		l := last.UTC()
		i.LastAuthAt = &l
	}
	return i, nil
}

func scanAttempt(row pgx.Row) (domain.AuthAttempt, error) {
	var (
		a        domain.AuthAttempt
		distance *int32
		method   string
	)
	if err := row.Scan(&a.ID, &a.IdentityID, &a.Timestamp, &a.Success, &distance, &method); err != nil {
		return domain.AuthAttempt{}, err
	}
	if distance != nil {
		d := int(*distance)
		a.Distance = &d
	}
	a.Timestamp = a.Timestamp.UTC()
	a.Method = domain.AuthMethod(method)
	return a, nil
}
