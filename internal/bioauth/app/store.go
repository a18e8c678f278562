package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/postgres"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenStore connects to the identity store and applies pending migrations.
// For sqlite, dsn is a file path or ":memory:"; for postgres it is a
// connection URL.
func OpenStore(ctx context.Context, driver, dsn string) (store.Store, error) {
	var (
		db  store.Store
		err error
	)

	switch driver {
	case "", DriverSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dsn)
		}
		db, err = sqlite.NewStore(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres driver requires BIOAUTH_DATABASE_URL")
		}
		db, err = postgres.NewStore(ctx, dsn, postgres.DefaultOptions())
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	return db, nil
}
