package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

const identityColumns = `id, username, email, password_hash, template, created_at, last_auth_at, active`

type identitiesRepo struct {
	db dbtx
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, i domain.Identity) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO identities (id, username, email, password_hash, template, created_at, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.ID, i.Username, i.Email, i.PasswordHash, optionalTemplate(i.Template), i.CreatedAt.UTC(), i.Active,
	)
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, id))
}

func (r *identitiesRepo) GetIdentityByUsername(ctx context.Context, username string) (domain.Identity, error) {
	return scanIdentity(r.db.QueryRow(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE username = $1`, username))
}

func (r *identitiesRepo) ListActiveEnrolled(ctx context.Context) ([]domain.Identity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+identityColumns+` FROM identities
		 WHERE active AND template IS NOT NULL
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Identity{}
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *identitiesRepo) UpdateTemplate(ctx context.Context, id string, tpl biohash.Template) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE identities SET template = $1 WHERE id = $2`, biohash.Encode(tpl), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *identitiesRepo) TouchLastAuth(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE identities SET last_auth_at = $1
		 WHERE id = $2 AND (last_auth_at IS NULL OR last_auth_at < $1)`,
		at.UTC(), id)
	return err
}

func (r *identitiesRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE identities SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *identitiesRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM identities)`).Scan(&exists)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
