package postgres

import (
	"context"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/jackc/pgx/v5"
)

const attemptColumns = `id, identity_id, timestamp, success, distance, method`

type attemptsRepo struct {
	db dbtx
}

func (r *attemptsRepo) CreateAttempt(ctx context.Context, a domain.AuthAttempt) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO auth_attempts (id, identity_id, timestamp, success, distance, method)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.IdentityID, a.Timestamp.UTC(), a.Success, a.Distance, string(a.Method),
	)
	return mapConstraint(err)
}

func (r *attemptsRepo) ListAttemptsByIdentity(ctx context.Context, identityID string) ([]domain.AuthAttempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM auth_attempts
		 WHERE identity_id = $1
		 ORDER BY timestamp ASC, id ASC`, identityID)
	if err != nil {
		return nil, err
	}
	return collectAttempts(rows)
}

func (r *attemptsRepo) ListRecentAttempts(ctx context.Context, identityID string, limit int) ([]domain.AuthAttempt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attemptColumns+` FROM auth_attempts
		 WHERE identity_id = $1
		 ORDER BY timestamp DESC, id DESC
		 LIMIT $2`, identityID, limit)
	if err != nil {
		return nil, err
	}
	return collectAttempts(rows)
}

func (r *attemptsRepo) CountAttempts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM auth_attempts`).Scan(&n)
	return n, err
}

func collectAttempts(rows pgx.Rows) ([]domain.AuthAttempt, error) {
	defer rows.Close()

	out := []domain.AuthAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
