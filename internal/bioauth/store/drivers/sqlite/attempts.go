package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/sqlite/gen"
)

type attemptsRepo struct {
	q *gen.Queries
}

func (r *attemptsRepo) CreateAttempt(ctx context.Context, a domain.AuthAttempt) error {
	err := r.q.CreateAttempt(ctx, gen.CreateAttemptParams{
		ID:         a.ID,
		IdentityID: mapOptionalString(a.IdentityID),
		Timestamp:  dbTime(a.Timestamp),
		Success:    a.Success,
		Distance:   mapOptionalInt(a.Distance),
		Method:     string(a.Method),
	})
	return mapConstraint(err)
}

func (r *attemptsRepo) ListAttemptsByIdentity(ctx context.Context, identityID string) ([]domain.AuthAttempt, error) {
	rows, err := r.q.ListAttemptsByIdentity(ctx, sql.NullString{String: identityID, Valid: true})
	if err != nil {
		return nil, err
	}
	return mapAttempts(rows), nil
}

func (r *attemptsRepo) ListRecentAttempts(ctx context.Context, identityID string, limit int) ([]domain.AuthAttempt, error) {
	rows, err := r.q.ListRecentAttempts(ctx, gen.ListRecentAttemptsParams{
		IdentityID: sql.NullString{String: identityID, Valid: true},
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return mapAttempts(rows), nil
}

func (r *attemptsRepo) CountAttempts(ctx context.Context) (int64, error) {
	return r.q.CountAttempts(ctx)
}

func mapAttempts(rows []gen.AuthAttempt) []domain.AuthAttempt {
	out := make([]domain.AuthAttempt, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapAttempt(row))
	}
	return out
}
