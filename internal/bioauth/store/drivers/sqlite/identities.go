package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

type identitiesRepo struct {
	q *gen.Queries
}

func (r *identitiesRepo) CreateIdentity(ctx context.Context, i domain.Identity) error {
	err := r.q.CreateIdentity(ctx, gen.CreateIdentityParams{
		ID:           i.ID,
		Username:     i.Username,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Template:     mapOptionalTemplate(i.Template),
		CreatedAt:    dbTime(i.CreatedAt),
		Active:       i.Active,
	})
	return mapConstraint(err)
}

func (r *identitiesRepo) GetIdentityByID(ctx context.Context, id string) (domain.Identity, error) {
	row, err := r.q.GetIdentityByID(ctx, id)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return mapIdentity(row)
}

func (r *identitiesRepo) GetIdentityByUsername(ctx context.Context, username string) (domain.Identity, error) {
	row, err := r.q.GetIdentityByUsername(ctx, username)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return mapIdentity(row)
}

func (r *identitiesRepo) ListActiveEnrolled(ctx context.Context) ([]domain.Identity, error) {
	rows, err := r.q.ListActiveEnrolledIdentities(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Identity, 0, len(rows))
	for _, row := range rows {
		i, err := mapIdentity(row)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

func (r *identitiesRepo) UpdateTemplate(ctx context.Context, id string, tpl biohash.Template) error {
	n, err := r.q.UpdateIdentityTemplate(ctx, gen.UpdateIdentityTemplateParams{
		Template: mapOptionalTemplate(&tpl),
		ID:       id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *identitiesRepo) TouchLastAuth(ctx context.Context, id string, at time.Time) error {
	return r.q.TouchIdentityLastAuth(ctx, gen.TouchIdentityLastAuthParams{
		At: dbTime(at),
		ID: id,
	})
}

func (r *identitiesRepo) SetActive(ctx context.Context, id string, active bool) error {
	n, err := r.q.SetIdentityActive(ctx, gen.SetIdentityActiveParams{
		Active: active,
		ID:     id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *identitiesRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountIdentities(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
