package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/aussiebroadwan/bioauth/pkg/extractor"
	"github.com/aussiebroadwan/bioauth/pkg/idx"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

// RegisterInput is a new identity. Probe is optional; without it the
// identity is created unenrolled.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Probe    ProbeInput
}

type IdentityService struct {
	Store     store.Store
	Hasher    *cryptox.Hasher
	Extractor extractor.Extractor
	Policy    Policy

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *IdentityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Register creates an identity, enrolling a template when one is given.
// Concurrent registrations of one username or email resolve to a single
// winner; the others get ErrDuplicateIdentity.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (domain.Identity, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return domain.Identity{}, fmt.Errorf("%w: username, email and password are required", ErrInvalidRegistration)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: invalid email", ErrInvalidRegistration)
	}

	var template *biohash.Template
	if !in.Probe.Empty() {
		tpl, err := resolveProbe(ctx, s.Extractor, s.Policy.TemplateBits, in.Probe)
		if err != nil {
			return domain.Identity{}, err
		}
		template = &tpl
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	identity := domain.Identity{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Template:     template,
		CreatedAt:    now,
		Active:       true,
	}

	wctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	if err := s.Store.Identities().CreateIdentity(wctx, identity); err != nil {
		return domain.Identity{}, storeErr(err)
	}

	slogx.FromContext(ctx).Info("identity registered",
		"identity_id", identity.ID,
		"enrolled", identity.Enrolled(),
	)
	return identity, nil
}

// Enroll replaces the identity's template.
func (s *IdentityService) Enroll(ctx context.Context, identityID string, tpl biohash.Template) error {
	if tpl.Len() != s.Policy.TemplateBits {
		return fmt.Errorf("%w: template has %d bits, want %d", biohash.ErrMalformedTemplate, tpl.Len(), s.Policy.TemplateBits)
	}

	ctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	return storeErr(s.Store.Identities().UpdateTemplate(ctx, identityID, tpl))
}

// Deactivate soft-deletes an identity. It stays in the store but is never
// matched or allowed to log in again.
func (s *IdentityService) Deactivate(ctx context.Context, identityID string) error {
	wctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	if err := s.Store.Identities().SetActive(wctx, identityID, false); err != nil {
		return storeErr(err)
	}

	slogx.FromContext(ctx).Info("identity deactivated", "identity_id", identityID)
	return nil
}

func (s *IdentityService) GetByID(ctx context.Context, identityID string) (domain.Identity, error) {
	ctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	i, err := store.RetryRead(ctx, func(ctx context.Context) (domain.Identity, error) {
		return s.Store.Identities().GetIdentityByID(ctx, identityID)
	})
	return i, storeErr(err)
}

func (s *IdentityService) GetByUsername(ctx context.Context, username string) (domain.Identity, error) {
	ctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	i, err := store.RetryRead(ctx, func(ctx context.Context) (domain.Identity, error) {
		return s.Store.Identities().GetIdentityByUsername(ctx, username)
	})
	return i, storeErr(err)
}

// Profile returns the identity and its Policy.RecentAttempts newest attempts.
func (s *IdentityService) Profile(ctx context.Context, identityID string) (domain.Identity, []domain.AuthAttempt, error) {
	identity, err := s.GetByID(ctx, identityID)
	if err != nil {
		return domain.Identity{}, nil, err
	}

	ctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	attempts, err := store.RetryRead(ctx, func(ctx context.Context) ([]domain.AuthAttempt, error) {
		return s.Store.Attempts().ListRecentAttempts(ctx, identityID, s.Policy.RecentAttempts)
	})
	if err != nil {
		return domain.Identity{}, nil, storeErr(err)
	}
	return identity, attempts, nil
}
