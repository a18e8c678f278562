package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/matcher"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/aussiebroadwan/bioauth/pkg/extractor"
	"github.com/aussiebroadwan/bioauth/pkg/slogx"
)

// Decision is the outcome of one authentication call. A rejected Decision
// is not an error; errors are kept for bad requests and store outages.
type Decision struct {
	Accepted  bool
	Identity  *domain.Identity
	Distance  *int
	Threshold int
	Method    domain.AuthMethod
	Reason    RejectReason
}

// ProbeInput carries either template text or raw images for the extractor.
type ProbeInput struct {
	Template    string
	Face        []byte
	Fingerprint []byte
}

// Empty reports whether no probe data was supplied.
func (p ProbeInput) Empty() bool {
	return p.Template == "" && len(p.Face) == 0 && len(p.Fingerprint) == 0
}

// AuthService is the authentication decision engine. It holds no state
// between calls and is safe for concurrent use.
type AuthService struct {
	Store     store.Store
	Hasher    *cryptox.Hasher
	Audit     *AuditRecorder
	Extractor extractor.Extractor
	Policy    Policy

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// withTimeout bounds a store round-trip by Policy.StoreTimeout.
func (s *AuthService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return storeContext(ctx, s.Policy.StoreTimeout)
}

func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// ResolveProbe turns a probe request into a template of Policy.TemplateBits
// bits. Template text takes precedence over images.
func (s *AuthService) ResolveProbe(ctx context.Context, in ProbeInput) (biohash.Template, error) {
	return resolveProbe(ctx, s.Extractor, s.Policy.TemplateBits, in)
}

func resolveProbe(ctx context.Context, ex extractor.Extractor, bits int, in ProbeInput) (biohash.Template, error) {
	if in.Template != "" {
		return biohash.Decode(in.Template, bits)
	}

	if len(in.Face) == 0 || len(in.Fingerprint) == 0 {
		return biohash.Template{}, fmt.Errorf("%w: template or both images required", ErrInvalidProbeInput)
	}
	if ex == nil {
		return biohash.Template{}, fmt.Errorf("%w: no extractor configured", ErrInvalidProbeInput)
	}

	tpl, err := ex.Extract(ctx, in.Face, in.Fingerprint)
	if err != nil {
		return biohash.Template{}, fmt.Errorf("%w: %w", ErrInvalidProbeInput, err)
	}
	if tpl.Len() != bits {
		return biohash.Template{}, fmt.Errorf("%w: extractor returned %d bits, want %d", ErrInvalidProbeInput, tpl.Len(), bits)
	}
	return tpl, nil
}

func (s *AuthService) checkProbe(probe biohash.Template) error {
	if probe.Len() != s.Policy.TemplateBits {
		return fmt.Errorf("%w: probe has %d bits, want %d", biohash.ErrMalformedTemplate, probe.Len(), s.Policy.TemplateBits)
	}
	return nil
}

// AuthenticatePassword checks a username and password. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) AuthenticatePassword(ctx context.Context, username, password string) (Decision, error) {
	l := slogx.FromContext(ctx)
	decision := Decision{Method: domain.MethodPassword}

	rctx, cancel := s.withTimeout(ctx)
	identity, err := store.RetryRead(rctx, func(ctx context.Context) (domain.Identity, error) {
		return s.Store.Identities().GetIdentityByUsername(ctx, username)
	})
	cancel()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password login for unknown username")
			s.auditPassword(ctx, nil, false)
			decision.Reason = ReasonInvalidCredentials
			return decision, nil
		}
		return Decision{}, storeErr(err)
	}

	if err := s.Hasher.Verify(password, identity.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Warn("stored password hash unreadable", slog.String("identity_id", identity.ID), slog.Any("error", err))
		}
		s.auditPassword(ctx, &identity.ID, false)
		decision.Reason = ReasonInvalidCredentials
		return decision, nil
	}

	if !identity.Active {
		s.auditPassword(ctx, &identity.ID, false)
		decision.Reason = ReasonAccountInactive
		return decision, nil
	}

	s.touchLastAuth(ctx, &identity)
	s.auditPassword(ctx, &identity.ID, true)

	decision.Accepted = true
	decision.Identity = &identity
	return decision, nil
}

func (s *AuthService) auditPassword(ctx context.Context, identityID *string, success bool) {
	if s.Policy.AuditPasswordAttempts {
		s.Audit.Record(ctx, identityID, domain.MethodPassword, success, nil)
	}
}

// Identify runs a 1:N match of probe against every active enrolled
// identity. Exactly one attempt is recorded per call, including when the
// population is empty.
func (s *AuthService) Identify(ctx context.Context, probe biohash.Template, threshold *int) (Decision, error) {
	limit, err := s.Policy.Threshold(threshold)
	if err != nil {
		return Decision{}, err
	}
	if err := s.checkProbe(probe); err != nil {
		return Decision{}, err
	}

	rctx, cancel := s.withTimeout(ctx)
	population, err := store.RetryRead(rctx, func(ctx context.Context) ([]domain.Identity, error) {
		return s.Store.Identities().ListActiveEnrolled(ctx)
	})
	cancel()
	if err != nil {
		return Decision{}, storeErr(err)
	}

	decision := Decision{Method: domain.MethodBiometricLogin, Threshold: limit}

	best, ok, err := matcher.FindBestMatch(probe, matcher.Candidates(population))
	if err != nil {
		return Decision{}, fmt.Errorf("match population: %w", err)
	}
	if !ok {
		s.Audit.Record(ctx, nil, domain.MethodBiometricLogin, false, nil)
		decision.Reason = ReasonNoCandidate
		return decision, nil
	}

	distance := best.Distance
	success := distance <= limit
	s.Audit.Record(ctx, &best.Identity.ID, domain.MethodBiometricLogin, success, &distance)

	decision.Distance = &distance
	if !success {
		decision.Reason = ReasonOverThreshold
		return decision, nil
	}

	identity := best.Identity
	s.touchLastAuth(ctx, &identity)

	decision.Accepted = true
	decision.Identity = &identity
	return decision, nil
}

// Verify runs a 1:1 match of probe against identityID, which the caller
// has already established from a session token.
func (s *AuthService) Verify(ctx context.Context, identityID string, probe biohash.Template, threshold *int) (Decision, error) {
	limit, err := s.Policy.Threshold(threshold)
	if err != nil {
		return Decision{}, err
	}
	if err := s.checkProbe(probe); err != nil {
		return Decision{}, err
	}

	rctx, cancel := s.withTimeout(ctx)
	identity, err := store.RetryRead(rctx, func(ctx context.Context) (domain.Identity, error) {
		return s.Store.Identities().GetIdentityByID(ctx, identityID)
	})
	cancel()
	if err != nil {
		return Decision{}, storeErr(err)
	}

	decision := Decision{Method: domain.MethodBiometricVerify, Threshold: limit}

	if !identity.Active {
		s.Audit.Record(ctx, &identity.ID, domain.MethodBiometricVerify, false, nil)
		decision.Reason = ReasonAccountInactive
		return decision, nil
	}
	if !identity.Enrolled() {
		return Decision{}, ErrNoEnrolledTemplate
	}

	distance, err := biohash.Hamming(probe, *identity.Template)
	if err != nil {
		return Decision{}, fmt.Errorf("compare template: %w", err)
	}

	success := distance <= limit
	s.Audit.Record(ctx, &identity.ID, domain.MethodBiometricVerify, success, &distance)

	decision.Distance = &distance
	if !success {
		decision.Reason = ReasonOverThreshold
		return decision, nil
	}

	s.touchLastAuth(ctx, &identity)

	decision.Accepted = true
	decision.Identity = &identity
	return decision, nil
}

// touchLastAuth moves the identity's last_auth_at forward. A failure does
// not undo the accept; it is logged.
func (s *AuthService) touchLastAuth(ctx context.Context, identity *domain.Identity) {
	now := s.now().UTC()

	wctx, cancel := s.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	if err := s.Store.Identities().TouchLastAuth(wctx, identity.ID, now); err != nil {
		slogx.FromContext(ctx).Error("last_auth_update_failed",
			slog.String("identity_id", identity.ID),
			slog.Any("error", err),
		)
		return
	}
	if identity.LastAuthAt == nil || identity.LastAuthAt.Before(now) {
		identity.LastAuthAt = &now
	}
}
