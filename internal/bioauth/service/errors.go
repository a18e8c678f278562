package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

var (
	ErrInvalidProbeInput      = errors.New("invalid_probe_input")
	ErrNoEnrolledTemplate     = errors.New("no_enrolled_template")
	ErrDuplicateIdentity      = errors.New("duplicate_identity")
	ErrPersistenceUnavailable = errors.New("persistence_unavailable")
	ErrIdentityNotFound       = errors.New("identity_not_found")
	ErrInvalidThreshold       = errors.New("invalid_threshold")
	ErrInvalidRegistration    = errors.New("invalid_registration")
	ErrSignerUnavailable      = errors.New("signer_unavailable")

	// ErrMalformedTemplate is re-exported so callers of this package can
	// match probe decoding failures without importing biohash.
	ErrMalformedTemplate = biohash.ErrMalformedTemplate
)

// RejectReason says why a Decision was not accepted.
type RejectReason string

const (
	ReasonNone               RejectReason = ""
	ReasonInvalidCredentials RejectReason = "invalid_credentials"
	ReasonAccountInactive    RejectReason = "account_inactive"
	ReasonOverThreshold      RejectReason = "over_threshold"
	ReasonNoCandidate        RejectReason = "no_candidate"
)

// storeErr maps a store failure onto the service taxonomy. Anything that is
// not a known domain condition means the store could not answer.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrIdentityNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrDuplicateIdentity
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
}
