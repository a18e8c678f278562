package service

import (
	"fmt"
	"time"

	"github.com/mcuadros/go-defaults"
)

// Policy holds the tunables of the decision engine. Zero fields are filled
// from the default tags by WithDefaults.
type Policy struct {
	// DefaultThreshold is the largest Hamming distance still accepted.
	DefaultThreshold int `default:"15"`

	// TemplateBits is the template length every enrolled identity and every
	// probe must have.
	TemplateBits int `default:"128"`

	// StoreTimeout bounds each store round-trip.
	StoreTimeout time.Duration `default:"5s"`

	// AuditPasswordAttempts records password logins in the audit trail.
	AuditPasswordAttempts bool

	// RecentAttempts is how many attempts a profile lists.
	RecentAttempts int `default:"10"`
}

// DefaultPolicy returns a Policy with every default applied.
func DefaultPolicy() Policy {
	var p Policy
	defaults.SetDefaults(&p)
	return p
}

// WithDefaults returns p with its zero fields set to their defaults.
func (p Policy) WithDefaults() Policy {
	defaults.SetDefaults(&p)
	return p
}

// Threshold resolves a per-call override against the default.
func (p Policy) Threshold(override *int) (int, error) {
	if override == nil {
		return p.DefaultThreshold, nil
	}
	if *override < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidThreshold, *override)
	}
	return *override, nil
}
