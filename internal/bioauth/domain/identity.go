package domain

import (
	"time"

	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

// Identity is a registered principal. Identities are soft deleted by
// clearing Active; nothing in this module hard deletes them.
type Identity struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string            // argon2id PHC string
	Template     *biohash.Template // nil when not enrolled
	CreatedAt    time.Time
	LastAuthAt   *time.Time
	Active       bool
}

// Enrolled reports whether a biometric template is on file.
func (i Identity) Enrolled() bool { return i.Template != nil }

// MatchEligible reports whether the identity may be a biometric match target.
func (i Identity) MatchEligible() bool { return i.Active && i.Template != nil }
