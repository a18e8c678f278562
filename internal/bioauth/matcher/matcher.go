// Package matcher finds the closest enrolled identity to a probe template.
package matcher

import (
	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

// Candidate is one entry of the population snapshot handed to FindBestMatch.
type Candidate struct {
	Identity domain.Identity
}

// Match is the best candidate and its distance to the probe.
type Match struct {
	Identity domain.Identity
	Distance int
}

// Candidates wraps identities in scan order.
func Candidates(identities []domain.Identity) []Candidate {
	out := make([]Candidate, len(identities))
	for i, id := range identities {
		out[i] = Candidate{Identity: id}
	}
	return out
}

// FindBestMatch scans candidates in the order given and returns the one with
// the smallest Hamming distance to probe. A later candidate only replaces the
// current best when it is strictly closer, so the first one seen wins ties.
// Inactive and unenrolled candidates are skipped. ok is false when no
// candidate was eligible.
func FindBestMatch(probe biohash.Template, candidates []Candidate) (best Match, ok bool, err error) {
	for _, c := range candidates {
		if !c.Identity.MatchEligible() {
			continue
		}

		d, err := biohash.Hamming(probe, *c.Identity.Template)
		if err != nil {
			return Match{}, false, err
		}

		if !ok || d < best.Distance {
			best = Match{Identity: c.Identity, Distance: d}
			ok = true
		}
	}
	return best, ok, nil
}
