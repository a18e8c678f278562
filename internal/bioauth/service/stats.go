package service

import (
	"context"
	"math"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/domain"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
)

// Summary aggregates an identity's attempts.
type Summary struct {
	TotalAttempts      int
	SuccessfulAttempts int

	// SuccessRate is a percentage rounded to two decimals.
	SuccessRate float64

	// Distance figures cover attempts that carry a distance; password
	// attempts do not.
	AverageDistance float64
	BestDistance    *int
	WorstDistance   *int
}

// Summarize computes a Summary. It is pure and never fails.
func Summarize(attempts []domain.AuthAttempt) Summary {
	var (
		sum     Summary
		total   int
		counted int
	)

	sum.TotalAttempts = len(attempts)
	for _, a := range attempts {
		if a.Success {
			sum.SuccessfulAttempts++
		}
		if a.Distance == nil {
			continue
		}

		d := *a.Distance
		total += d
		counted++
		if sum.BestDistance == nil || d < *sum.BestDistance {
			sum.BestDistance = &d
		}
		if sum.WorstDistance == nil || d > *sum.WorstDistance {
			sum.WorstDistance = &d
		}
	}

	if sum.TotalAttempts > 0 {
		rate := float64(sum.SuccessfulAttempts) / float64(sum.TotalAttempts) * 100
		sum.SuccessRate = math.Round(rate*100) / 100
	}
	if counted > 0 {
		sum.AverageDistance = float64(total) / float64(counted)
	}
	return sum
}

// StatsService reads the audit trail and summarizes it on demand.
type StatsService struct {
	Store  store.Store
	Policy Policy
}

// Summarize returns the summary for one identity.
func (s *StatsService) Summarize(ctx context.Context, identityID string) (Summary, error) {
	ctx, cancel := storeContext(ctx, s.Policy.StoreTimeout)
	defer cancel()

	if _, err := store.RetryRead(ctx, func(ctx context.Context) (domain.Identity, error) {
		return s.Store.Identities().GetIdentityByID(ctx, identityID)
	}); err != nil {
		return Summary{}, storeErr(err)
	}

	attempts, err := store.RetryRead(ctx, func(ctx context.Context) ([]domain.AuthAttempt, error) {
		return s.Store.Attempts().ListAttemptsByIdentity(ctx, identityID)
	})
	if err != nil {
		return Summary{}, storeErr(err)
	}

	return Summarize(attempts), nil
}
