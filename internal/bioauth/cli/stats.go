package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
)

// StatsReport is the stats command output.
type StatsReport struct {
	Username           string  `json:"username"`
	IdentityID         string  `json:"identity_id"`
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	SuccessRate        float64 `json:"success_rate"`
	AverageDistance    float64 `json:"average_distance"`
	BestDistance       *int    `json:"best_distance"`
	WorstDistance      *int    `json:"worst_distance"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <username>",
		Short: "Summarize an identity's authentication attempts",
		Long: `Summarize every recorded attempt of an identity: counts, success rate
and the Hamming distance figures of biometric attempts.

Examples:
  bioauthctl stats alice
  bioauthctl stats alice --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			ids := &service.IdentityService{Store: st, Policy: opts.policy()}
			identity, err := ids.GetByUsername(ctx, args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "lookup failed", err)
			}

			stats := &service.StatsService{Store: st, Policy: opts.policy()}
			sum, err := stats.Summarize(ctx, identity.ID)
			if err != nil {
				return WrapExitError(ExitCommandError, "stats failed", err)
			}

			report := newStatsReport(identity.Username, identity.ID, sum)
			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(report, func(w io.Writer) error {
				return renderStats(w, report)
			})
		},
	}
}

func newStatsReport(username, id string, sum service.Summary) StatsReport {
	return StatsReport{
		Username:           username,
		IdentityID:         id,
		TotalAttempts:      sum.TotalAttempts,
		SuccessfulAttempts: sum.SuccessfulAttempts,
		SuccessRate:        sum.SuccessRate,
		AverageDistance:    sum.AverageDistance,
		BestDistance:       sum.BestDistance,
		WorstDistance:      sum.WorstDistance,
	}
}

// renderStats writes the text form of r.
func renderStats(w io.Writer, r StatsReport) error {
	_, err := fmt.Fprintf(w,
		"Identity:         %s (%s)\n"+
			"Total attempts:   %d\n"+
			"Successful:       %d\n"+
			"Success rate:     %.2f%%\n"+
			"Average distance: %.2f\n"+
			"Best distance:    %s\n"+
			"Worst distance:   %s\n",
		r.Username, r.IdentityID,
		r.TotalAttempts,
		r.SuccessfulAttempts,
		r.SuccessRate,
		r.AverageDistance,
		optInt(r.BestDistance),
		optInt(r.WorstDistance),
	)
	return err
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
