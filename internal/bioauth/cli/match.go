package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/matcher"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Template  string
	Threshold int
}

// MatchReport is the match command output.
type MatchReport struct {
	Candidates int    `json:"candidates"`
	Found      bool   `json:"found"`
	IdentityID string `json:"identity_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Distance   *int   `json:"distance,omitempty"`
	Threshold  int    `json:"threshold"`
	Accepted   bool   `json:"accepted"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Dry-run a 1:N identification",
		Long: `Find the closest enrolled identity to a probe template and report whether
a login would be accepted. Nothing is written to the audit trail.

A negative --threshold (the default) uses --default-threshold.

Examples:
  bioauthctl match --template "0,1,1,0,..."
  bioauthctl match --template "0,1,1,0,..." --threshold 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Template, "template", "", "probe template text (required)")
	_ = cmd.MarkFlagRequired("template")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", -1, "acceptance threshold for this run")

	return cmd
}

func runMatch(opts *MatchOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	probe, err := biohash.Decode(opts.Template, opts.Bits)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid template", err)
	}

	threshold := opts.RootOptions.Threshold
	if opts.Threshold >= 0 {
		threshold = opts.Threshold
	}

	st, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	identities, err := st.Identities().ListActiveEnrolled(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load candidates", err)
	}

	best, ok, err := matcher.FindBestMatch(probe, matcher.Candidates(identities))
	if err != nil {
		return WrapExitError(ExitCommandError, "match failed", err)
	}

	report := MatchReport{
		Candidates: len(identities),
		Found:      ok,
		Threshold:  threshold,
	}
	if ok {
		d := best.Distance
		report.IdentityID = best.Identity.ID
		report.Username = best.Identity.Username
		report.Distance = &d
		report.Accepted = d <= threshold
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(report, func(w io.Writer) error {
		return renderMatch(w, report)
	})
}

func renderMatch(w io.Writer, r MatchReport) error {
	if !r.Found {
		_, err := fmt.Fprintf(w, "no candidate among %d enrolled identities\n", r.Candidates)
		return err
	}

	verdict := "rejected"
	if r.Accepted {
		verdict = "accepted"
	}
	_, err := fmt.Fprintf(w, "closest: %s (%s) distance=%d threshold=%d %s\n",
		r.Username, r.IdentityID, *r.Distance, r.Threshold, verdict)
	return err
}
