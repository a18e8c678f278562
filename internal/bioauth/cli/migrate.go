package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type migrateResult struct {
	Driver     string `json:"driver"`
	Identities bool   `json:"has_identities"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "migrate",
		Short:         "Apply pending schema migrations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			empty, err := st.Identities().IsEmpty(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to inspect identities", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			res := migrateResult{Driver: opts.Driver, Identities: !empty}
			return out.Success(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "migrations applied (%s)\n", opts.Driver)
				return err
			})
		},
	}
}
