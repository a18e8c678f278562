package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewDeactivateCommand creates the deactivate command.
func NewDeactivateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "deactivate <username>",
		Short:         "Soft-delete an identity",
		Long:          "Mark an identity inactive. It keeps its audit trail but can no longer log in or be matched.",
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

			svc, err := opts.identityService(st)
			if err != nil {
				return err
			}

			identity, err := svc.GetByUsername(ctx, args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "lookup failed", err)
			}
			if err := svc.Deactivate(ctx, identity.ID); err != nil {
				return WrapExitError(ExitCommandError, "deactivate failed", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			res := map[string]string{"id": identity.ID, "username": identity.Username}
			return out.Success(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deactivated %s (%s)\n", identity.Username, identity.ID)
				return err
			})
		},
	}
}
