// Package cli implements bioauthctl, the operator tool for the identity
// store: migrations, enrolment, deactivation, stats and dry-run matching.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/app"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database   string
	Driver     string
	Format     string // "json" | "text"
	PepperFile string
	Threshold  int
	Bits       int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for bioauthctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	policy := service.DefaultPolicy()

	cmd := &cobra.Command{
		Use:   "bioauthctl",
		Short: "Administer a bioauth identity store",
		Long:  "Operator tool for the bioauth identity store. Every command opens the store directly and applies pending migrations first.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Driver != app.DriverSQLite && opts.Driver != app.DriverPostgres {
				return fmt.Errorf("invalid driver %q: must be sqlite or postgres", opts.Driver)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "bioauth.db", "SQLite file or postgres URL")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", app.DriverSQLite, "database driver (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.PepperFile, "pepper", "pepper", "path to the password pepper file")
	cmd.PersistentFlags().IntVar(&opts.Threshold, "default-threshold", policy.DefaultThreshold, "default Hamming distance threshold")
	cmd.PersistentFlags().IntVar(&opts.Bits, "bits", policy.TemplateBits, "template length in bits")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewEnrollCommand(opts))
	cmd.AddCommand(NewDeactivateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// policy is the engine policy for the global flags.
func (o *RootOptions) policy() service.Policy {
	p := service.Policy{TemplateBits: o.Bits}.WithDefaults()
	p.DefaultThreshold = o.Threshold
	return p
}

// open connects to the store named by --db and --driver.
func (o *RootOptions) open(ctx context.Context) (store.Store, error) {
	st, err := app.OpenStore(ctx, o.Driver, o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// identityService builds an IdentityService over st with the pepper loaded.
func (o *RootOptions) identityService(st store.Store) (*service.IdentityService, error) {
	pepper, err := cryptox.LoadPepper(o.PepperFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load pepper", err)
	}
	return &service.IdentityService{
		Store:  st,
		Hasher: cryptox.NewHasher(pepper),
		Policy: o.policy(),
	}, nil
}
