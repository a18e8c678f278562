package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
)

// SeedFile lists identities to register in bulk.
type SeedFile struct {
	Identities []SeedIdentity `yaml:"identities"`
}

// SeedIdentity is one entry of a seed file. Template is optional.
type SeedIdentity struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Template string `yaml:"template,omitempty"`
}

// SeedReport is the seed command output.
type SeedReport struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// LoadSeedFile reads and validates a seed file. Unknown fields are rejected.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(seed.Identities) == 0 {
		return nil, errors.New("seed file has no identities")
	}
	for i, id := range seed.Identities {
		if id.Username == "" || id.Email == "" || id.Password == "" {
			return nil, fmt.Errorf("identities[%d]: username, email and password are required", i)
		}
	}

	return &seed, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Register identities from a YAML file",
		Long: `Register every identity listed in a YAML seed file. Identities whose
username or email is already taken are skipped.

Example file:
  identities:
    - username: alice
      email: alice@example.com
      password: correct-horse
      template: "0,1,1,0,..."`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			seed, err := LoadSeedFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid seed file", err)
			}

			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			svc, err := opts.identityService(st)
			if err != nil {
				return err
			}

			report := SeedReport{Created: []string{}, Skipped: []string{}}
			for _, id := range seed.Identities {
				_, err := svc.Register(ctx, service.RegisterInput{
					Username: id.Username,
					Email:    id.Email,
					Password: id.Password,
					Probe:    service.ProbeInput{Template: id.Template},
				})
				switch {
				case err == nil:
					report.Created = append(report.Created, id.Username)
				case errors.Is(err, service.ErrDuplicateIdentity):
					report.Skipped = append(report.Skipped, id.Username)
				default:
					return WrapExitError(ExitCommandError, "seed "+id.Username, err)
				}
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(report, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "created %d, skipped %d\n", len(report.Created), len(report.Skipped))
				return err
			})
		},
	}
}
