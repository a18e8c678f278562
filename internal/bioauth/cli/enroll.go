package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// EnrollOptions holds flags for the enroll command.
type EnrollOptions struct {
	*RootOptions
	Email            string
	Template         string
	GeneratePassword bool
	Replace          bool
}

type enrollResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Enrolled bool   `json:"enrolled"`
	Password string `json:"generated_password,omitempty"`
	Replaced bool   `json:"replaced,omitempty"`
}

// NewEnrollCommand creates the enroll command.
func NewEnrollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnrollOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "enroll <username>",
		Short: "Register an identity or replace its template",
		Long: `Register a new identity with an optional biometric template.

The password is read from the terminal unless --generate-password is set.
With --replace the identity must already exist and only its template is
replaced.

Examples:
  bioauthctl enroll alice --email alice@example.com --template "0,1,1,0,..."
  bioauthctl enroll bob --email bob@example.com --generate-password
  bioauthctl enroll alice --replace --template "1,1,0,0,..."`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnroll(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "email address of a new identity")
	cmd.Flags().StringVar(&opts.Template, "template", "", "template text, comma separated bits")
	cmd.Flags().BoolVar(&opts.GeneratePassword, "generate-password", false, "generate and print a random password")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "replace the template of an existing identity")

	return cmd
}

func runEnroll(opts *EnrollOptions, cmd *cobra.Command, username string) error {
	ctx := cmd.Context()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	st, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := opts.identityService(st)
	if err != nil {
		return err
	}

	if opts.Replace {
		if opts.Template == "" {
			return NewExitError(ExitCommandError, "--replace needs --template")
		}
		tpl, err := biohash.Decode(opts.Template, opts.Bits)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid template", err)
		}

		identity, err := svc.GetByUsername(ctx, username)
		if err != nil {
			return WrapExitError(ExitFailure, "lookup failed", err)
		}
		if err := svc.Enroll(ctx, identity.ID, tpl); err != nil {
			return WrapExitError(ExitFailure, "enroll failed", err)
		}

		res := enrollResult{ID: identity.ID, Username: identity.Username, Enrolled: true, Replaced: true}
		return out.Success(res, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "template replaced for %s (%s)\n", res.Username, res.ID)
			return err
		})
	}

	var password, generated string
	if opts.GeneratePassword {
		generated, err = cryptox.GeneratePassword()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to generate password", err)
		}
		password = generated
	} else {
		password, err = promptPassword(cmd.ErrOrStderr())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read password", err)
		}
	}

	identity, err := svc.Register(ctx, service.RegisterInput{
		Username: username,
		Email:    opts.Email,
		Password: password,
		Probe:    service.ProbeInput{Template: opts.Template},
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateIdentity) {
			return WrapExitError(ExitFailure, "identity already exists", err)
		}
		return WrapExitError(ExitCommandError, "enroll failed", err)
	}

	res := enrollResult{
		ID:       identity.ID,
		Username: identity.Username,
		Enrolled: identity.Enrolled(),
		Password: generated,
	}
	return out.Success(res, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "registered %s (%s) enrolled=%t\n", res.Username, res.ID, res.Enrolled); err != nil {
			return err
		}
		if generated != "" {
			_, err := fmt.Fprintf(w, "password: %s\n", generated)
			return err
		}
		return nil
	})
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	password := strings.TrimSpace(string(pw))
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
