package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rrpe/internal/protocol"
)

// RevealOptions holds flags for the reveal command.
type RevealOptions struct {
	*RootOptions
	Date  string
	Force bool
}

// NewRevealCommand creates the reveal command.
func NewRevealCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RevealOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Reveal predictions after close and verify commitments",
		Long: `Reveal fetches closing prices for each committed symbol, reproduces the
commitment from its inputs (reconstructing them for legacy records), verifies
it against the stored digest, and appends the outcome record to the entropy
log. A commitment mismatch aborts the reveal: it signals corruption or a
violated security property and is never downgraded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReveal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "trade date YYYY-MM-DD (default: today in exchange time zone)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "ignore time window checks")

	return cmd
}

func runReveal(opts *RevealOptions, cmd *cobra.Command) error {
	a, err := buildApp(opts.RootOptions)
	if err != nil {
		return err
	}
	date, err := a.resolveDate(opts.Date)
	if err != nil {
		return err
	}

	rep, err := a.engine.Reveal(cmd.Context(), date, opts.Force)
	if err != nil {
		if protocol.IsMissingSecret(err) {
			return WrapExitError(ExitCommandError, "reveal failed", err)
		}
		return WrapExitError(ExitFailure, "reveal failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(fmt.Sprintf("reveal: date=%s changed=%t", date, rep.Changed), rep)
}
