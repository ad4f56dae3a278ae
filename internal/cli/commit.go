package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rrpe/internal/protocol"
)

// CommitOptions holds flags for the commit command.
type CommitOptions struct {
	*RootOptions
	Date  string
	Force bool
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit predictions for the trading day",
		Long: `Commit captures the market price near the intraday cut-off, obtains a
prediction for each tracked symbol, and persists a salted commitment digest
before the day's close is known. Re-running after a symbol is committed is a
no-op for that symbol.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "trade date YYYY-MM-DD (default: today in exchange time zone)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "ignore time window checks")

	return cmd
}

func runCommit(opts *CommitOptions, cmd *cobra.Command) error {
	a, err := buildApp(opts.RootOptions)
	if err != nil {
		return err
	}
	date, err := a.resolveDate(opts.Date)
	if err != nil {
		return err
	}

	rep, err := a.engine.Commit(cmd.Context(), date, opts.Force)
	if err != nil {
		if protocol.IsMissingSecret(err) {
			return WrapExitError(ExitCommandError, "commit failed", err)
		}
		return WrapExitError(ExitFailure, "commit failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(fmt.Sprintf("commit: date=%s changed=%t", date, rep.Changed), rep)
}
