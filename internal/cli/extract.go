package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	*RootOptions
	Date   string
	Window int
	Bits   int
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract randomness from accumulated symbol outcomes",
		Long: `Extract pools the trailing window of per-symbol outcome bytes from the
entropy log with a freshly fetched beacon value and hashes them into a
fixed-length hexadecimal output, written back into the per-day document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "trade date YYYY-MM-DD (default: today in exchange time zone)")
	cmd.Flags().IntVar(&opts.Window, "window", 0, "number of trailing log entries to pool (default from config)")
	cmd.Flags().IntVar(&opts.Bits, "bits", 0, "output length in bits (default from config)")

	return cmd
}

func runExtract(opts *ExtractOptions, cmd *cobra.Command) error {
	a, err := buildApp(opts.RootOptions)
	if err != nil {
		return err
	}
	date, err := a.resolveDate(opts.Date)
	if err != nil {
		return err
	}

	window := opts.Window
	if window <= 0 {
		window = a.cfg.ExtractWindow
	}
	bits := opts.Bits
	if bits <= 0 {
		bits = a.cfg.ExtractBits
	}

	changed, err := a.extractor.Run(cmd.Context(), date, window, bits)
	if err != nil {
		return WrapExitError(ExitFailure, "extract failed", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	line := fmt.Sprintf("extract: date=%s changed=%t window=%d bits=%d", date, changed, window, bits)
	return f.Success(line, map[string]any{
		"date": date, "changed": changed, "window": window, "bits": bits,
	})
}
