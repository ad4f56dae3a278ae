package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rrpe/internal/schedule"
)

// NewRunCommand creates the run command: a daemon that drives commit, reveal,
// and extract from an in-process cron at their window times.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the commit/reveal/extract schedule as a daemon",
		Long: `Run starts an in-process scheduler that triggers commit at the commit
window, reveal at the reveal window, and extract afterwards, every trading
day, in the exchange time zone. Non-trading days are no-ops.

Shuts down gracefully on SIGINT/SIGTERM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(rootOpts, cmd)
		},
	}
	return cmd
}

func runDaemon(opts *RootOptions, cmd *cobra.Command) error {
	a, err := buildApp(opts)
	if err != nil {
		return err
	}

	sched, err := schedule.New(a.cfg, slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build scheduler", err)
	}

	today := func() string {
		return time.Now().In(a.loc).Format("2006-01-02")
	}

	if err := sched.At(a.cfg.Schedule.CommitStart, schedule.Job{
		Name: "commit",
		Run: func() error {
			_, err := a.engine.Commit(context.Background(), today(), false)
			return err
		},
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to schedule jobs", err)
	}
	if err := sched.At(a.cfg.Schedule.RevealStart, schedule.Job{
		Name: "reveal",
		Run: func() error {
			_, err := a.engine.Reveal(context.Background(), today(), false)
			return err
		},
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to schedule jobs", err)
	}
	if err := sched.At(a.cfg.Schedule.ExtractAt, schedule.Job{
		Name: "extract",
		Run: func() error {
			_, err := a.extractor.Run(context.Background(), today(), a.cfg.ExtractWindow, a.cfg.ExtractBits)
			return err
		},
	}); err != nil {
		return WrapExitError(ExitCommandError, "failed to schedule jobs", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sched.Start()
	defer sched.Stop()
	<-ctx.Done()
	return nil
}
