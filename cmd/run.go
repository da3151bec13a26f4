package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/stalebot/internal/stale"
)

func newRunCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Triage all open issues once",
		Long: `Walk every open issue of the repository in listing order and apply the
stale policy to it:

  - close issues whose last comment is the bot's stale warning and that were
    not updated for more than 7 days
  - post the stale warning on issues not updated for more than 23 days
  - leave everything else alone, including issues younger than 30 days and
    issues with an exempt label

The first GitHub API error stops the run and the command exits non-zero.
Issues after the failing one are not looked at until the next run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.loadEnv(cmd); err != nil {
				return err
			}
			return runTriage(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}

	opts.addFlags(cmd)
	opts.addRunFlags(cmd)

	return cmd
}

func runTriage(ctx context.Context, opts options, logOutput io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env, err := opts.setup(ctx, logOutput)
	if err != nil {
		return err
	}
	defer env.close()

	triager := stale.NewTriager(env.client, env.policy,
		stale.WithLogger(env.logger),
		stale.WithMetrics(env.provider.Metrics()),
		stale.WithAuditLogger(env.audit),
		stale.WithDryRun(opts.dryRun),
		stale.WithRepo(env.repo),
	)

	if _, err := triager.Run(ctx); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}
