package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/stalebot/internal/stale"
)

func newClassifyCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "classify <number>...",
		Short: "Show what a run would do with the given issues",
		Long: `Fetch the given issues and their comments and print the action the stale
policy picks for each, with the reason. Nothing is closed or commented on.
Issues that are already closed are reported as no_action.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers := make([]int, 0, len(args))
			for _, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid issue number %q", arg)
				}
				numbers = append(numbers, n)
			}
			if err := opts.loadEnv(cmd); err != nil {
				return err
			}
			return runClassify(cmd.Context(), opts, numbers, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runClassify(ctx context.Context, opts options, numbers []int, out, logOutput io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := opts.setup(ctx, logOutput)
	if err != nil {
		return err
	}
	defer env.close()

	triager := stale.NewTriager(env.client, env.policy,
		stale.WithLogger(env.logger),
		stale.WithMetrics(env.provider.Metrics()),
		stale.WithRepo(env.repo),
	)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ISSUE\tSTATE\tACTION\tREASON\tTITLE")
	for _, n := range numbers {
		issue, err := env.client.GetIssue(ctx, n)
		if err != nil {
			return err
		}
		decision, err := triager.Evaluate(ctx, issue)
		if err != nil {
			return fmt.Errorf("issue #%d: %w", n, err)
		}
		fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n", issue.Number, issue.State, decision.Action, decision.Reason, issue.Title)
	}
	return w.Flush()
}
