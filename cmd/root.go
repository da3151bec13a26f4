package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the stalebot application
var rootCmd = &cobra.Command{
	Use:   "stalebot",
	Short: "Marks inactive GitHub issues as stale and closes them later",
	Long: `stalebot triages the open issues of one GitHub repository.

Issues without activity for more than 23 days get a stale warning comment.
Issues whose last comment is that warning and that stayed untouched for more
than 7 days afterwards are closed. Issues younger than 30 days and issues
carrying an exempt label are never touched.

It is meant to run once per invocation from a scheduler such as a cron job or
a scheduled CI workflow.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "stalebot version %s\n" .Version}}`)

	// If no subcommand is provided, run the triage by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newVersionCmd())
}
