// Package cmd implements the command-line interface for stalebot.
//
// This package provides the following commands:
//   - run: Triage every open issue of the repository once
//   - classify: Print the decision for specific issues without acting on them
//   - version: Display version information
//
// The run command is the default command when no subcommand is specified.
// Every flag falls back to an environment variable when it is not set on the
// command line; the GitHub token is read from GITHUB_TOKEN.
package cmd
