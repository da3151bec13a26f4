// Package logging provides structured logging utilities for stalebot.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create the process logger from the CLI flags:
//
//	logger, err := logging.New(os.Stderr, "json", debug)
//
// Attach standard attributes:
//
//	logger = logging.WithRepo(logger, "huggingface/accelerate")
//	logger.Info("issue triaged",
//	    logging.Issue(42),
//	    logging.Action("close"))
//
// Tokens are never logged directly; use SanitizeToken.
package logging
