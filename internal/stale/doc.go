// Package stale implements the stale-issue triage policy and the loop that
// applies it to every open issue of a repository.
//
// A run lists the open issues once, in the order the tracker yields them,
// and for each one decides exactly one of three outcomes:
//
//   - close: the bot already warned the issue (its latest comment is the
//     bot's) and nothing happened for CloseAfter since
//   - mark stale: the issue has been inactive for StaleAfter, so the bot
//     posts the warning comment
//   - no action: everything else, including any issue carrying an exempt label
//
// Issues younger than MinAge are never touched. The decision is recomputed
// from the issue's current fields on every run; nothing is persisted.
//
// Example usage:
//
//	policy := stale.DefaultPolicy("huggingface", "accelerate")
//	triager := stale.NewTriager(tracker, policy, stale.WithLogger(logger))
//	summary, err := triager.Run(ctx)
package stale
