package stale

import (
	"fmt"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Default policy values. Thresholds are whole numbers of days.
const (
	DefaultCloseAfter = 7 * day
	DefaultStaleAfter = 23 * day
	DefaultMinAge     = 30 * day
	DefaultBotLogin   = "github-actions[bot]"
)

// DefaultExemptLabels are the labels that keep an issue out of triage.
var DefaultExemptLabels = []string{
	"good first issue",
	"feature request",
	"wip",
}

// Action is the outcome of classifying an issue.
type Action string

const (
	ActionNone      Action = "no_action"
	ActionMarkStale Action = "mark_stale"
	ActionClose     Action = "close"
)

// Reasons attached to a Decision.
const (
	ReasonNotOpen         = "not_open"
	ReasonExemptLabel     = "exempt_label"
	ReasonTooNew          = "too_new"
	ReasonRecentlyUpdated = "recently_updated"
	ReasonAwaitingClose   = "awaiting_close"
	ReasonInactive        = "inactive"
	ReasonWarningExpired  = "stale_warning_expired"
)

// Decision is the classification of one issue at one point in time.
type Decision struct {
	Action Action
	Reason string
}

// ExemptLabels is an immutable, case-insensitive set of label names.
type ExemptLabels struct {
	names map[string]struct{}
}

// NewExemptLabels builds the set. Names are lower-cased; blanks are dropped.
func NewExemptLabels(names ...string) ExemptLabels {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return ExemptLabels{names: set}
}

// Contains reports whether name matches a member of the set, ignoring case.
func (e ExemptLabels) Contains(name string) bool {
	_, ok := e.names[strings.ToLower(name)]
	return ok
}

// Any reports whether any of the labels is exempt.
func (e ExemptLabels) Any(labels []Label) bool {
	for _, l := range labels {
		if e.Contains(l.Name) {
			return true
		}
	}
	return false
}

// Len returns the number of labels in the set.
func (e ExemptLabels) Len() int {
	return len(e.names)
}

// Policy holds the thresholds and identities used to classify issues.
type Policy struct {
	// CloseAfter is how long a bot-warned issue must stay untouched before it is closed.
	CloseAfter time.Duration

	// StaleAfter is how long an issue must stay untouched before it is warned.
	StaleAfter time.Duration

	// MinAge is the minimum age of an issue before any action is taken.
	MinAge time.Duration

	// BotLogin is the author login of the bot's own comments.
	BotLogin string

	// Exempt labels suppress every action.
	Exempt ExemptLabels

	// WarningText is the body of the stale warning comment.
	WarningText string
}

// DefaultPolicy returns the standard policy for the given repository.
func DefaultPolicy(owner, repo string) Policy {
	return Policy{
		CloseAfter:  DefaultCloseAfter,
		StaleAfter:  DefaultStaleAfter,
		MinAge:      DefaultMinAge,
		BotLogin:    DefaultBotLogin,
		Exempt:      NewExemptLabels(DefaultExemptLabels...),
		WarningText: WarningText(owner, repo),
	}
}

// WarningText returns the stale warning posted on inactive issues, linking
// to the repository's contributing guidelines.
func WarningText(owner, repo string) string {
	return "This issue has been automatically marked as stale because it has not had " +
		"recent activity. If you think this still needs to be addressed " +
		"please comment on this thread.\n\nPlease note that issues that do not follow the " +
		fmt.Sprintf("[contributing guidelines](https://github.com/%s/%s/blob/main/CONTRIBUTING.md) ", owner, repo) +
		"are likely to be ignored."
}

// Classify decides what to do with the issue at time now. It has no side
// effects and always returns one of the three actions. Closed issues are
// left alone.
//
// Elapsed times are counted in whole days before they are compared, so an
// issue updated 7 days and 23 hours ago has been inactive for 7 days.
//
// Close takes precedence over marking stale: an issue whose latest comment is
// the bot's warning and that stayed untouched for CloseAfter is closed, not
// warned again.
func (p Policy) Classify(now time.Time, issue *Issue) Decision {
	if issue.Closed() {
		return Decision{Action: ActionNone, Reason: ReasonNotOpen}
	}
	if p.Exempt.Any(issue.Labels) {
		return Decision{Action: ActionNone, Reason: ReasonExemptLabel}
	}
	if elapsedDays(now, issue.CreatedAt) < p.MinAge {
		return Decision{Action: ActionNone, Reason: ReasonTooNew}
	}

	sinceUpdate := elapsedDays(now, issue.UpdatedAt)
	if last, ok := issue.LastComment(); ok && last.Author == p.BotLogin {
		if sinceUpdate > p.CloseAfter {
			return Decision{Action: ActionClose, Reason: ReasonWarningExpired}
		}
		if sinceUpdate <= p.StaleAfter {
			return Decision{Action: ActionNone, Reason: ReasonAwaitingClose}
		}
	}
	if sinceUpdate > p.StaleAfter {
		return Decision{Action: ActionMarkStale, Reason: ReasonInactive}
	}
	return Decision{Action: ActionNone, Reason: ReasonRecentlyUpdated}
}

// elapsedDays returns the time between t and now truncated to whole days.
func elapsedDays(now, t time.Time) time.Duration {
	return now.Sub(t).Truncate(day)
}
