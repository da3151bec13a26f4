package stale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Configuration errors. They are returned before any tracker call is made.
var (
	ErrMissingToken = errors.New("missing GitHub token")
	ErrInvalidRepo  = errors.New("invalid repository, expected owner/name")
)

// Issue states as reported by the tracker.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Issue is a snapshot of an issue as read from the tracker.
type Issue struct {
	Number        int
	Title         string
	State         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Labels        []Label
	Comments      []Comment
	IsPullRequest bool
}

// Closed reports whether the tracker has already closed the issue.
func (i *Issue) Closed() bool {
	return i.State == StateClosed
}

// Label is a label attached to an issue.
type Label struct {
	Name string
}

// Comment is a comment on an issue.
type Comment struct {
	ID        int64
	Author    string
	CreatedAt time.Time
}

// LastComment returns the comment with the latest creation time.
// Among comments created at the same instant the first one listed wins.
// The second return value is false when the issue has no comments.
func (i *Issue) LastComment() (Comment, bool) {
	if len(i.Comments) == 0 {
		return Comment{}, false
	}
	last := i.Comments[0]
	for _, c := range i.Comments[1:] {
		if c.CreatedAt.After(last.CreatedAt) {
			last = c
		}
	}
	return last, true
}

// Tracker is the issue tracker the triager reads from and acts on.
type Tracker interface {
	// ForeachOpenIssue calls fn for every open issue in listing order.
	// Pages are fetched lazily. Iteration stops at the first error, either
	// from the tracker or from fn, and that error is returned.
	ForeachOpenIssue(ctx context.Context, fn func(*Issue) error) error

	// ListComments returns every comment on the issue.
	ListComments(ctx context.Context, number int) ([]Comment, error)

	// CloseIssue sets the issue state to closed.
	CloseIssue(ctx context.Context, number int) error

	// CreateComment appends a comment with the given body.
	CreateComment(ctx context.Context, number int, body string) error
}

// ParseRepo splits an "owner/name" repository identifier.
func ParseRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}
	return owner, name, nil
}
