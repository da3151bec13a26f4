package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/teemow/stalebot/internal/instrumentation"
	"github.com/teemow/stalebot/internal/logging"
	"github.com/teemow/stalebot/internal/stale"
)

const (
	defaultPerPage = 100
	userAgent      = "stalebot"
)

// Config holds the settings for a Client.
type Config struct {
	// Token authenticates every request. Required.
	Token string

	// Owner and Repo identify the repository all operations target.
	Owner string
	Repo  string

	// BaseURL is the API root of a GitHub Enterprise Server instance,
	// e.g. "https://github.example.com/api/v3/". Empty means api.github.com.
	BaseURL string

	// PerPage is the page size for listings (default: 100).
	PerPage int

	// HTTPClient is the transport wrapped with token authentication.
	// Defaults to http.DefaultClient.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Client implements stale.Tracker for one GitHub repository.
type Client struct {
	issues  issuesService
	owner   string
	repo    string
	perPage int
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

var _ stale.Tracker = (*Client)(nil)

// NewClient creates a Client authenticated with cfg.Token.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, stale.ErrMissingToken
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("%w: %q", stale.ErrInvalidRepo, cfg.Owner+"/"+cfg.Repo)
	}

	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(cfg.Token)}))

	client := gh.NewClient(httpClient)
	client.UserAgent = userAgent
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.BaseURL, err)
		}
	}

	return newClient(client.Issues, cfg), nil
}

func newClient(issues issuesService, cfg Config) *Client {
	c := &Client{
		issues:  issues,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		perPage: cfg.PerPage,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if c.perPage <= 0 {
		c.perPage = defaultPerPage
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = &instrumentation.Metrics{}
	}
	return c
}

// Repo returns the "owner/name" of the target repository.
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

// observe runs fn inside a client span tagged with the repository and
// records the operation's metrics.
func (c *Client) observe(ctx context.Context, operation string, attrs *instrumentation.SpanAttributeBuilder, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartGitHubAPISpan(ctx, operation, attrs.WithRepo(c.owner, c.repo).Build()...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGitHubAPIOperation(ctx, operation, status, duration)
	logging.WithOperation(c.logger, operation).Debug("github api call",
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
	)
	return err
}

// ForeachOpenIssue calls fn for each open issue, fetching the next page only
// after fn has returned for every issue of the current one.
func (c *Client) ForeachOpenIssue(ctx context.Context, fn func(*stale.Issue) error) error {
	opts := &gh.IssueListByRepoOptions{
		State:       stale.StateOpen,
		ListOptions: gh.ListOptions{PerPage: c.perPage, Page: 1},
	}

	for {
		var (
			page []*gh.Issue
			resp *gh.Response
		)
		attrs := instrumentation.NewSpanAttributeBuilder().WithPage(opts.Page)
		err := c.observe(ctx, instrumentation.OperationListIssues, attrs, func(ctx context.Context) error {
			var err error
			page, resp, err = c.issues.ListByRepo(ctx, c.owner, c.repo, opts)
			return err
		})
		if err != nil {
			return fmt.Errorf("list open issues of %s (page %d): %w", c.Repo(), opts.Page, err)
		}
		c.logger.Debug("fetched issues page",
			logging.Operation(instrumentation.OperationListIssues),
			slog.Int("page", opts.Page),
			slog.Int("count", len(page)),
		)

		for _, issue := range page {
			if err := fn(toIssue(issue)); err != nil {
				return err
			}
		}

		if resp == nil || resp.NextPage == 0 {
			return nil
		}
		opts.Page = resp.NextPage
	}
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(ctx context.Context, number int) (*stale.Issue, error) {
	var issue *gh.Issue
	attrs := instrumentation.NewSpanAttributeBuilder().WithIssue(number)
	err := c.observe(ctx, instrumentation.OperationGetIssue, attrs, func(ctx context.Context) error {
		var err error
		issue, _, err = c.issues.Get(ctx, c.owner, c.repo, number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get issue #%d: %w", number, err)
	}
	return toIssue(issue), nil
}

// ListComments returns all comments of the issue, across pages.
func (c *Client) ListComments(ctx context.Context, number int) ([]stale.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: c.perPage, Page: 1},
	}

	var comments []stale.Comment
	for {
		var (
			page []*gh.IssueComment
			resp *gh.Response
		)
		attrs := instrumentation.NewSpanAttributeBuilder().WithIssue(number).WithPage(opts.Page)
		err := c.observe(ctx, instrumentation.OperationListComments, attrs, func(ctx context.Context) error {
			var err error
			page, resp, err = c.issues.ListComments(ctx, c.owner, c.repo, number, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list comments of issue #%d: %w", number, err)
		}

		for _, comment := range page {
			comments = append(comments, toComment(comment))
		}

		if resp == nil || resp.NextPage == 0 {
			return comments, nil
		}
		opts.Page = resp.NextPage
	}
}

// CloseIssue sets the state of the issue to closed.
func (c *Client) CloseIssue(ctx context.Context, number int) error {
	attrs := instrumentation.NewSpanAttributeBuilder().WithIssue(number)
	err := c.observe(ctx, instrumentation.OperationCloseIssue, attrs, func(ctx context.Context) error {
		_, _, err := c.issues.Edit(ctx, c.owner, c.repo, number, &gh.IssueRequest{
			State: gh.String(stale.StateClosed),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("close issue #%d: %w", number, err)
	}
	return nil
}

// CreateComment posts a comment with the given body on the issue.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	attrs := instrumentation.NewSpanAttributeBuilder().WithIssue(number)
	err := c.observe(ctx, instrumentation.OperationCreateComment, attrs, func(ctx context.Context) error {
		_, _, err := c.issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{
			Body: gh.String(body),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("create comment on issue #%d: %w", number, err)
	}
	return nil
}

func toIssue(issue *gh.Issue) *stale.Issue {
	labels := make([]stale.Label, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, stale.Label{Name: l.GetName()})
	}
	return &stale.Issue{
		Number:        issue.GetNumber(),
		Title:         issue.GetTitle(),
		State:         issue.GetState(),
		CreatedAt:     issue.GetCreatedAt().Time,
		UpdatedAt:     issue.GetUpdatedAt().Time,
		Labels:        labels,
		IsPullRequest: issue.IsPullRequest(),
	}
}

func toComment(comment *gh.IssueComment) stale.Comment {
	return stale.Comment{
		ID:        comment.GetID(),
		Author:    comment.GetUser().GetLogin(),
		CreatedAt: comment.GetCreatedAt().Time,
	}
}
