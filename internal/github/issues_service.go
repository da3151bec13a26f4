package github

import (
	"context"

	gh "github.com/google/go-github/v66/github"
)

// issuesService is the subset of gh.IssuesService the client uses.
type issuesService interface {
	ListByRepo(ctx context.Context, owner, repo string, opts *gh.IssueListByRepoOptions) ([]*gh.Issue, *gh.Response, error)
	Get(ctx context.Context, owner, repo string, number int) (*gh.Issue, *gh.Response, error)
	ListComments(ctx context.Context, owner, repo string, number int, opts *gh.IssueListCommentsOptions) ([]*gh.IssueComment, *gh.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, issue *gh.IssueRequest) (*gh.Issue, *gh.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *gh.IssueComment) (*gh.IssueComment, *gh.Response, error)
}

var _ issuesService = (*gh.IssuesService)(nil)
