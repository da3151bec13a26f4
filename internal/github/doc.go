// Package github implements stale.Tracker on top of the GitHub REST API.
//
// The client lists open issues of one repository page by page as the caller
// consumes them, fetches comments, closes issues, and posts comments. Every
// API call is wrapped in a client span and recorded in the
// github_api_operations_total metrics. Errors are returned as is, wrapped with
// the operation; nothing is retried.
//
// Example usage:
//
//	client, err := github.NewClient(ctx, github.Config{
//	    Token: os.Getenv("GITHUB_TOKEN"),
//	    Owner: "huggingface",
//	    Repo:  "accelerate",
//	})
//	if err != nil {
//	    return err
//	}
//	err = client.ForeachOpenIssue(ctx, func(issue *stale.Issue) error {
//	    fmt.Println(issue.Number, issue.Title)
//	    return nil
//	})
package github
