package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/stalebot/internal/github"
	"github.com/teemow/stalebot/internal/instrumentation"
	"github.com/teemow/stalebot/internal/logging"
	"github.com/teemow/stalebot/internal/stale"
)

const defaultRepo = "huggingface/accelerate"

// options holds the startup values shared by the run and classify commands.
type options struct {
	repo           string
	botLogin       string
	exemptLabels   []string
	dryRun         bool
	debug          bool
	logFormat      string
	githubAPIURL   string
	pushgatewayURL string
	token          string
}

func (o *options) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.repo, "repo", defaultRepo, "Repository to triage as owner/name. Can also use STALEBOT_REPO env var.")
	cmd.Flags().StringVar(&o.botLogin, "bot-login", stale.DefaultBotLogin, "Login of the account that posts stale warnings. Can also use STALEBOT_BOT_LOGIN env var.")
	cmd.Flags().StringSliceVar(&o.exemptLabels, "exempt-label", stale.DefaultExemptLabels, "Label that keeps an issue out of triage, matched case-insensitively (repeatable). Can also use STALEBOT_EXEMPT_LABELS env var (comma-separated).")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&o.logFormat, "log-format", logging.FormatText, "Log format: text or json. Can also use LOG_FORMAT env var.")
	cmd.Flags().StringVar(&o.githubAPIURL, "github-api-url", "", "GitHub Enterprise API base URL, e.g. https://github.example.com/api/v3/. Can also use GITHUB_API_URL env var. Default: api.github.com")
	cmd.Flags().StringVar(&o.token, "token", "", "GitHub token. Prefer the GITHUB_TOKEN env var, flags are visible in the process list.")
}

// addRunFlags adds the flags that only matter when issues are acted on.
func (o *options) addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Log decisions without closing issues or posting comments. Can also use STALEBOT_DRY_RUN env var.")
	cmd.Flags().StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Prometheus Pushgateway URL to push run metrics to. Can also use PUSHGATEWAY_URL env var.")
}

// loadEnv fills every option whose flag was not set explicitly from its
// environment variable.
func (o *options) loadEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f == nil || f.Changed
	}

	if !changed("repo") {
		if v := os.Getenv("STALEBOT_REPO"); v != "" {
			o.repo = v
		}
	}
	if !changed("bot-login") {
		if v := os.Getenv("STALEBOT_BOT_LOGIN"); v != "" {
			o.botLogin = v
		}
	}
	if !changed("exempt-label") {
		if v := os.Getenv("STALEBOT_EXEMPT_LABELS"); v != "" {
			o.exemptLabels = parseCommaSeparatedList(v)
		}
	}
	if !changed("dry-run") {
		if v := os.Getenv("STALEBOT_DRY_RUN"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid STALEBOT_DRY_RUN value %q (expected true/false): %w", v, err)
			}
			o.dryRun = parsed
		}
	}
	if !changed("log-format") {
		if v := os.Getenv("LOG_FORMAT"); v != "" {
			o.logFormat = v
		}
	}
	if !changed("github-api-url") {
		if v := os.Getenv("GITHUB_API_URL"); v != "" {
			o.githubAPIURL = v
		}
	}
	if !changed("pushgateway-url") {
		if v := os.Getenv("PUSHGATEWAY_URL"); v != "" {
			o.pushgatewayURL = v
		}
	}
	if !changed("token") {
		o.token = os.Getenv("GITHUB_TOKEN")
	}
	return nil
}

// triageEnv is everything a command needs to talk to GitHub and report on it.
type triageEnv struct {
	logger   *slog.Logger
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	client   *github.Client
	policy   stale.Policy
	repo     string
}

// setup validates the options and builds the logger, instrumentation, and
// GitHub client. Configuration errors are returned before any API request.
func (o *options) setup(ctx context.Context, logOutput io.Writer) (*triageEnv, error) {
	logger, err := logging.New(logOutput, o.logFormat, o.debug)
	if err != nil {
		return nil, err
	}

	owner, name, err := stale.ParseRepo(o.repo)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(o.token) == "" {
		return nil, fmt.Errorf("%w: set GITHUB_TOKEN", stale.ErrMissingToken)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if o.pushgatewayURL != "" {
		instrConfig.PushgatewayURL = o.pushgatewayURL
	}
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	repo := owner + "/" + name
	client, err := github.NewClient(ctx, github.Config{
		Token:   o.token,
		Owner:   owner,
		Repo:    name,
		BaseURL: o.githubAPIURL,
		Logger:  logging.WithRepo(logger, repo),
		Metrics: provider.Metrics(),
	})
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	policy := stale.DefaultPolicy(owner, name)
	policy.BotLogin = o.botLogin
	policy.Exempt = stale.NewExemptLabels(o.exemptLabels...)

	logger.Debug("configuration loaded",
		logging.Repo(repo),
		slog.String("bot_login", policy.BotLogin),
		slog.Int("exempt_labels", policy.Exempt.Len()),
		slog.Bool("dry_run", o.dryRun),
		slog.String("token", logging.SanitizeToken(o.token)),
		slog.Bool("instrumentation", provider.Enabled()),
	)

	return &triageEnv{
		logger:   logger,
		provider: provider,
		audit:    instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging),
		client:   client,
		policy:   policy,
		repo:     repo,
	}, nil
}

// close pushes the collected metrics and shuts the instrumentation down.
// It runs on a fresh context so that metrics still leave after a canceled run.
func (e *triageEnv) close() {
	ctx, cancel := context.WithTimeout(context.Background(), instrumentation.DefaultPushTimeout)
	defer cancel()

	if err := e.provider.Push(ctx); err != nil {
		e.logger.Warn("failed to push metrics", logging.Err(err))
	}
	if err := e.provider.Shutdown(ctx); err != nil {
		e.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
