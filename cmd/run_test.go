package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves a single repository "o/r" with two open issues:
// #1 carries an expired stale warning and #2 has been silent for 40 days.
// #3 was already closed and only answers direct lookups.
type fakeGitHub struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	now := time.Now().UTC()
	ts := func(daysAgo int) string {
		return now.Add(-time.Duration(daysAgo) * 24 * time.Hour).Format(time.RFC3339)
	}

	f := &fakeGitHub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/o/r/issues", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"number": 1, "title": "warned", "state": "open", "created_at": ts(60), "updated_at": ts(10)},
			map[string]any{"number": 2, "title": "silent", "state": "open", "created_at": ts(60), "updated_at": ts(40)},
		})
	})
	mux.HandleFunc("/api/v3/repos/o/r/issues/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"number": 1, "title": "warned", "state": "open", "created_at": ts(60), "updated_at": ts(10)})
	})
	mux.HandleFunc("/api/v3/repos/o/r/issues/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"number": 3, "title": "done", "state": "closed", "created_at": ts(60), "updated_at": ts(10)})
	})
	mux.HandleFunc("/api/v3/repos/o/r/issues/1/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			map[string]any{"id": 1, "user": map[string]any{"login": "github-actions[bot]"}, "created_at": ts(10)},
		})
	})
	mux.HandleFunc("/api/v3/repos/o/r/issues/2/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, map[string]any{"id": 2})
			return
		}
		writeJSON(w, []any{})
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeGitHub) apiURL() string {
	return f.URL + "/api/v3/"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCmd(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	gh := newFakeGitHub(t)

	_, logs, err := execute(t, newRunCmd(), "--repo", "o/r", "--github-api-url", gh.apiURL())
	require.NoError(t, err, logs)

	assert.Equal(t, []string{
		"GET /api/v3/repos/o/r/issues",
		"GET /api/v3/repos/o/r/issues/1/comments",
		"PATCH /api/v3/repos/o/r/issues/1",
		"GET /api/v3/repos/o/r/issues/2/comments",
		"POST /api/v3/repos/o/r/issues/2/comments",
	}, gh.seen())
	assert.Contains(t, logs, "triage finished")
	assert.Contains(t, logs, "action_performed")
}

func TestRunCmd_DryRun(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("STALEBOT_DRY_RUN", "true")
	gh := newFakeGitHub(t)

	_, logs, err := execute(t, newRunCmd(), "--repo", "o/r", "--github-api-url", gh.apiURL(), "--log-format", "json")
	require.NoError(t, err, logs)

	for _, req := range gh.seen() {
		assert.Regexp(t, "^GET ", req)
	}
	assert.Contains(t, logs, `"dry_run":true`)
}

func TestRunCmd_MissingTokenMakesNoRequest(t *testing.T) {
	clearEnv(t)
	gh := newFakeGitHub(t)

	_, _, err := execute(t, newRunCmd(), "--repo", "o/r", "--github-api-url", gh.apiURL())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing GitHub token")
	assert.Empty(t, gh.seen())
}

func TestRunCmd_APIErrorFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "wrong-token")
	gh := newFakeGitHub(t)

	_, _, err := execute(t, newRunCmd(), "--repo", "o/r", "--github-api-url", gh.apiURL())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run failed")
	assert.Contains(t, err.Error(), "401")
}

func TestClassifyCmd(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	gh := newFakeGitHub(t)

	out, logs, err := execute(t, newClassifyCmd(), "--repo", "o/r", "--github-api-url", gh.apiURL(), "1")
	require.NoError(t, err, logs)

	assert.Contains(t, out, "ISSUE")
	assert.Regexp(t, `#1\s+open\s+close\s+stale_warning_expired\s+warned`, out)
	assert.Equal(t, []string{
		"GET /api/v3/repos/o/r/issues/1",
		"GET /api/v3/repos/o/r/issues/1/comments",
	}, gh.seen())
}

func TestClassifyCmd_ClosedIssue(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "test-token")
	gh := newFakeGitHub(t)

	out, logs, err := execute(t, newClassifyCmd(), "--repo", "o/r", "--github-api-url", gh.apiURL(), "3")
	require.NoError(t, err, logs)

	assert.Regexp(t, `#3\s+closed\s+no_action\s+not_open\s+done`, out)
	assert.Equal(t, []string{"GET /api/v3/repos/o/r/issues/3"}, gh.seen())
}

func TestClassifyCmd_InvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "test-token")

	for _, arg := range []string{"abc", "0", "-3"} {
		t.Run(arg, func(t *testing.T) {
			_, _, err := execute(t, newClassifyCmd(), "--", arg)
			assert.ErrorContains(t, err, fmt.Sprintf("invalid issue number %q", arg))
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, newVersionCmd())
	require.NoError(t, err)
	assert.Equal(t, "stalebot version "+version+"\n", out)
}
