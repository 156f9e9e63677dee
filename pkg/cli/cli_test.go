package cli_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/release-tagger/pkg/cli"
	"github.com/m-mizutani/release-tagger/pkg/domain/model"
	"github.com/m-mizutani/release-tagger/pkg/domain/types"
)

// fakeGitHub is an in-memory GitHub Enterprise API holding refs and releases
type fakeGitHub struct {
	mu       sync.Mutex
	calls    []string
	refs     map[string]string // "tags/<name>" => sha
	releases map[string]map[string]any
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()

	f := &fakeGitHub{
		refs:     map[string]string{},
		releases: map[string]map[string]any{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v3/repos/owner/repo/git/tags", func(w http.ResponseWriter, r *http.Request) {
		f.record("CreateTag")
		writeJSON(w, http.StatusCreated, map[string]any{"sha": "tag-object-sha"})
	})
	mux.HandleFunc("GET /api/v3/repos/owner/repo/git/ref/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.record("GetRef")
		sha, ok := f.ref("tags/" + r.PathValue("tag"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ref":    "refs/tags/" + r.PathValue("tag"),
			"object": map[string]any{"sha": sha},
		})
	})
	mux.HandleFunc("POST /api/v3/repos/owner/repo/git/refs", func(w http.ResponseWriter, r *http.Request) {
		f.record("CreateRef")
		var req struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.setRef(req.Ref[len("refs/"):], req.SHA)
		writeJSON(w, http.StatusCreated, map[string]any{"ref": req.Ref, "object": map[string]any{"sha": req.SHA}})
	})
	mux.HandleFunc("PATCH /api/v3/repos/owner/repo/git/refs/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.record("UpdateRef")
		var req struct {
			SHA   string `json:"sha"`
			Force bool   `json:"force"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Force {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Update is not a fast forward"})
			return
		}
		f.setRef("tags/"+r.PathValue("tag"), req.SHA)
		writeJSON(w, http.StatusOK, map[string]any{"ref": "refs/tags/" + r.PathValue("tag"), "object": map[string]any{"sha": req.SHA}})
	})
	mux.HandleFunc("GET /api/v3/repos/owner/repo/releases/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.record("GetReleaseByTag")
		release, ok := f.release(r.PathValue("tag"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, release)
	})
	mux.HandleFunc("POST /api/v3/repos/owner/repo/releases/generate-notes", func(w http.ResponseWriter, r *http.Request) {
		f.record("GenerateReleaseNotes")
		var req struct {
			TagName string `json:"tag_name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]string{"name": req.TagName, "body": "## What's Changed"})
	})
	mux.HandleFunc("POST /api/v3/repos/owner/repo/releases", func(w http.ResponseWriter, r *http.Request) {
		f.record("CreateRelease")
		var release map[string]any
		_ = json.NewDecoder(r.Body).Decode(&release)
		release["id"] = 1
		release["html_url"] = "https://github.example.com/owner/repo/releases/1"
		f.setRelease(release["tag_name"].(string), release)
		writeJSON(w, http.StatusCreated, release)
	})
	mux.HandleFunc("PATCH /api/v3/repos/owner/repo/releases/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record("EditRelease")
		var release map[string]any
		_ = json.NewDecoder(r.Body).Decode(&release)
		release["id"] = 1
		f.setRelease(release["tag_name"].(string), release)
		writeJSON(w, http.StatusOK, release)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return f, server
}

func (f *fakeGitHub) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGitHub) ref(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sha, ok := f.refs[name]
	return sha, ok
}

func (f *fakeGitHub) setRef(name, sha string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[name] = sha
}

func (f *fakeGitHub) release(tag string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.releases[tag]
	return r, ok
}

func (f *fakeGitHub) setRelease(tag string, release map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[tag] = release
}

func (f *fakeGitHub) takeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls
	f.calls = nil
	return calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// setupActionEnv emulates the environment of a GitHub Actions runner
func setupActionEnv(t *testing.T, apiURL string) string {
	t.Helper()

	outputFile := filepath.Join(t.TempDir(), "github_output")
	gt.NoError(t, os.WriteFile(outputFile, nil, 0600))

	env := map[string]string{
		"GITHUB_API_URL":    apiURL,
		"GITHUB_REPOSITORY": "owner/repo",
		"GITHUB_SHA":        "abc123",
		"GITHUB_TOKEN":      "test-token",
		"GITHUB_EVENT_PATH": "",
		"GITHUB_OUTPUT":     outputFile,
		"INPUT_NAME":        "exampleApp",
		"INPUT_ENVIRONMENT": "dev",
		"INPUT_GITHUBTOKEN": "",
		"INPUT_GITHUBSHA":   "",
		"INPUT_PRERELEASE":  "",
		"INPUT_DISABLED":    "",

		"RELEASE_TAGGER_GITHUB_API_URL": "",
		"RELEASE_TAGGER_SENTRY_DSN":     "",
		"RELEASE_TAGGER_TRACE":          "",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	return outputFile
}

func TestRun_CreatesTagRefAndRelease(t *testing.T) {
	fake, server := newFakeGitHub(t)
	outputFile := setupActionEnv(t, server.URL)
	tagName := model.GenerateTagName("exampleApp", "dev")

	err := cli.Run(context.Background(), []string{"release-tagger"})
	gt.NoError(t, err)

	gt.Value(t, fake.takeCalls()).Equal([]string{
		"CreateTag",
		"GetRef",
		"CreateRef",
		"GetReleaseByTag",
		"GenerateReleaseNotes",
		"CreateRelease",
	})

	sha, ok := fake.ref("tags/" + tagName)
	gt.True(t, ok)
	gt.Value(t, sha).Equal("abc123")

	release, ok := fake.release(tagName)
	gt.True(t, ok)
	gt.Value(t, release["name"]).Equal(tagName)
	gt.Value(t, release["body"]).Equal("## What's Changed")
	gt.Value(t, release["prerelease"]).Equal(false)

	output, err := os.ReadFile(outputFile)
	gt.NoError(t, err)
	gt.String(t, string(output)).Contains("tag_name")
	gt.String(t, string(output)).Contains(tagName)
	gt.String(t, string(output)).Contains("release_url")
}

func TestRun_SecondRunUpdatesInPlace(t *testing.T) {
	fake, server := newFakeGitHub(t)
	setupActionEnv(t, server.URL)
	tagName := model.GenerateTagName("exampleApp", "dev")

	gt.NoError(t, cli.Run(context.Background(), []string{"release-tagger", "release"}))
	fake.takeCalls()

	t.Setenv("GITHUB_SHA", "def456")
	t.Setenv("INPUT_PRERELEASE", "yes")
	gt.NoError(t, cli.Run(context.Background(), []string{"release-tagger", "release"}))

	gt.Value(t, fake.takeCalls()).Equal([]string{
		"CreateTag",
		"GetRef",
		"UpdateRef",
		"GetReleaseByTag",
		"GenerateReleaseNotes",
		"EditRelease",
	})

	sha, _ := fake.ref("tags/" + tagName)
	gt.Value(t, sha).Equal("def456")

	release, _ := fake.release(tagName)
	gt.Value(t, release["prerelease"]).Equal(true)
}

func TestRun_FlagsOverrideActionInputs(t *testing.T) {
	fake, server := newFakeGitHub(t)
	setupActionEnv(t, server.URL)

	err := cli.Run(context.Background(), []string{
		"release-tagger", "release",
		"--name", "other",
		"--github-sha", "fff000",
	})
	gt.NoError(t, err)

	// environment is not given as a flag and comes from INPUT_ENVIRONMENT
	sha, ok := fake.ref("tags/" + model.GenerateTagName("other", "dev"))
	gt.True(t, ok)
	gt.Value(t, sha).Equal("fff000")
}

func TestRun_Disabled(t *testing.T) {
	fake, server := newFakeGitHub(t)
	outputFile := setupActionEnv(t, server.URL)
	t.Setenv("INPUT_DISABLED", "true")

	err := cli.Run(context.Background(), []string{"release-tagger"})
	gt.NoError(t, err)
	gt.Number(t, len(fake.takeCalls())).Equal(0)

	output, err := os.ReadFile(outputFile)
	gt.NoError(t, err)
	gt.String(t, string(output)).Contains("skipped")
}

func TestRun_DisabledSkipsRunnerContextAndClient(t *testing.T) {
	testCases := map[string]map[string]string{
		"malformed API URL":     {"GITHUB_API_URL": "://bad"},
		"missing repository":    {"GITHUB_REPOSITORY": ""},
		"unreadable event file": {"GITHUB_EVENT_PATH": "/nonexistent/event.json"},
	}

	for name, env := range testCases {
		t.Run(name, func(t *testing.T) {
			fake, server := newFakeGitHub(t)
			outputFile := setupActionEnv(t, server.URL)
			t.Setenv("INPUT_DISABLED", "true")
			for k, v := range env {
				t.Setenv(k, v)
			}

			gt.NoError(t, cli.Run(context.Background(), []string{"release-tagger"}))
			gt.Number(t, len(fake.takeCalls())).Equal(0)

			output, err := os.ReadFile(outputFile)
			gt.NoError(t, err)
			gt.String(t, string(output)).Contains("skipped")
			gt.String(t, string(output)).Contains(model.GenerateTagName("exampleApp", "dev"))
		})
	}
}

func TestRun_MissingToken(t *testing.T) {
	fake, server := newFakeGitHub(t)
	setupActionEnv(t, server.URL)
	t.Setenv("GITHUB_TOKEN", "")

	err := cli.Run(context.Background(), []string{"release-tagger"})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("Input required and not supplied: githubToken")
	gt.Number(t, len(fake.takeCalls())).Equal(0)
}

func TestRun_NameFallsBackToRepository(t *testing.T) {
	fake, server := newFakeGitHub(t)
	setupActionEnv(t, server.URL)
	t.Setenv("INPUT_NAME", "")
	t.Setenv("INPUT_ENVIRONMENT", "")

	gt.NoError(t, cli.Run(context.Background(), []string{"release-tagger"}))

	_, ok := fake.ref("tags/" + model.GenerateTagName("repo", ""))
	gt.True(t, ok)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	fake, server := newFakeGitHub(t)
	setupActionEnv(t, server.URL)

	err := cli.Run(context.Background(), []string{"release-tagger", "--log-level", "verbose"})
	gt.Error(t, err)
	gt.Number(t, len(fake.takeCalls())).Equal(0)
}

func TestFailureMessage(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		err := goerr.New("Input required and not supplied: githubToken", goerr.T(types.ErrTagMissingInput))
		gt.Value(t, cli.FailureMessage(err)).Equal("Invalid action inputs: Input required and not supplied: githubToken")
	})

	t.Run("wrapped GitHub API error", func(t *testing.T) {
		apiErr := goerr.New("GitHub API request failed", goerr.T(types.ErrTagGitHubAPI))
		err := goerr.Wrap(apiErr, "failed to look up tag ref")

		msg := cli.FailureMessage(err)
		gt.String(t, msg).Contains("GitHub API request failed: ")
		gt.String(t, msg).Contains("failed to look up tag ref")
	})

	t.Run("untagged error", func(t *testing.T) {
		err := goerr.New("failed to load GitHub Actions context")
		gt.Value(t, cli.FailureMessage(err)).Equal("failed to load GitHub Actions context")
	})
}
