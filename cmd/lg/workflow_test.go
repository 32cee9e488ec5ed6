package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

const planJSON = `{
	"totalDuration": "2 weeks",
	"tasks": [
		{"title": "Read the language tour", "description": "Work through the basics", "timeScope": "daily", "estimatedDuration": 30, "orderIndex": 1, "tips": "Take notes"},
		{"title": "Build a small CLI", "description": "Apply what you learned", "timeScope": "weekly", "estimatedDuration": 120, "orderIndex": 2, "tips": ""}
	]
}`

// newCompletionServer serves a fixed chat-completion response.
func newCompletionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
		} else {
			fmt.Fprint(w, `{"error":{"message":"nope"}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lifegit.yaml")
	cfg := fmt.Sprintf(`profile: test
storage:
  driver: sqlite
  path: %s
ai:
  base_url: %s
  api_key: test-key
  max_retries: 1
`, filepath.Join(dir, "lifegit.db"), baseURL)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("lg %s failed: %v\noutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestInit_WritesConfigAndSeedsMaster(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lifegit.yaml")

	out := mustRun(t, "init", "-c", cfgPath,
		"--profile", "tester", "--db-path", filepath.Join(dir, "lifegit.db"))
	if !strings.Contains(out, "Wrote config to "+cfgPath) {
		t.Fatalf("init output = %s", out)
	}
	if !strings.Contains(out, "Master branch ready") {
		t.Fatalf("init output = %s", out)
	}

	if _, err := runCLI(t, "init", "-c", cfgPath); err == nil {
		t.Fatal("second init without --force should fail")
	}
	mustRun(t, "init", "-c", cfgPath, "--force",
		"--profile", "tester", "--db-path", filepath.Join(dir, "lifegit.db"))
}

func TestWorkflow_CreateToMerge(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, planJSON)
	cfgPath := writeTestConfig(t, srv.URL)

	out := mustRun(t, "db", "migrate", "-c", cfgPath)
	if !strings.Contains(out, "Master branch ready") {
		t.Fatalf("migrate output = %s", out)
	}

	out = mustRun(t, "branch", "create", "-c", cfgPath, "--name", "Learn Go", "--timeframe", "3 months")
	if !strings.Contains(out, "Plan: 2 tasks, 2 weeks (AI-generated)") {
		t.Fatalf("create output = %s", out)
	}
	branchID := regexp.MustCompile(`br-[0-9a-f]{5}`).FindString(out)
	if branchID == "" {
		t.Fatalf("no branch ID in output: %s", out)
	}

	out = mustRun(t, "branch", "list", "-c", cfgPath)
	if !strings.Contains(out, "Learn Go") || !strings.Contains(out, "active") {
		t.Fatalf("list output = %s", out)
	}

	out = mustRun(t, "branch", "show", "-c", cfgPath, branchID)
	if !strings.Contains(out, "Read the language tour") {
		t.Fatalf("show output = %s", out)
	}
	taskID := regexp.MustCompile(`tk-[0-9a-f]{5}`).FindString(out)
	if taskID == "" {
		t.Fatalf("no task ID in output: %s", out)
	}

	out = mustRun(t, "plan", "done", "-c", cfgPath, taskID)
	if !strings.Contains(out, "Done: Read the language tour") {
		t.Fatalf("plan done output = %s", out)
	}

	mustRun(t, "commit", "add", "-c", cfgPath, "--branch", branchID, "-m", "finished the tour")
	mustRun(t, "commit", "add", "-c", cfgPath, "--branch", branchID, "-m", "pointers clicked", "--type", "learning")
	out = mustRun(t, "commit", "log", "-c", cfgPath, "--branch", branchID)
	if !strings.Contains(out, "finished the tour") || !strings.Contains(out, "pointers clicked") {
		t.Fatalf("commit log output = %s", out)
	}

	// Milestone commits come from lifecycle operations only.
	if _, err := runCLI(t, "commit", "add", "-c", cfgPath, "--branch", branchID, "-m", "fake", "--type", "milestone"); err == nil {
		t.Fatal("manual milestone commit should be rejected")
	}

	out = mustRun(t, "stats", "-c", cfgPath, branchID)
	if !strings.Contains(out, "Tasks: 1/2 done") {
		t.Fatalf("stats output = %s", out)
	}
	if !strings.Contains(out, "Remaining effort: 120 minutes") {
		t.Fatalf("stats output = %s", out)
	}

	mustRun(t, "plan", "done", "-c", cfgPath, "--undo", taskID)
	mustRun(t, "plan", "done", "-c", cfgPath, taskID)

	out = mustRun(t, "branch", "complete", "-c", cfgPath, branchID)
	if !strings.Contains(out, "Completed branch "+branchID) {
		t.Fatalf("complete output = %s", out)
	}
	out = mustRun(t, "branch", "merge", "-c", cfgPath, branchID)
	if !strings.Contains(out, "Merged branch "+branchID) {
		t.Fatalf("merge output = %s", out)
	}

	out = mustRun(t, "branch", "show", "-c", cfgPath, branchID)
	if !strings.Contains(out, "(merged") {
		t.Fatalf("show after merge output = %s", out)
	}
}

func TestWorkflow_CreateFallsBackOnAuthError(t *testing.T) {
	srv := newCompletionServer(t, http.StatusUnauthorized, "")
	cfgPath := writeTestConfig(t, srv.URL)

	mustRun(t, "db", "migrate", "-c", cfgPath)

	out := mustRun(t, "branch", "create", "-c", cfgPath, "--name", "Run a marathon")
	if !strings.Contains(out, "Created branch") {
		t.Fatalf("create output = %s", out)
	}
	if !strings.Contains(out, "(manual)") {
		t.Fatalf("expected manual fallback plan, got: %s", out)
	}
}

func TestWorkflow_RegenerateSurfacesError(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, planJSON)
	cfgPath := writeTestConfig(t, srv.URL)

	mustRun(t, "db", "migrate", "-c", cfgPath)
	out := mustRun(t, "branch", "create", "-c", cfgPath, "--name", "Learn Go")
	branchID := regexp.MustCompile(`br-[0-9a-f]{5}`).FindString(out)

	// Same DB, new config pointing at a broken endpoint.
	badSrv := newCompletionServer(t, http.StatusUnauthorized, "")
	badCfg := fmt.Sprintf(`profile: test
storage:
  driver: sqlite
  path: %s
ai:
  base_url: %s
  api_key: test-key
  max_retries: 1
`, dbPathFromConfig(t, cfgPath), badSrv.URL)
	badCfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badCfgPath, []byte(badCfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCLI(t, "plan", "regenerate", "-c", badCfgPath, branchID); err == nil {
		t.Fatal("expected regenerate to surface the AI error")
	}

	// Old plan untouched.
	out = mustRun(t, "plan", "show", "-c", cfgPath, branchID)
	if !strings.Contains(out, "Read the language tour") {
		t.Fatalf("plan show output = %s", out)
	}
}

func dbPathFromConfig(t *testing.T, cfgPath string) string {
	t.Helper()
	return filepath.Join(filepath.Dir(cfgPath), "lifegit.db")
}
