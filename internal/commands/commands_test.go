package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vcsync/vcsync/internal/cache"
	"github.com/vcsync/vcsync/internal/config"
)

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	if cfg.CacheFile == "" {
		cfg.CacheFile = filepath.Join(t.TempDir(), "cache.gob")
	}
	return &App{Config: cfg, Cache: cache.New(), Logger: zap.NewNop()}
}

func githubListServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.URL.Path != "/users/alice/repos" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{{
			"name":             "proj",
			"clone_url":        "https://github.com/alice/proj.git",
			"ssh_url":          "git@github.com:alice/proj.git",
			"html_url":         "https://github.com/alice/proj",
			"language":         "Go",
			"topics":           []string{},
			"stargazers_count": 1,
			"default_branch":   "main",
			"owner":            map[string]any{"login": "alice"},
		}})
	}))
}

func TestRunImport_TextOutput(t *testing.T) {
	hits := 0
	server := githubListServer(t, &hits)
	defer server.Close()

	app := newTestApp(t, config.Config{GitHubAPIURL: server.URL})
	var buf bytes.Buffer
	err := app.runImport(context.Background(), &buf, "github", "alice",
		importFlags{mode: "user", limit: 10, useSSH: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "alice/proj\tgit+git@github.com:alice/proj.git\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRunImport_JSONOutput(t *testing.T) {
	hits := 0
	server := githubListServer(t, &hits)
	defer server.Close()

	app := newTestApp(t, config.Config{GitHubAPIURL: server.URL})
	var buf bytes.Buffer
	err := app.runImport(context.Background(), &buf, "github", "alice",
		importFlags{mode: "user", limit: 10, asJSON: true})
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(records) != 1 || records[0]["name"] != "proj" {
		t.Errorf("records = %v", records)
	}
	if _, found := records[0]["default_branch"]; !found {
		t.Error("records missing default_branch key")
	}
}

func TestRunImport_SecondRunHitsCache(t *testing.T) {
	hits := 0
	server := githubListServer(t, &hits)
	defer server.Close()

	app := newTestApp(t, config.Config{GitHubAPIURL: server.URL})
	flags := importFlags{mode: "user", limit: 10, useSSH: true}

	var first, second bytes.Buffer
	if err := app.runImport(context.Background(), &first, "github", "alice", flags); err != nil {
		t.Fatal(err)
	}
	if err := app.runImport(context.Background(), &second, "github", "alice", flags); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("server saw %d requests, want 1 (second run cached)", hits)
	}
	if first.String() != second.String() {
		t.Error("cached output differs from fresh output")
	}
}

func TestRunImport_NoCacheBypassesCache(t *testing.T) {
	hits := 0
	server := githubListServer(t, &hits)
	defer server.Close()

	app := newTestApp(t, config.Config{GitHubAPIURL: server.URL, NoCache: true})
	flags := importFlags{mode: "user", limit: 10}
	var buf bytes.Buffer
	app.runImport(context.Background(), &buf, "github", "alice", flags)
	app.runImport(context.Background(), &buf, "github", "alice", flags)
	if hits != 2 {
		t.Errorf("server saw %d requests with --no-cache, want 2", hits)
	}
}

func TestRunImport_BadMode(t *testing.T) {
	app := newTestApp(t, config.Config{})
	err := app.runImport(context.Background(), &bytes.Buffer{}, "github", "alice",
		importFlags{mode: "team", limit: 10})
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestExportJSON(t *testing.T) {
	hits := 0
	server := githubListServer(t, &hits)
	defer server.Close()

	app := newTestApp(t, config.Config{GitHubAPIURL: server.URL})
	var buf bytes.Buffer
	err := app.ExportJSON(context.Background(), &buf, "github", "alice",
		importFlags{mode: "user", limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	var records []InventoryRecord
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Service != "github" || rec.Repository != "alice/proj" || rec.Stars != 1 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Date == "" {
		t.Error("record missing date")
	}
	if !strings.HasPrefix(rec.CloneURL, "git+https://") {
		t.Errorf("clone url = %q, want git+https form", rec.CloneURL)
	}
}

func TestRootCommand_HasServiceSubcommands(t *testing.T) {
	app := newTestApp(t, config.Config{})
	root := app.NewRootCommand()
	want := map[string]bool{
		"github": false, "gitlab": false, "gitea": false,
		"codecommit": false, "export": false, "version": false, "clearcache": false,
	}
	for _, cmd := range root.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, tracked := want[name]; tracked {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing %q subcommand", name)
		}
	}
}
