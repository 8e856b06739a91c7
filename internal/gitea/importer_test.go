package gitea

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vcsync/vcsync/internal/remote"
)

func mustOptions(t *testing.T, o remote.ImportOptions) remote.ImportOptions {
	t.Helper()
	opts, err := remote.NewImportOptions(o)
	if err != nil {
		t.Fatal(err)
	}
	return opts
}

func repoJSON(name string) map[string]any {
	return map[string]any{
		"name":           name,
		"clone_url":      "https://codeberg.org/alice/" + name + ".git",
		"ssh_url":        "git@codeberg.org:alice/" + name + ".git",
		"html_url":       "https://codeberg.org/alice/" + name,
		"description":    "desc",
		"language":       "Go",
		"stars_count":    4,
		"fork":           false,
		"archived":       false,
		"default_branch": "main",
		"owner":          map[string]any{"login": "alice"},
	}
}

func TestFetchRepos_UserRepos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice/repos" {
			t.Errorf("path = %q, want /users/alice/repos", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "50" {
			t.Errorf("limit = %q, want 50", q.Get("limit"))
		}
		json.NewEncoder(w).Encode([]map[string]any{repoJSON("proj")})
	}))
	defer server.Close()

	imp := New(Config{BaseURL: server.URL})
	opts := mustOptions(t, remote.ImportOptions{Mode: remote.ModeUser, Target: "alice", Limit: 10})
	stream, err := imp.FetchRepos(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	repos, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0].Name != "proj" || repos[0].Stars != 4 {
		t.Errorf("got %+v, want one proj with 4 stars", repos)
	}
}

func TestFetchRepos_SearchEnvelopeShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/search" {
			t.Errorf("path = %q, want /repos/search", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"data": []map[string]any{repoJSON("hit")},
		})
	}))
	defer server.Close()

	imp := New(Config{BaseURL: server.URL})
	opts := mustOptions(t, remote.ImportOptions{Mode: remote.ModeSearch, Target: "hit", Limit: 10})
	stream, err := imp.FetchRepos(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	repos, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0].Name != "hit" {
		t.Errorf("envelope shape: got %v, want one repo named hit", repos)
	}
}

func TestDecodePage_BothShapes(t *testing.T) {
	bare := []byte(`[{"name": "a"}, {"name": "b"}]`)
	envelope := []byte(`{"ok": true, "data": [{"name": "a"}, {"name": "b"}]}`)

	for _, raw := range [][]byte{bare, envelope} {
		records, err := decodePage(raw, "gitea")
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 || records[0].Name != "a" || records[1].Name != "b" {
			t.Errorf("decodePage(%s) = %v", raw, records)
		}
	}
}

func TestDecodePage_Garbage(t *testing.T) {
	if _, err := decodePage([]byte(`"nope"`), "gitea"); err == nil {
		t.Error("expected error for non-list payload")
	}
}

func TestFetchRepos_TokenHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	imp := New(Config{BaseURL: server.URL, Token: "gta_x"})
	opts := mustOptions(t, remote.ImportOptions{Mode: remote.ModeUser, Target: "alice", Limit: 10})
	stream, err := imp.FetchRepos(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stream.Collect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "token gta_x" {
		t.Errorf("Authorization = %q, want gitea token scheme", gotAuth)
	}
}
