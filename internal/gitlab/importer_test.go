package gitlab

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

func projectJSON(path string, forked bool) map[string]any {
	record := map[string]any{
		"path":             path,
		"http_url_to_repo": "https://gitlab.com/alice/" + path + ".git",
		"ssh_url_to_repo":  "git@gitlab.com:alice/" + path + ".git",
		"web_url":          "https://gitlab.com/alice/" + path,
		"description":      "desc",
		"topics":           []string{"cli"},
		"star_count":       2,
		"archived":         false,
		"default_branch":   "main",
		"namespace":        map[string]any{"full_path": "alice"},
	}
	if forked {
		record["forked_from_project"] = map[string]any{"id": 1}
	}
	return record
}

func TestFetchRepos_UserProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice/projects" {
			t.Errorf("path = %q, want /users/alice/projects", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{projectJSON("proj", false)})
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
	if len(repos) != 1 {
		t.Fatalf("got %d repos, want 1", len(repos))
	}
	repo := repos[0]
	if repo.Name != "proj" || repo.Owner != "alice" || repo.Stars != 2 || repo.IsFork {
		t.Errorf("normalization wrong: %+v", repo)
	}
}

func TestFetchRepos_SubgroupPathEncoded(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	imp := New(Config{BaseURL: server.URL})
	opts := mustOptions(t, remote.ImportOptions{Mode: remote.ModeOrg, Target: "group/sub/team", Limit: 10})
	stream, err := imp.FetchRepos(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stream.Collect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/groups/group%2Fsub%2Fteam/projects" {
		t.Errorf("path = %q, want every slash percent-encoded", gotPath)
	}
}

func TestFetchRepos_ArchivedParam(t *testing.T) {
	tests := []struct {
		name            string
		includeArchived bool
		wantParam       string
		wantPresent     bool
	}{
		{"excluded means archived=false", false, "false", true},
		{"included means param omitted", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var query map[string][]string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.Query()
				json.NewEncoder(w).Encode([]map[string]any{})
			}))
			defer server.Close()

			imp := New(Config{BaseURL: server.URL})
			opts := mustOptions(t, remote.ImportOptions{
				Mode: remote.ModeUser, Target: "alice", Limit: 10,
				IncludeArchived: tt.includeArchived,
			})
			stream, err := imp.FetchRepos(context.Background(), opts)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := stream.Collect(context.Background()); err != nil {
				t.Fatal(err)
			}

			values, present := query["archived"]
			if present != tt.wantPresent {
				t.Fatalf("archived present = %v, want %v", present, tt.wantPresent)
			}
			if present && values[0] != tt.wantParam {
				t.Errorf("archived = %q, want %q", values[0], tt.wantParam)
			}
		})
	}
}

func TestFetchRepos_SearchWithoutTokenFailsBeforeRequest(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer server.Close()

	imp := New(Config{BaseURL: server.URL})
	opts := mustOptions(t, remote.ImportOptions{Mode: remote.ModeSearch, Target: "terraform", Limit: 10})
	_, err := imp.FetchRepos(context.Background(), opts)
	if !remote.IsKind(err, remote.KindAuthentication) {
		t.Fatalf("got %v, want authentication error", err)
	}
	if requests != 0 {
		t.Errorf("made %d requests before failing, want 0", requests)
	}
}

func TestFetchRepos_SearchWithToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("scope") != "projects" || q.Get("search") != "terraform" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode([]map[string]any{projectJSON("match", false)})
	}))
	defer server.Close()

	imp := New(Config{BaseURL: server.URL, Token: "glpat-x"})
	opts := mustOptions(t, remote.ImportOptions{Mode: remote.ModeSearch, Target: "terraform", Limit: 10})
	stream, err := imp.FetchRepos(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	repos, err := stream.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0].Name != "match" {
		t.Errorf("got %v, want one repo named match", repos)
	}
}

func TestNormalize_ForkAndNullTopics(t *testing.T) {
	rec := projectRecord{Path: "p"}
	repo := normalize(rec)
	if repo.Topics == nil || len(repo.Topics) != 0 {
		t.Errorf("topics = %#v, want empty non-nil slice", repo.Topics)
	}
	if repo.IsFork {
		t.Error("repo without forked_from_project marked as fork")
	}

	forked := projectRecord{Path: "p", ForkedFromProject: &struct {
		ID int `json:"id"`
	}{ID: 7}}
	if !normalize(forked).IsFork {
		t.Error("repo with forked_from_project not marked as fork")
	}
}
