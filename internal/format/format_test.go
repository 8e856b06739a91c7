package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vcsync/vcsync/internal/remote"
)

func TestWriteJSON_Plain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]int{"n": 1}, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "```") {
		t.Error("plain output should not contain slack fences")
	}
	var decoded map[string]int
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestWriteJSON_SlackMode(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []string{"x"}, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "```") != 2 {
		t.Errorf("slack output %q should be fenced", out)
	}
}

func TestWriteRepoLine(t *testing.T) {
	repo := remote.RemoteRepo{
		Owner:    "alice",
		Name:     "proj",
		CloneURL: "https://host/alice/proj.git",
		SSHURL:   "git@host:alice/proj.git",
	}

	var buf bytes.Buffer
	WriteRepoLine(&buf, repo, true)
	if got := buf.String(); got != "alice/proj\tgit+git@host:alice/proj.git\n" {
		t.Errorf("ssh line = %q", got)
	}

	buf.Reset()
	WriteRepoLine(&buf, repo, false)
	if got := buf.String(); got != "alice/proj\tgit+https://host/alice/proj.git\n" {
		t.Errorf("https line = %q", got)
	}
}

func TestReposJSON(t *testing.T) {
	repos := []remote.RemoteRepo{
		{Name: "a", Topics: []string{}},
		{Name: "b", Topics: []string{"t"}},
	}
	out := ReposJSON(repos)
	if len(out) != 2 {
		t.Fatalf("got %d dicts, want 2", len(out))
	}
	if out[0]["name"] != "a" || out[1]["name"] != "b" {
		t.Errorf("dicts = %v", out)
	}
}
