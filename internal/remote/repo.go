package remote

import (
	"encoding/gob"
	"strings"
)

func init() {
	gob.Register([]RemoteRepo{})
}

// RemoteRepo is the normalized repository descriptor produced by every
// backend, independent of the source API shape. Values are built fresh per
// raw record and never mutated afterwards.
type RemoteRepo struct {
	Name          string
	CloneURL      string
	SSHURL        string
	HTMLURL       string
	Description   string
	Language      string
	Topics        []string
	Stars         int
	IsFork        bool
	IsArchived    bool
	DefaultBranch string
	Owner         string
}

// FullName returns the "owner/name" form.
func (r RemoteRepo) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// ToVcspullURL returns the URL a vcspull-style configuration would record.
// The SSH URL is preferred when useSSH is set and one exists; either way the
// result carries a single "git+" prefix.
func (r RemoteRepo) ToVcspullURL(useSSH bool) string {
	if useSSH && r.SSHURL != "" {
		return gitPrefix(r.SSHURL)
	}
	return gitPrefix(r.CloneURL)
}

func gitPrefix(u string) string {
	if strings.HasPrefix(u, "git+") {
		return u
	}
	return "git+" + u
}

// ToDict returns the stable key set consumed by the CLI and config layers.
func (r RemoteRepo) ToDict() map[string]any {
	topics := make([]string, len(r.Topics))
	copy(topics, r.Topics)
	return map[string]any{
		"name":           r.Name,
		"clone_url":      r.CloneURL,
		"ssh_url":        r.SSHURL,
		"html_url":       r.HTMLURL,
		"description":    r.Description,
		"language":       r.Language,
		"topics":         topics,
		"stars":          r.Stars,
		"is_fork":        r.IsFork,
		"is_archived":    r.IsArchived,
		"default_branch": r.DefaultBranch,
		"owner":          r.Owner,
	}
}
