package remote

import (
	"context"
	"strings"
)

// Service identifies a hosting backend.
type Service string

const (
	ServiceGitHub     Service = "github"
	ServiceGitLab     Service = "gitlab"
	ServiceGitea      Service = "gitea"
	ServiceCodeCommit Service = "codecommit"
)

// ParseService converts a string into a Service.
func ParseService(s string) (Service, error) {
	switch Service(strings.ToLower(s)) {
	case ServiceGitHub:
		return ServiceGitHub, nil
	case ServiceGitLab:
		return ServiceGitLab, nil
	case ServiceGitea:
		return ServiceGitea, nil
	case ServiceCodeCommit:
		return ServiceCodeCommit, nil
	default:
		return "", NewError(KindConfiguration, "", "unknown service %q", s)
	}
}

// Importer is the contract every backend satisfies. An Importer is built
// once per invocation and used for a single fetch; it holds no state shared
// across fetches or goroutines.
type Importer interface {
	// FetchRepos starts a lazy fetch for opts. Backend preconditions (for
	// example a search that requires a token) fail here, before any
	// request is sent.
	FetchRepos(ctx context.Context, opts ImportOptions) (*RepoStream, error)

	// ServiceName returns the backend's service name for logs and errors.
	ServiceName() string

	// IsAuthenticated probes whether the configured credentials work.
	// It never returns an error; any failure reports false.
	IsAuthenticated(ctx context.Context) bool
}
