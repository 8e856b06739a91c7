// Package gitlab lists projects through the GitLab REST API.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/vcsync/vcsync/internal/httpapi"
	"github.com/vcsync/vcsync/internal/remote"
)

const (
	defaultBaseURL = "https://gitlab.com/api/v4"

	// pageSize is fixed for the whole fetch; see the matching constant in
	// the github package for why it is never recomputed.
	pageSize = 100
)

// Config configures an Importer.
type Config struct {
	Token                  string
	BaseURL                string
	RateLimitWarnThreshold int
	Logger                 *zap.Logger
	Client                 *httpapi.Client
}

// Importer lists GitLab projects for a user, a group (including subgroups),
// or a search query.
type Importer struct {
	client *httpapi.Client
	token  string
}

// New builds a GitLab Importer. An empty BaseURL means gitlab.com.
func New(cfg Config) *Importer {
	client := cfg.Client
	if client == nil {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultBaseURL
		}
		client = httpapi.New(httpapi.Config{
			BaseURL:                baseURL,
			Token:                  cfg.Token,
			RateLimitWarnThreshold: cfg.RateLimitWarnThreshold,
			Logger:                 cfg.Logger,
		})
	}
	return &Importer{client: client, token: cfg.Token}
}

// ServiceName implements remote.Importer.
func (i *Importer) ServiceName() string { return string(remote.ServiceGitLab) }

// IsAuthenticated reports whether the configured token can reach /user.
func (i *Importer) IsAuthenticated(ctx context.Context) bool {
	if i.token == "" {
		return false
	}
	_, _, err := i.client.Get(ctx, "/user", nil, i.ServiceName())
	return err == nil
}

// FetchRepos implements remote.Importer. Search mode requires a token and
// fails with an authentication error before any request is sent.
func (i *Importer) FetchRepos(ctx context.Context, opts remote.ImportOptions) (*remote.RepoStream, error) {
	endpoint, err := i.endpoint(opts)
	if err != nil {
		return nil, err
	}

	page := 1
	fetch := func(ctx context.Context) ([]remote.RemoteRepo, bool, error) {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(pageSize))
		params.Set("page", strconv.Itoa(page))
		if opts.Mode != remote.ModeSearch && !opts.IncludeArchived {
			// Omitting "archived" means both states; "false" excludes
			// archived projects. It is never sent as "true".
			params.Set("archived", "false")
		}
		raw, _, err := i.client.Get(ctx, endpoint, params, i.ServiceName())
		if err != nil {
			return nil, false, err
		}
		var records []projectRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, false, remote.WrapError(remote.KindServiceUnavailable, i.ServiceName(), err, "decoding project list")
		}
		page++
		repos := make([]remote.RemoteRepo, 0, len(records))
		for _, rec := range records {
			repos = append(repos, normalize(rec))
		}
		return repos, len(records) == pageSize, nil
	}
	return remote.NewRepoStream(opts, fetch), nil
}

func (i *Importer) endpoint(opts remote.ImportOptions) (string, error) {
	switch opts.Mode {
	case remote.ModeUser:
		return fmt.Sprintf("/users/%s/projects", url.PathEscape(opts.Target)), nil
	case remote.ModeOrg:
		// Group paths with subgroups carry slashes; each one must be
		// percent-encoded into the path segment.
		return fmt.Sprintf("/groups/%s/projects", url.PathEscape(opts.Target)), nil
	case remote.ModeSearch:
		if i.token == "" {
			return "", remote.NewError(remote.KindAuthentication, i.ServiceName(),
				"search requires an access token")
		}
		return "/search?scope=projects&search=" + url.QueryEscape(opts.Target), nil
	default:
		return "", remote.NewError(remote.KindConfiguration, i.ServiceName(), "unknown mode %q", string(opts.Mode))
	}
}

type projectRecord struct {
	Path              string   `json:"path"`
	HTTPURLToRepo     string   `json:"http_url_to_repo"`
	SSHURLToRepo      string   `json:"ssh_url_to_repo"`
	WebURL            string   `json:"web_url"`
	Description       *string  `json:"description"`
	Topics            []string `json:"topics"`
	StarCount         int      `json:"star_count"`
	Archived          bool     `json:"archived"`
	DefaultBranch     string   `json:"default_branch"`
	ForkedFromProject *struct {
		ID int `json:"id"`
	} `json:"forked_from_project"`
	Namespace struct {
		FullPath string `json:"full_path"`
	} `json:"namespace"`
}

func normalize(rec projectRecord) remote.RemoteRepo {
	topics := rec.Topics
	if topics == nil {
		topics = []string{}
	}
	repo := remote.RemoteRepo{
		Name:          rec.Path,
		CloneURL:      rec.HTTPURLToRepo,
		SSHURL:        rec.SSHURLToRepo,
		HTMLURL:       rec.WebURL,
		Topics:        topics,
		Stars:         rec.StarCount,
		IsFork:        rec.ForkedFromProject != nil,
		IsArchived:    rec.Archived,
		DefaultBranch: rec.DefaultBranch,
		Owner:         rec.Namespace.FullPath,
	}
	if rec.Description != nil {
		repo.Description = *rec.Description
	}
	return repo
}
