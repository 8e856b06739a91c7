// Package github lists repositories through the GitHub REST API.
package github

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
	defaultBaseURL = "https://api.github.com"

	// pageSize is sent as per_page on every page of one fetch. It is never
	// recomputed from how many repos remain after client-side filtering:
	// shrinking it mid-fetch shifts the server-side offset and silently
	// duplicates or skips records.
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

// Importer lists GitHub repositories for a user, an org, or a search query.
type Importer struct {
	client *httpapi.Client
}

// New builds a GitHub Importer. An empty BaseURL means api.github.com.
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
	return &Importer{client: client}
}

// ServiceName implements remote.Importer.
func (i *Importer) ServiceName() string { return string(remote.ServiceGitHub) }

// IsAuthenticated reports whether the configured token can reach /user.
func (i *Importer) IsAuthenticated(ctx context.Context) bool {
	_, _, err := i.client.Get(ctx, "/user", nil, i.ServiceName())
	return err == nil
}

// FetchRepos implements remote.Importer.
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
		raw, _, err := i.client.Get(ctx, endpoint, params, i.ServiceName())
		if err != nil {
			return nil, false, err
		}
		records, err := decodePage(raw, opts.Mode, i.ServiceName())
		if err != nil {
			return nil, false, err
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
		return fmt.Sprintf("/users/%s/repos", url.PathEscape(opts.Target)), nil
	case remote.ModeOrg:
		return fmt.Sprintf("/orgs/%s/repos", url.PathEscape(opts.Target)), nil
	case remote.ModeSearch:
		query := opts.Target
		if opts.IncludeForks {
			// GitHub search drops forks unless asked for them explicitly.
			query += " fork:true"
		}
		return "/search/repositories?q=" + url.QueryEscape(query), nil
	default:
		return "", remote.NewError(remote.KindConfiguration, i.ServiceName(), "unknown mode %q", string(opts.Mode))
	}
}

type repoRecord struct {
	Name            string   `json:"name"`
	CloneURL        string   `json:"clone_url"`
	SSHURL          string   `json:"ssh_url"`
	HTMLURL         string   `json:"html_url"`
	Description     *string  `json:"description"`
	Language        *string  `json:"language"`
	Topics          []string `json:"topics"`
	StargazersCount int      `json:"stargazers_count"`
	Fork            bool     `json:"fork"`
	Archived        bool     `json:"archived"`
	DefaultBranch   string   `json:"default_branch"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type searchPage struct {
	TotalCount int          `json:"total_count"`
	Items      []repoRecord `json:"items"`
}

func decodePage(raw json.RawMessage, mode remote.Mode, service string) ([]repoRecord, error) {
	if mode == remote.ModeSearch {
		var page searchPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, remote.WrapError(remote.KindServiceUnavailable, service, err, "decoding search response")
		}
		return page.Items, nil
	}
	var records []repoRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, remote.WrapError(remote.KindServiceUnavailable, service, err, "decoding repository list")
	}
	return records, nil
}

func normalize(rec repoRecord) remote.RemoteRepo {
	topics := rec.Topics
	if topics == nil {
		topics = []string{}
	}
	repo := remote.RemoteRepo{
		Name:          rec.Name,
		CloneURL:      rec.CloneURL,
		SSHURL:        rec.SSHURL,
		HTMLURL:       rec.HTMLURL,
		Topics:        topics,
		Stars:         rec.StargazersCount,
		IsFork:        rec.Fork,
		IsArchived:    rec.Archived,
		DefaultBranch: rec.DefaultBranch,
		Owner:         rec.Owner.Login,
	}
	if rec.Description != nil {
		repo.Description = *rec.Description
	}
	if rec.Language != nil {
		repo.Language = *rec.Language
	}
	return repo
}
