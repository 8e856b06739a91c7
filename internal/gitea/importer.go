// Package gitea lists repositories through the Gitea REST API, which also
// covers Forgejo and Codeberg deployments.
package gitea

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
	defaultBaseURL = "https://gitea.com/api/v1"

	// pageSize is fixed for the whole fetch; see the matching constant in
	// the github package for why it is never recomputed.
	pageSize = 50
)

// Config configures an Importer.
type Config struct {
	Token                  string
	BaseURL                string
	RateLimitWarnThreshold int
	Logger                 *zap.Logger
	Client                 *httpapi.Client
}

// Importer lists repositories on a Gitea-family host.
type Importer struct {
	client *httpapi.Client
}

// New builds a Gitea Importer. BaseURL selects the deployment (gitea.com,
// codeberg.org, a self-hosted Forgejo); empty means gitea.com.
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
			AuthHeader:             "Authorization",
			AuthScheme:             "token",
			RateLimitWarnThreshold: cfg.RateLimitWarnThreshold,
			Logger:                 cfg.Logger,
		})
	}
	return &Importer{client: client}
}

// ServiceName implements remote.Importer.
func (i *Importer) ServiceName() string { return string(remote.ServiceGitea) }

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
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("page", strconv.Itoa(page))
		raw, _, err := i.client.Get(ctx, endpoint, params, i.ServiceName())
		if err != nil {
			return nil, false, err
		}
		records, err := decodePage(raw, i.ServiceName())
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
		return "/repos/search?q=" + url.QueryEscape(opts.Target), nil
	default:
		return "", remote.NewError(remote.KindConfiguration, i.ServiceName(), "unknown mode %q", string(opts.Mode))
	}
}

type repoRecord struct {
	Name          string   `json:"name"`
	CloneURL      string   `json:"clone_url"`
	SSHURL        string   `json:"ssh_url"`
	HTMLURL       string   `json:"html_url"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	Topics        []string `json:"topics"`
	StarsCount    int      `json:"stars_count"`
	Fork          bool     `json:"fork"`
	Archived      bool     `json:"archived"`
	DefaultBranch string   `json:"default_branch"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// decodePage accepts both response shapes Gitea-family servers produce:
// a bare array, or an envelope {"ok": bool, "data": [...]}.
func decodePage(raw json.RawMessage, service string) ([]repoRecord, error) {
	var records []repoRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}
	var envelope struct {
		OK   bool         `json:"ok"`
		Data []repoRecord `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, remote.WrapError(remote.KindServiceUnavailable, service, err, "decoding repository list")
	}
	return envelope.Data, nil
}

func normalize(rec repoRecord) remote.RemoteRepo {
	topics := rec.Topics
	if topics == nil {
		topics = []string{}
	}
	return remote.RemoteRepo{
		Name:          rec.Name,
		CloneURL:      rec.CloneURL,
		SSHURL:        rec.SSHURL,
		HTMLURL:       rec.HTMLURL,
		Description:   rec.Description,
		Language:      rec.Language,
		Topics:        topics,
		Stars:         rec.StarsCount,
		IsFork:        rec.Fork,
		IsArchived:    rec.Archived,
		DefaultBranch: rec.DefaultBranch,
		Owner:         rec.Owner.Login,
	}
}
