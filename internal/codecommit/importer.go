// Package codecommit lists repositories by shelling out to the AWS CLI.
// Unlike the REST backends it paginates with a continuation token and
// hydrates repository details in batches.
package codecommit

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vcsync/vcsync/internal/remote"
)

const (
	serviceName = string(remote.ServiceCodeCommit)

	// batchSize is the hard AWS limit on names per batch-get-repositories
	// call. N selected names take exactly ceil(N/batchSize) calls, in
	// discovery order.
	batchSize = 25

	// DefaultTimeout bounds every CLI invocation.
	DefaultTimeout = 30 * time.Second

	fallbackRegion = "us-east-1"
)

var cloneURLRegion = regexp.MustCompile(`git-codecommit\.([a-z0-9-]+)\.amazonaws\.com`)

// Config configures an Importer.
type Config struct {
	// Binary is the CLI to invoke; empty means "aws".
	Binary string
	// Region and Profile are passed through as --region / --profile.
	Region  string
	Profile string
	// Timeout bounds each CLI call; zero means DefaultTimeout.
	Timeout time.Duration
	Logger  *zap.Logger
	// Runner overrides CLI execution, mainly for tests.
	Runner Runner
}

// Importer lists CodeCommit repositories through the AWS CLI.
type Importer struct {
	runner Runner
	region string
	logger *zap.Logger
}

// New builds a CodeCommit Importer. It eagerly verifies the CLI binary is
// runnable so a missing tool fails the invocation immediately rather than
// on the first fetch.
func New(cfg Config) (*Importer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := cfg.Runner
	if runner == nil {
		binary := cfg.Binary
		if binary == "" {
			binary = "aws"
		}
		if _, err := exec.LookPath(binary); err != nil {
			return nil, remote.WrapError(remote.KindDependency, serviceName, err,
				"%s CLI not found; install the AWS CLI to use codecommit", binary)
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		runner = &execRunner{
			binary:  binary,
			region:  cfg.Region,
			profile: cfg.Profile,
			timeout: timeout,
		}
	}
	return &Importer{runner: runner, region: cfg.Region, logger: logger}, nil
}

// ServiceName implements remote.Importer.
func (i *Importer) ServiceName() string { return serviceName }

// IsAuthenticated issues an identity check. Any failure, including missing
// credentials, reports false without raising.
func (i *Importer) IsAuthenticated(ctx context.Context) bool {
	_, err := i.runner.Run(ctx, "sts", "get-caller-identity")
	return err == nil
}

// FetchRepos implements remote.Importer. Target, when non-empty, is a
// substring filter on repository names applied before any batch hydration.
func (i *Importer) FetchRepos(ctx context.Context, opts remote.ImportOptions) (*remote.RepoStream, error) {
	st := &fetchState{imp: i, target: opts.Target}
	return remote.NewRepoStream(opts, st.nextPage), nil
}

// fetchState walks the two-phase CodeCommit fetch: list bare names behind a
// continuation token, then describe them in batches of batchSize.
type fetchState struct {
	imp         *Importer
	target      string
	pending     []string
	nextToken   string
	listingDone bool
}

func (st *fetchState) nextPage(ctx context.Context) ([]remote.RemoteRepo, bool, error) {
	for len(st.pending) < batchSize && !st.listingDone {
		if err := st.listMore(ctx); err != nil {
			return nil, false, err
		}
	}
	if len(st.pending) == 0 {
		return nil, false, nil
	}

	n := len(st.pending)
	if n > batchSize {
		n = batchSize
	}
	names := st.pending[:n]
	st.pending = st.pending[n:]

	repos, err := st.imp.batchDescribe(ctx, names)
	if err != nil {
		return nil, false, err
	}
	return repos, len(st.pending) > 0 || !st.listingDone, nil
}

func (st *fetchState) listMore(ctx context.Context) error {
	args := []string{"codecommit", "list-repositories"}
	if st.nextToken != "" {
		args = append(args, "--next-token", st.nextToken)
	}
	out, err := st.imp.runner.Run(ctx, args...)
	if err != nil {
		return err
	}

	var page struct {
		Repositories []struct {
			RepositoryName string `json:"repositoryName"`
		} `json:"repositories"`
		NextToken string `json:"nextToken"`
	}
	if err := json.Unmarshal(out, &page); err != nil {
		return remote.WrapError(remote.KindConfiguration, serviceName, err,
			"unexpected list-repositories output")
	}

	for _, rec := range page.Repositories {
		if st.target != "" && !strings.Contains(rec.RepositoryName, st.target) {
			continue
		}
		st.pending = append(st.pending, rec.RepositoryName)
	}
	st.nextToken = page.NextToken
	st.listingDone = page.NextToken == ""
	return nil
}

func (i *Importer) batchDescribe(ctx context.Context, names []string) ([]remote.RemoteRepo, error) {
	args := append([]string{"codecommit", "batch-get-repositories", "--repository-names"}, names...)
	out, err := i.runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var result struct {
		Repositories []repoMetadata `json:"repositories"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, remote.WrapError(remote.KindConfiguration, serviceName, err,
			"unexpected batch-get-repositories output")
	}

	repos := make([]remote.RemoteRepo, 0, len(result.Repositories))
	for _, rec := range result.Repositories {
		repos = append(repos, i.normalize(rec))
	}
	return repos, nil
}

type repoMetadata struct {
	RepositoryName        string `json:"repositoryName"`
	RepositoryDescription string `json:"repositoryDescription"`
	CloneURLHTTP          string `json:"cloneUrlHttp"`
	CloneURLSSH           string `json:"cloneUrlSsh"`
	DefaultBranch         string `json:"defaultBranch"`
	AccountID             string `json:"accountId"`
}

// resolveRegion picks the region used in generated console URLs: the
// configured region, else one parsed from the repository's own clone URL,
// else a fixed fallback.
func (i *Importer) resolveRegion(cloneURL string) string {
	if i.region != "" {
		return i.region
	}
	if m := cloneURLRegion.FindStringSubmatch(cloneURL); m != nil {
		return m[1]
	}
	return fallbackRegion
}

func (i *Importer) normalize(rec repoMetadata) remote.RemoteRepo {
	region := i.resolveRegion(rec.CloneURLHTTP)
	return remote.RemoteRepo{
		Name:     rec.RepositoryName,
		CloneURL: rec.CloneURLHTTP,
		SSHURL:   rec.CloneURLSSH,
		HTMLURL: fmt.Sprintf(
			"https://%s.console.aws.amazon.com/codesuite/codecommit/repositories/%s/browse?region=%s",
			region, rec.RepositoryName, region),
		Description:   rec.RepositoryDescription,
		Topics:        []string{},
		DefaultBranch: rec.DefaultBranch,
		Owner:         rec.AccountID,
	}
}
