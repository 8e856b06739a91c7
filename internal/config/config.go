package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	GitLabToken  string
	GiteaToken   string
	GitHubAPIURL string
	GitLabAPIURL string
	GiteaAPIURL  string

	AWSRegion  string
	AWSProfile string
	AWSBinary  string
	CLITimeout time.Duration

	SlackMode bool
	DebugMode bool
	CacheFile string
	NoCache   bool
}

// FromEnvironment creates a Config from environment variables.
func FromEnvironment() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("CACHE_FILE", "/tmp/vcsync-cache.gob")
	v.SetDefault("AWS_CLI_BINARY", "aws")
	v.SetDefault("AWS_CLI_TIMEOUT", "30s")

	return Config{
		GitHubToken:  v.GetString("GITHUB_TOKEN"),
		GitLabToken:  v.GetString("GITLAB_TOKEN"),
		GiteaToken:   v.GetString("GITEA_TOKEN"),
		GitHubAPIURL: v.GetString("GITHUB_API_URL"),
		GitLabAPIURL: v.GetString("GITLAB_API_URL"),
		GiteaAPIURL:  v.GetString("GITEA_API_URL"),
		AWSRegion:    v.GetString("AWS_REGION"),
		AWSProfile:   v.GetString("AWS_PROFILE"),
		AWSBinary:    v.GetString("AWS_CLI_BINARY"),
		CLITimeout:   v.GetDuration("AWS_CLI_TIMEOUT"),
		SlackMode:    v.GetBool("SLACK_MODE"),
		DebugMode:    v.GetBool("DEBUG"),
		CacheFile:    v.GetString("CACHE_FILE"),
	}
}

// TokenFor returns the configured token for a service name.
func (c Config) TokenFor(service string) string {
	switch service {
	case "github":
		return c.GitHubToken
	case "gitlab":
		return c.GitLabToken
	case "gitea":
		return c.GiteaToken
	default:
		return ""
	}
}

// BaseURLFor returns the configured API base URL for a service name, empty
// meaning the importer's default.
func (c Config) BaseURLFor(service string) string {
	switch service {
	case "github":
		return c.GitHubAPIURL
	case "gitlab":
		return c.GitLabAPIURL
	case "gitea":
		return c.GiteaAPIURL
	default:
		return ""
	}
}
