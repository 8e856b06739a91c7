// Package importers selects a backend implementation by service name.
package importers

import (
	"time"

	"go.uber.org/zap"

	"github.com/vcsync/vcsync/internal/codecommit"
	"github.com/vcsync/vcsync/internal/gitea"
	"github.com/vcsync/vcsync/internal/github"
	"github.com/vcsync/vcsync/internal/gitlab"
	"github.com/vcsync/vcsync/internal/remote"
)

// Config carries every backend setting explicitly; importers hold no
// ambient global state.
type Config struct {
	Token                  string
	BaseURL                string
	Region                 string
	Profile                string
	CLIBinary              string
	CLITimeout             time.Duration
	RateLimitWarnThreshold int
	Logger                 *zap.Logger
}

// New builds the Importer for service. Unknown services and failed
// environment checks (a missing CLI binary) return an importer error.
func New(service remote.Service, cfg Config) (remote.Importer, error) {
	switch service {
	case remote.ServiceGitHub:
		return github.New(github.Config{
			Token:                  cfg.Token,
			BaseURL:                cfg.BaseURL,
			RateLimitWarnThreshold: cfg.RateLimitWarnThreshold,
			Logger:                 cfg.Logger,
		}), nil
	case remote.ServiceGitLab:
		return gitlab.New(gitlab.Config{
			Token:                  cfg.Token,
			BaseURL:                cfg.BaseURL,
			RateLimitWarnThreshold: cfg.RateLimitWarnThreshold,
			Logger:                 cfg.Logger,
		}), nil
	case remote.ServiceGitea:
		return gitea.New(gitea.Config{
			Token:                  cfg.Token,
			BaseURL:                cfg.BaseURL,
			RateLimitWarnThreshold: cfg.RateLimitWarnThreshold,
			Logger:                 cfg.Logger,
		}), nil
	case remote.ServiceCodeCommit:
		return codecommit.New(codecommit.Config{
			Binary:  cfg.CLIBinary,
			Region:  cfg.Region,
			Profile: cfg.Profile,
			Timeout: cfg.CLITimeout,
			Logger:  cfg.Logger,
		})
	default:
		return nil, remote.NewError(remote.KindConfiguration, "", "unknown service %q", string(service))
	}
}
