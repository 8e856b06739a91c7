package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vcsync/vcsync/internal/cache"
	"github.com/vcsync/vcsync/internal/config"
)

// App holds shared application state.
type App struct {
	Config   config.Config
	Cache    *cache.Cache
	Logger   *zap.Logger
	GitSHA   string
	GitDirty string
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, gitSHA, gitDirty string) (*App, error) {
	c, err := cache.LoadFromFile(cfg.CacheFile)
	if err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}

	logger := zap.NewNop()
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("building logger: %w", err)
		}
	}

	return &App{
		Config:   cfg,
		Cache:    c,
		Logger:   logger,
		GitSHA:   gitSHA,
		GitDirty: gitDirty,
	}, nil
}

// SaveCache saves the cache to disk if caching is enabled.
func (a *App) SaveCache() error {
	if !a.Config.NoCache {
		return a.Cache.SaveToFile(a.Config.CacheFile)
	}
	return nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   os.Args[0],
		Short: "Import repository inventories from remote hosting services.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&a.Config.NoCache, "no-cache", false, "Disable caching")

	rootCmd.AddCommand(a.newServiceCommand("github", "List repositories from GitHub"))
	rootCmd.AddCommand(a.newServiceCommand("gitlab", "List projects from GitLab"))
	rootCmd.AddCommand(a.newServiceCommand("gitea", "List repositories from a Gitea/Forgejo/Codeberg host"))
	rootCmd.AddCommand(a.newServiceCommand("codecommit", "List repositories from AWS CodeCommit"))
	rootCmd.AddCommand(a.newExportCommand())
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())

	return rootCmd
}
