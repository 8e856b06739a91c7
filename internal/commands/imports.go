package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vcsync/vcsync/internal/format"
	"github.com/vcsync/vcsync/internal/importers"
	"github.com/vcsync/vcsync/internal/remote"
)

// importFlags are the per-fetch filters shared by every service command.
type importFlags struct {
	mode     string
	baseURL  string
	limit    int
	language string
	topics   []string
	minStars int
	forks    bool
	archived bool
	useSSH   bool
	asJSON   bool
}

func (a *App) newServiceCommand(service, short string) *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   service + " [target]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			if target == "" && service != "codecommit" {
				return fmt.Errorf("%s requires a target user, org, or query", service)
			}
			return a.runImport(cmd.Context(), cmd.OutOrStdout(), service, target, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "user", "Interpret the target as user, org, or search")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Override the API base URL")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 50, "Maximum repositories to import")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Only repositories in this language")
	cmd.Flags().StringSliceVarP(&flags.topics, "topic", "t", nil, "Require this topic (repeatable)")
	cmd.Flags().IntVar(&flags.minStars, "min-stars", 0, "Only repositories with at least this many stars")
	cmd.Flags().BoolVar(&flags.forks, "forks", false, "Include forks")
	cmd.Flags().BoolVar(&flags.archived, "archived", false, "Include archived repositories")
	cmd.Flags().BoolVar(&flags.useSSH, "ssh", true, "Prefer SSH clone URLs in text output")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Emit JSON records instead of text lines")
	return cmd
}

func (a *App) buildOptions(service, target string, flags importFlags) (remote.ImportOptions, error) {
	mode, err := remote.ParseMode(flags.mode)
	if err != nil {
		return remote.ImportOptions{}, err
	}
	baseURL := flags.baseURL
	if baseURL == "" {
		baseURL = a.Config.BaseURLFor(service)
	}
	return remote.NewImportOptions(remote.ImportOptions{
		Mode:            mode,
		Target:          target,
		BaseURL:         baseURL,
		Token:           a.Config.TokenFor(service),
		IncludeForks:    flags.forks,
		IncludeArchived: flags.archived,
		Language:        flags.language,
		Topics:          flags.topics,
		MinStars:        flags.minStars,
		Limit:           flags.limit,
	})
}

func (a *App) newImporter(service string, opts remote.ImportOptions) (remote.Importer, error) {
	svc, err := remote.ParseService(service)
	if err != nil {
		return nil, err
	}
	return importers.New(svc, importers.Config{
		Token:      opts.Token,
		BaseURL:    opts.BaseURL,
		Region:     a.Config.AWSRegion,
		Profile:    a.Config.AWSProfile,
		CLIBinary:  a.Config.AWSBinary,
		CLITimeout: a.Config.CLITimeout,
		Logger:     a.Logger,
	})
}

func (a *App) runImport(ctx context.Context, w io.Writer, service, target string, flags importFlags) error {
	opts, err := a.buildOptions(service, target, flags)
	if err != nil {
		return err
	}

	cacheKey := opts.CacheKey(service)
	if !a.Config.NoCache {
		if val, found := a.Cache.Get(cacheKey); found {
			if repos, ok := val.([]remote.RemoteRepo); ok {
				return a.render(w, repos, flags)
			}
		}
	}

	importer, err := a.newImporter(service, opts)
	if err != nil {
		return err
	}
	stream, err := importer.FetchRepos(ctx, opts)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Text output streams one line per repo as pages arrive; JSON has to
	// collect first. Either way the full result is kept for the cache.
	var repos []remote.RemoteRepo
	for {
		repo, err := stream.Next(ctx)
		if err != nil {
			return fmt.Errorf("fetching from %s: %w", service, err)
		}
		if repo == nil {
			break
		}
		repos = append(repos, *repo)
		if !flags.asJSON {
			format.WriteRepoLine(w, *repo, flags.useSSH)
		}
	}

	if flags.asJSON {
		if err := format.WriteJSON(w, format.ReposJSON(repos), a.Config.SlackMode); err != nil {
			return err
		}
	}
	if !a.Config.NoCache {
		a.Cache.Set(cacheKey, repos)
	}
	return nil
}

func (a *App) render(w io.Writer, repos []remote.RemoteRepo, flags importFlags) error {
	if flags.asJSON {
		return format.WriteJSON(w, format.ReposJSON(repos), a.Config.SlackMode)
	}
	for _, repo := range repos {
		format.WriteRepoLine(w, repo, flags.useSSH)
	}
	return nil
}
