package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vcsync/vcsync/internal/format"
)

// InventoryRecord is one exported repository row, consumed by the
// post-processing tool and the Lambda S3 upload.
type InventoryRecord struct {
	Date       string `json:"date"`
	Service    string `json:"service"`
	Repository string `json:"repository"`
	CloneURL   string `json:"clone_url"`
	Stars      int    `json:"stars"`
}

func (a *App) newExportCommand() *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "export <service> [target]",
		Short: "Export a repository inventory as dated JSON records",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 1 {
				target = args[1]
			}
			return a.ExportJSON(cmd.Context(), cmd.OutOrStdout(), args[0], target, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "user", "Interpret the target as user, org, or search")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 200, "Maximum repositories to export")
	return cmd
}

// ExportJSON fetches an inventory and writes dated JSON records to w.
func (a *App) ExportJSON(ctx context.Context, w io.Writer, service, target string, flags importFlags) error {
	opts, err := a.buildOptions(service, target, flags)
	if err != nil {
		return err
	}
	importer, err := a.newImporter(service, opts)
	if err != nil {
		return err
	}
	stream, err := importer.FetchRepos(ctx, opts)
	if err != nil {
		return err
	}
	repos, err := stream.Collect(ctx)
	if err != nil {
		return fmt.Errorf("fetching from %s: %w", service, err)
	}

	date := time.Now().Format("2006-Jan-02")
	records := make([]InventoryRecord, 0, len(repos))
	for _, repo := range repos {
		records = append(records, InventoryRecord{
			Date:       date,
			Service:    service,
			Repository: repo.FullName(),
			CloneURL:   repo.ToVcspullURL(false),
			Stars:      repo.Stars,
		})
	}
	return format.WriteJSON(w, records, a.Config.SlackMode)
}

// ExportFromEnv runs ExportJSON with fetch parameters taken from the
// VCSYNC_MODE and VCSYNC_LIMIT environment variables, for the Lambda entry
// point where no flags exist.
func (a *App) ExportFromEnv(ctx context.Context, w io.Writer, service, target string) error {
	flags := importFlags{mode: "user", limit: 200}
	if mode := os.Getenv("VCSYNC_MODE"); mode != "" {
		flags.mode = mode
	}
	if raw := os.Getenv("VCSYNC_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parsing VCSYNC_LIMIT: %w", err)
		}
		flags.limit = limit
	}
	return a.ExportJSON(ctx, w, service, target, flags)
}
