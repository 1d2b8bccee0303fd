package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/db"
	"github.com/mithrel/sheetsite/internal/present"
	"github.com/mithrel/sheetsite/internal/util"
	"github.com/mithrel/sheetsite/pkg/api"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage stored upstream snapshots",
	}
	cmd.AddCommand(newCacheRefreshCmd())
	cmd.AddCommand(newCacheStatsCmd())
	return cmd
}

func newCacheRefreshCmd() *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every tab and the catalog and store fresh snapshots",
		Long: "Fetch every tab and the catalog and store fresh snapshots.\n" +
			"With --older-than only snapshots fetched before that point are refetched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			start := time.Now()

			if olderThan == "" {
				err := app.Content.Refresh(ctx)
				_, _ = fmt.Fprintf(out, "Refreshed %d tabs and the catalog in %s\n",
					len(app.Content.Tabs()), time.Since(start).Round(time.Millisecond))
				return err
			}

			cutoff, err := util.ParseTimeExpr(olderThan, start)
			if err != nil {
				return err
			}
			infos, err := app.Content.Snapshots(ctx)
			if err != nil {
				return err
			}
			var errs []error
			n := 0
			for _, in := range stale(infos, cutoff) {
				switch in.Kind {
				case db.KindProducts:
					_, err = app.Content.Products(ctx)
				default:
					_, err = app.Content.Sheet(ctx, in.Name)
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("%s %s: %w", in.Kind, in.Name, err))
					continue
				}
				n++
				_, _ = fmt.Fprintf(out, "refreshed %s %s (was %s)\n", in.Kind, in.Name, humanize.RelTime(in.FetchedAt, start, "old", ""))
			}
			_, _ = fmt.Fprintf(out, "Refreshed %d snapshots older than %s\n", n, humanize.Time(cutoff))
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "", "only refetch snapshots fetched before this (e.g. 2h, 3d, 2025-01-31)")
	return cmd
}

func newCacheStatsCmd() *cobra.Command {
	var out outputFlags
	var staleExpr string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "List stored snapshots and their age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			opts.Now = time.Now()
			infos, err := app.Content.Snapshots(cmd.Context())
			if err != nil {
				return err
			}
			if staleExpr != "" {
				cutoff, err := util.ParseTimeExpr(staleExpr, opts.Now)
				if err != nil {
					return err
				}
				infos = stale(infos, cutoff)
			}
			return render(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, func(w io.Writer) error {
				return present.RenderSnapshots(w, infos, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "plain", "plain", "json", "ndjson", "yaml")
	cmd.Flags().StringVar(&staleExpr, "stale", "", "only snapshots fetched before this (e.g. 2h, 3d)")
	return cmd
}

func stale(infos []api.SnapshotInfo, cutoff time.Time) []api.SnapshotInfo {
	out := make([]api.SnapshotInfo, 0, len(infos))
	for _, in := range infos {
		if in.FetchedAt.Before(cutoff) {
			out = append(out, in)
		}
	}
	return out
}
