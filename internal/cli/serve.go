package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mithrel/sheetsite/internal/config"
	"github.com/mithrel/sheetsite/internal/schedule"
	"github.com/mithrel/sheetsite/internal/server"
)

func newServeCmd() *cobra.Command {
	var noWarm, watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site, the JSON API and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := getConfig(cmd)
			if err != nil {
				return err
			}
			applyConfigFlagOverrides(cmd, v, map[string]string{"listen": "http_addr"})
			if err := config.CheckConfigValidity(v); err != nil {
				return fmt.Errorf("invalid config:\n%w", err)
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !noWarm {
				if err := app.Content.Warm(ctx); err != nil {
					app.Log.Warn("warm start incomplete", zap.Error(err))
				}
			}
			if watch {
				if path := v.ConfigFileUsed(); path != "" {
					v.OnConfigChange(func(e fsnotify.Event) {
						app.Log.Info("config changed; caches dropped", zap.String("file", e.Name))
						app.Content.Invalidate()
					})
					v.WatchConfig()
				}
				if v.GetString("source.mode") == "dir" {
					err := watchDir(ctx, v.GetString("source.dir"), app.Log, func(name string) {
						app.Log.Info("content file changed; caches dropped", zap.String("file", name))
						app.Content.Invalidate()
					})
					if err != nil {
						return err
					}
				}
			}

			sched := &schedule.Scheduler{Every: v.GetDuration("cache.refresh_interval"), Name: "refresh", Log: app.Log}
			refreshDone := make(chan struct{})
			go func() {
				defer close(refreshDone)
				sched.Run(ctx, app.Content.Refresh)
			}()

			err = server.New(v, app.Content, app.Site, app.Log).Run(ctx)
			stop()
			<-refreshDone
			return err
		},
	}
	cmd.Flags().String("listen", "", "listen address (overrides http_addr)")
	cmd.Flags().String("log.level", "", "log level (overrides log.level)")
	cmd.Flags().Bool("tls.self_signed", false, "serve TLS with a self-signed certificate")
	cmd.Flags().Bool("tls.http3", false, "also serve HTTP/3")
	cmd.Flags().Duration("cache.refresh_interval", 0, "refetch all content this often (overrides cache.refresh_interval)")
	cmd.Flags().BoolVar(&noWarm, "no-warm", false, "skip loading all content before listening")
	cmd.Flags().BoolVar(&watch, "watch", true, "drop caches when the config file or source.dir changes")
	return cmd
}
