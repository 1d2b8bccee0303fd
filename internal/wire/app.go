// Package wire builds the application graph from configuration.
package wire

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mithrel/sheetsite/internal/config"
	"github.com/mithrel/sheetsite/internal/content"
	"github.com/mithrel/sheetsite/internal/db"
	"github.com/mithrel/sheetsite/internal/logging"
	"github.com/mithrel/sheetsite/internal/sheets"
	"github.com/mithrel/sheetsite/internal/site"
	"github.com/mithrel/sheetsite/pkg/api"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg     *viper.Viper
	Log     *zap.Logger
	Store   db.Store
	Source  sheets.Source
	Content *content.Service
	Site    *site.Site
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	log, err := logging.New(v.GetString("log.level"), v.GetString("log.format"))
	if err != nil {
		return nil, err
	}
	src, err := sheets.New(v)
	if err != nil {
		return nil, err
	}
	return Assemble(ctx, v, log, src)
}

// Assemble wires an App around an existing logger and source.
func Assemble(ctx context.Context, v *viper.Viper, log *zap.Logger, src sheets.Source) (*App, error) {
	url := config.ResolveDBURL(v)
	store, err := db.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", url, err)
	}
	svc := content.New(src, store, content.Options{
		Tabs:   v.GetStringSlice("site.tabs"),
		TTL:    v.GetDuration("cache.ttl"),
		Logger: log,
	})
	lang, _ := api.ParseLang(v.GetString("site.default_lang"))
	st, err := site.New(svc, site.Options{
		Title:       v.GetString("site.title"),
		DefaultLang: lang,
		SearchLimit: v.GetInt("search.limit"),
		Logger:      log,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &App{Cfg: v, Log: log, Store: store, Source: src, Content: svc, Site: st}, nil
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	err := a.Store.Close()
	// Sync fails on terminals; only the store error matters.
	_ = a.Log.Sync()
	return err
}
