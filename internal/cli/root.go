package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/sheetsite/internal/config"
	"github.com/mithrel/sheetsite/internal/wire"
)

type ctxKey string

const envKey ctxKey = "env"

// env is what PersistentPreRunE hands to subcommands: the loaded config
// and a lazily built App, so config-only commands never touch the store.
type env struct {
	v    *viper.Viper
	once sync.Once
	app  *wire.App
	err  error
}

func (e *env) App(ctx context.Context) (*wire.App, error) {
	e.once.Do(func() { e.app, e.err = wire.BuildApp(ctx, e.v) })
	return e.app, e.err
}

func (e *env) Close() error {
	if e.app == nil {
		return nil
	}
	return e.app.Close()
}

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "sheetsite",
		Short:         "sheetsite serves a bilingual website from a published spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey, &env{v: v}))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e, ok := cmd.Context().Value(envKey).(*env); ok {
				return e.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPageCmd())
	cmd.AddCommand(newProductCmd())
	cmd.AddCommand(newSheetCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

var errNoEnv = errors.New("internal error: config not loaded")

func getEnv(cmd *cobra.Command) (*env, error) {
	e, ok := cmd.Context().Value(envKey).(*env)
	if !ok {
		return nil, errNoEnv
	}
	return e, nil
}

func getConfig(cmd *cobra.Command) (*viper.Viper, error) {
	e, err := getEnv(cmd)
	if err != nil {
		return nil, err
	}
	return e.v, nil
}

func getApp(cmd *cobra.Command) (*wire.App, error) {
	e, err := getEnv(cmd)
	if err != nil {
		return nil, err
	}
	return e.App(cmd.Context())
}
