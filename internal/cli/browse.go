package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/present"
	"github.com/mithrel/sheetsite/pkg/api"
)

func newBrowseCmd() *cobra.Command {
	var out outputFlags
	var category string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the product catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			out.output = "tui"
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			start := time.Now()
			var ps []api.Product
			if category != "" {
				ps, err = app.Content.Category(cmd.Context(), category)
			} else {
				ps, err = app.Content.Products(cmd.Context())
			}
			if err != nil {
				return err
			}
			opts.Status = fmt.Sprintf("loaded in %s", time.Since(start).Round(time.Millisecond))
			opts.Search = searchFunc(app.Content.Search, opts.Lang, app.Cfg.GetInt("search.limit"), ps)
			return present.RenderProducts(cmd.Context(), cmd.OutOrStdout(), ps, opts)
		},
	}
	cmd.Flags().StringVar(&out.lang, "lang", "", "language: zh|en (default site.default_lang)")
	cmd.Flags().BoolVar(&out.noHeaders, "noheaders", false, "hide column headers")
	cmd.Flags().StringVar(&category, "category", "", "only products in this category")
	_ = cmd.RegisterFlagCompletionFunc("category", completeCategories)
	return cmd
}
