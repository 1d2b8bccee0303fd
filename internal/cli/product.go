package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/present"
	"github.com/mithrel/sheetsite/internal/util"
	"github.com/mithrel/sheetsite/pkg/api"
)

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Query the product catalog",
	}
	cmd.AddCommand(newProductListCmd())
	cmd.AddCommand(newProductShowCmd())
	cmd.AddCommand(newProductSearchCmd())
	return cmd
}

func newProductListCmd() *cobra.Command {
	var out outputFlags
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally within one category",
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
			opts.Status = "loaded in " + time.Since(start).Round(time.Millisecond).String()
			opts.Search = searchFunc(app.Content.Search, opts.Lang, app.Cfg.GetInt("search.limit"), ps)
			return render(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, func(w io.Writer) error {
				return present.RenderProducts(cmd.Context(), w, ps, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "plain")
	cmd.Flags().StringVar(&category, "category", "", "only products in this category (case-insensitive)")
	_ = cmd.RegisterFlagCompletionFunc("category", completeCategories)
	return cmd
}

func newProductShowCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "show <code>",
		Short:             "Display one product",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProductCodes,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			p, err := app.Content.Product(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts.Width = terminalWidth(cmd.OutOrStdout())
			return render(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, func(w io.Writer) error {
				return present.RenderProduct(w, p, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "pretty", "plain", "pretty", "json", "ndjson", "yaml")
	return cmd
}

func newProductSearchCmd() *cobra.Command {
	var out outputFlags
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search codes, names and categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = app.Cfg.GetInt("search.limit")
			}
			ps, err := app.Content.Search(cmd.Context(), args[0], opts.Lang, limit)
			if err != nil {
				return err
			}
			return render(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, func(w io.Writer) error {
				return present.RenderProducts(cmd.Context(), w, ps, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "plain")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 uses search.limit)")
	return cmd
}

type searcher func(ctx context.Context, query string, lang api.Lang, limit int) ([]api.Product, error)

// searchFunc adapts the catalog search for the browser, keeping results
// inside the already listed subset.
func searchFunc(search searcher, lang api.Lang, limit int, subset []api.Product) func(context.Context, string) ([]api.Product, error) {
	allowed := make(map[string]bool, len(subset))
	for _, p := range subset {
		allowed[p.Code] = true
	}
	return func(ctx context.Context, query string) ([]api.Product, error) {
		found, err := search(ctx, query, lang, 0)
		if err != nil {
			return nil, err
		}
		out := make([]api.Product, 0, len(found))
		for _, p := range found {
			if allowed[p.Code] {
				out = append(out, p)
			}
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return out, nil
	}
}

func completeProductCodes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	app, err := getApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ps, err := app.Content.Products(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	codes := make([]string, 0, len(ps))
	for _, p := range ps {
		codes = append(codes, p.Code)
	}
	return util.ScoreCompletions(toComplete, codes, 50), cobra.ShellCompDirectiveNoFileComp
}

func completeCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	app, err := getApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	cats, err := app.Content.Categories(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return util.ScoreCompletions(toComplete, cats, 50), cobra.ShellCompDirectiveNoFileComp
}
