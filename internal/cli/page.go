package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/site"
)

func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Render site pages without a server",
	}
	cmd.AddCommand(newPageRenderCmd())
	return cmd
}

func newPageRenderCmd() *cobra.Command {
	var lang, id, query string
	var bodyOnly bool
	cmd := &cobra.Command{
		Use:               "render <page>",
		Short:             "Write the HTML of one page to stdout",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePages,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			l, err := resolveLang(cmd, lang)
			if err != nil {
				return err
			}
			switch args[0] {
			case site.PageProduct, site.PageCategory, site.PageSearch:
			default:
				if !app.Content.IsTab(args[0]) {
					return fmt.Errorf("unknown page %q", args[0])
				}
			}
			req := site.Request{Page: args[0], ID: id, Query: query, Lang: l, LangExplicit: lang != ""}
			renderFn := app.Site.Render
			if bodyOnly {
				renderFn = app.Site.RenderBody
			}
			res, err := renderFn(cmd.Context(), req)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(res.Body); err != nil {
				return err
			}
			if res.Status != http.StatusOK {
				return fmt.Errorf("page %q rendered with status %d %s", args[0], res.Status, http.StatusText(res.Status))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language: zh|en (default site.default_lang)")
	cmd.Flags().StringVar(&id, "id", "", "product code or category name")
	cmd.Flags().StringVar(&query, "q", "", "search query for the search page")
	cmd.Flags().BoolVar(&bodyOnly, "body", false, "omit the layout (header, nav)")
	return cmd
}

func completePages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tabs, dir := completeTabs(cmd, args, "")
	if dir == cobra.ShellCompDirectiveError {
		return nil, dir
	}
	pages := append(tabs, site.PageProduct, site.PageCategory, site.PageSearch)
	return pages, cobra.ShellCompDirectiveNoFileComp
}
