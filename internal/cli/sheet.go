package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/present"
	"github.com/mithrel/sheetsite/internal/util"
)

func newSheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Inspect spreadsheet tabs",
	}
	cmd.AddCommand(newSheetDumpCmd())
	return cmd
}

func newSheetDumpCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "dump <tab>",
		Short:             "Print the rows of one tab",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTabs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			if !app.Content.IsTab(args[0]) {
				return fmt.Errorf("unknown tab %q (configured: %v)", args[0], app.Content.Tabs())
			}
			sheet, err := app.Content.Sheet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, func(w io.Writer) error {
				return present.RenderSheet(w, sheet, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "plain", "plain", "pretty", "json", "ndjson", "yaml")
	return cmd
}

func completeTabs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	v, err := getConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return util.ScoreCompletions(toComplete, v.GetStringSlice("site.tabs"), 0), cobra.ShellCompDirectiveNoFileComp
}
