package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/sheetsite/internal/present"
	"github.com/mithrel/sheetsite/pkg/api"
)

// outputFlags are shared by every command that prints catalog data.
type outputFlags struct {
	output    string
	lang      string
	noHeaders bool
	indent    bool
}

func addOutputFlags(cmd *cobra.Command, f *outputFlags, def string, modes ...string) {
	if len(modes) == 0 {
		modes = present.ModeNames
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", def, "output mode: "+strings.Join(modes, "|"))
	cmd.Flags().StringVar(&f.lang, "lang", "", "language: zh|en (default site.default_lang)")
	cmd.Flags().BoolVar(&f.noHeaders, "noheaders", false, "hide column headers (plain/tui)")
	cmd.Flags().BoolVar(&f.indent, "indent", false, "indent JSON output")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("lang", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"zh", "en"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f outputFlags) options(cmd *cobra.Command) (present.Options, error) {
	mode, ok := present.ParseMode(strings.ToLower(f.output))
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", f.output)
	}
	lang, err := resolveLang(cmd, f.lang)
	if err != nil {
		return present.Options{}, err
	}
	return present.Options{
		Mode:       mode,
		Lang:       lang,
		JSONIndent: f.indent,
		Headers:    !f.noHeaders,
	}, nil
}

func resolveLang(cmd *cobra.Command, raw string) (api.Lang, error) {
	if raw == "" {
		v, err := getConfig(cmd)
		if err != nil {
			return api.LangZH, err
		}
		raw = v.GetString("site.default_lang")
	}
	lang, ok := api.ParseLang(raw)
	if !ok {
		return api.LangZH, fmt.Errorf("invalid --lang: %s", raw)
	}
	return lang, nil
}
