package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/modgrammar/pkg/modgrammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
)

var showDiagnostics bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the catalog and report templates that cannot be matched",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&showDiagnostics, "diagnostics", false, "List every diagnostic")
}

func runBuild(cmd *cobra.Command, args []string) error {
	engine, comps, diags, err := loadEngine(modgrammar.Options{})
	if err != nil {
		return err
	}
	defer engine.Close()

	counts := map[grammar.DiagnosticKind]int{}
	for _, d := range diags {
		counts[d.Kind]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "templates: %d\n", comps.Catalog.Len())
	fmt.Fprintf(out, "rules: %d\n", engine.Parser().Grammar().Len())
	fmt.Fprintf(out, "unmatched formats: %d\n", counts[grammar.UnmatchedFormat])
	fmt.Fprintf(out, "malformed templates: %d\n", counts[grammar.MalformedTemplate])
	fmt.Fprintf(out, "duplicate options: %d\n", counts[grammar.DuplicateOption])

	if showDiagnostics {
		for _, d := range diags {
			switch d.Kind {
			case grammar.UnmatchedFormat:
				fmt.Fprintf(out, "%s\t%s\t%s\n", d.Kind, d.TemplateID, strings.Join(d.Tokens, " "))
			case grammar.DuplicateOption:
				fmt.Fprintf(out, "%s\t%s\t%s\n", d.Kind, d.TemplateID, d.Option.Text)
			default:
				fmt.Fprintf(out, "%s\t%s\t%v\n", d.Kind, d.TemplateID, d.Err)
			}
		}
	}
	return nil
}
