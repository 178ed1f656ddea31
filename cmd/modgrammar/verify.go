package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/modgrammar/pkg/modgrammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [translations.json]",
	Short: "Check the grammar against the stat translation table",
	Long: `Renders every English variant of the stat translation table and matches it.
Reports searchable translations the grammar misses and matched translations the
trade backend cannot search for.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	translations, err := verify.LoadFile(args[0])
	if err != nil {
		return err
	}

	engine, _, _, err := loadEngine(modgrammar.Options{})
	if err != nil {
		return err
	}
	defer engine.Close()

	report := verify.Check(engine.Parser(), translations, logger)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "checked: %d\n", report.Checked)
	fmt.Fprintf(out, "matched: %d\n", report.Matched)
	fmt.Fprintf(out, "missed: %d\n", len(report.Missed))
	fmt.Fprintf(out, "unexpected: %d\n", len(report.Unexpected))
	for _, f := range report.Missed {
		fmt.Fprintf(out, "missed\t%d\t%s\n", f.Index, firstText(f.Translation))
	}
	for _, f := range report.Unexpected {
		fmt.Fprintf(out, "unexpected\t%d\t%s\t%s\n", f.Index, f.Result.TemplateID, firstText(f.Translation))
	}
	return nil
}

func firstText(t verify.Translation) string {
	if len(t.English) == 0 {
		return ""
	}
	return t.English[0].Text()
}
