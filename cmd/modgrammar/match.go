package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/modgrammar/pkg/modgrammar"
)

var matchCmd = &cobra.Command{
	Use:   "match [text]",
	Short: "Match modifier text and print the recognized template",
	Long: `Joins the arguments with spaces and matches them against the compiled catalog.
Use literal newlines in the argument to match a multi-line modifier block.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	engine, _, _, err := loadEngine(modgrammar.Options{})
	if err != nil {
		return err
	}
	defer engine.Close()

	text := strings.Join(args, " ")
	res, ok, err := engine.Match(text)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no template matches %q", text)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
