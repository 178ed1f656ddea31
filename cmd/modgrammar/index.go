package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/index"
	"github.com/cognicore/modgrammar/pkg/modgrammar/ingest"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store/resultfiles"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store/sqlite"
)

const (
	modsFile       = "mods.json"
	modsSortedFile = "mods-sorted.json"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Aggregate modifier groups across the downloaded characters",
	Long: `Reads every character file in data_dir, matches the eligible modifier lines and
groups items by their matched templates. Writes mods.json and mods-sorted.json to
results_dir and records the run in db when one is configured.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var st store.Store
	if cfg.DB != "" {
		var err error
		if st, err = sqlite.OpenSQLite(ctx, cfg.DB); err != nil {
			return err
		}
	}

	results := resultfiles.New(cfg.ResultsDir, logger)
	engine, _, _, err := loadEngine(modgrammar.Options{Store: st, Prior: results})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return err
	}
	defer engine.Close()

	items, err := ingest.LoadDir(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	snap, run, err := engine.Index(ctx, items)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(cfg.ResultsDir, modsFile), snap, index.WriteJSON); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(cfg.ResultsDir, modsSortedFile), snap, index.WriteRankedJSON); err != nil {
		return err
	}

	logger.Info("index written",
		zap.String("run", run.ID),
		zap.String("dir", cfg.ResultsDir))
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d items, %d groups\n", run.ID, snap.Items(), snap.Len())
	return nil
}

func writeFile(path string, snap index.Snapshot, write func(w io.Writer, s index.Snapshot) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
