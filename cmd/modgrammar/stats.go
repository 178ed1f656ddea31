package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store/resultfiles"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store/sqlite"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Manage stored price statistics",
}

var statsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import result files for the latest run's groups into the database",
	Args:  cobra.NoArgs,
	RunE:  runStatsImport,
}

func runStatsImport(cmd *cobra.Command, args []string) error {
	if cfg.DB == "" {
		return fmt.Errorf("%w: stats import requires db", internalerr.ErrInvalidConfig)
	}
	ctx := cmd.Context()

	st, err := sqlite.OpenSQLite(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	run, ok, err := st.LatestRun(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no recorded run", internalerr.ErrNotFound)
	}

	groups, err := st.GetGroups(ctx, run.ID)
	if err != nil {
		return err
	}
	keys := make([]store.GroupKey, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}

	n, err := resultfiles.New(cfg.ResultsDir, logger).Import(ctx, st, keys)
	if err != nil {
		return err
	}
	logger.Info("stats imported", zap.String("run", run.ID), zap.Int("groups", len(keys)), zap.Int("imported", n))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d groups\n", n, len(keys))
	return nil
}
