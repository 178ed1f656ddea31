// Package resultfiles reads the per-group result files the pricing pipeline
// writes next to the ranked catalog.
package resultfiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
)

// Dir is a directory of "result-<item> <stats>.json" files.
type Dir struct {
	root   string
	logger *zap.Logger
}

// New returns a Dir rooted at root.
func New(root string, logger *zap.Logger) Dir {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Dir{root: root, logger: logger}
}

// file is the subset of a result file that is carried forward.
type file struct {
	Average  *float64        `json:"average"`
	Prices   []float64       `json:"prices"`
	Filtered []float64       `json:"filtered"`
	Search   json.RawMessage `json:"search"`
}

// separators are replaced so every result file stays directly under root.
var separators = strings.NewReplacer("/", "_", `\`, "_")

// Path returns the result file path for key.
func (d Dir) Path(key store.GroupKey) string {
	name := separators.Replace(fmt.Sprintf("result-%s %s.json", key.Item, key.Stats))
	return filepath.Join(d.root, name)
}

// Load reads the stats for key. A missing file is not an error.
func (d Dir) Load(key store.GroupKey) (store.Stats, bool, error) {
	data, err := os.ReadFile(d.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return store.Stats{}, false, nil
	}
	if err != nil {
		return store.Stats{}, false, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return store.Stats{}, false, fmt.Errorf("parse %s: %w", filepath.Base(d.Path(key)), err)
	}
	return store.Stats{
		Average:  f.Average,
		Prices:   f.Prices,
		Filtered: f.Filtered,
		Search:   store.StripSearchResult(f.Search),
	}, true, nil
}

// Lookup returns the stats for key, treating unreadable files as absent.
func (d Dir) Lookup(key store.GroupKey) (store.Stats, bool) {
	st, ok, err := d.Load(key)
	if err != nil {
		d.logger.Warn("ignoring result file", zap.String("item", key.Item), zap.String("stats", key.Stats), zap.Error(err))
		return store.Stats{}, false
	}
	return st, ok
}

// Import copies the result files for keys into st and returns how many were
// found.
func (d Dir) Import(ctx context.Context, st store.Store, keys []store.GroupKey) (int, error) {
	n := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		stats, ok := d.Lookup(key)
		if !ok {
			continue
		}
		if err := st.UpsertStats(ctx, key, stats); err != nil {
			return n, fmt.Errorf("upsert %s / %s: %w", key.Item, key.Stats, err)
		}
		n++
	}
	return n, nil
}
