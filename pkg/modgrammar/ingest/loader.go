package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Prefixes of the character files the crawler saves.
var filePrefixes = []string{"items-", "passives-"}

// LoadFile reads one saved character response.
func LoadFile(path string) (*Character, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &c, nil
}

// LoadDir reads every character file in dir in lexical order and returns the
// items they contain. Files that cannot be read are logged and skipped.
func LoadDir(dir string, logger *zap.Logger) ([]Item, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !isCharacterFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var items []Item
	for _, name := range names {
		c, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping character file", zap.String("file", name), zap.Error(err))
			continue
		}
		logger.Debug("loaded character file", zap.String("file", name), zap.Int("items", len(c.Items)))
		items = append(items, c.Items...)
	}
	return items, nil
}

func isCharacterFile(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	for _, p := range filePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
