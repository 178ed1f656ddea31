// Package verify measures how much of the game's stat translation table the
// compiled grammar recognizes, against which translations the trade backend
// says it can search for.
package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/parse"
)

// Translation is one entry of the stat translation table.
type Translation struct {
	IDs        []string  `json:"ids,omitempty"`
	English    []Variant `json:"English"`
	TradeStats []string  `json:"trade_stats,omitempty"`
}

// Variant is one English rendering; "{i}" in String is replaced by Format[i].
type Variant struct {
	String string   `json:"string"`
	Format []string `json:"format"`
}

// Text substitutes the variant's formats into its string.
func (v Variant) Text() string {
	s := v.String
	for i, f := range v.Format {
		s = strings.Replace(s, fmt.Sprintf("{%d}", i), f, 1)
	}
	return s
}

// Finding is a translation whose match status disagrees with the table.
type Finding struct {
	Index       int
	Translation Translation
	Result      *grammar.Result
}

// Report summarizes a verification run.
type Report struct {
	Checked    int
	Matched    int
	Missed     []Finding // searchable, but no variant matched
	Unexpected []Finding // matched, but not searchable
}

// Decode reads a translation table.
func Decode(r io.Reader) ([]Translation, error) {
	var out []Translation
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode translations: %w", err)
	}
	return out, nil
}

// LoadFile reads a translation table from disk.
func LoadFile(path string) ([]Translation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Check parses every variant of every translation and compares the outcome
// with the translation's trade stats.
func Check(p *parse.Parser, translations []Translation, logger *zap.Logger) Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	var rep Report
	for i, tr := range translations {
		rep.Checked++
		var found *grammar.Result
		for _, v := range tr.English {
			if res, ok := p.ParseText(v.Text()); ok {
				found = &res
				break
			}
		}

		searchable := len(tr.TradeStats) > 0
		switch {
		case found != nil && searchable:
			rep.Matched++
		case found == nil && searchable:
			logger.Debug("missed match", zap.Int("index", i), zap.Strings("trade_stats", tr.TradeStats))
			rep.Missed = append(rep.Missed, Finding{Index: i, Translation: tr})
		case found != nil:
			logger.Debug("match not in table", zap.Int("index", i), zap.String("id", found.TemplateID))
			rep.Unexpected = append(rep.Unexpected, Finding{Index: i, Translation: tr, Result: found})
		}
	}
	logger.Info("verification complete",
		zap.Int("checked", rep.Checked),
		zap.Int("matched", rep.Matched),
		zap.Int("missed", len(rep.Missed)),
		zap.Int("unexpected", len(rep.Unexpected)))
	return rep
}
