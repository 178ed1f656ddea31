package index

import (
	"encoding/json"
	"io"

	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
)

// Entry is the JSON form of a group consumed by the pricing pipeline.
type Entry struct {
	Item     string           `json:"item,omitempty"`
	Stats    string           `json:"stats,omitempty"`
	Builds   int              `json:"builds"`
	Mods     []grammar.Result `json:"mods"`
	Average  *float64         `json:"average,omitempty"`
	Prices   []float64        `json:"prices,omitempty"`
	Filtered []float64        `json:"filtered,omitempty"`
	Search   json.RawMessage  `json:"search,omitempty"`
}

func (g Group) entry() Entry {
	e := Entry{Builds: g.Builds, Mods: g.Mods}
	if g.Prior != nil {
		e.Average = g.Prior.Average
		e.Prices = g.Prior.Prices
		e.Filtered = g.Prior.Filtered
		e.Search = g.Prior.Search
	}
	return e
}

// Entries returns the ranked, flattened catalog.
func (s Snapshot) Entries() []Entry {
	ranked := s.Ranked()
	out := make([]Entry, len(ranked))
	for i, g := range ranked {
		e := g.entry()
		e.Item = g.Key.Item
		e.Stats = g.Key.Stats
		out[i] = e
	}
	return out
}

// WriteJSON writes the catalog nested by item then stats text.
func WriteJSON(w io.Writer, s Snapshot) error {
	nested := make(map[string]map[string]Entry)
	for item, groups := range s.ByItem() {
		m := make(map[string]Entry, len(groups))
		for stats, g := range groups {
			m[stats] = g.entry()
		}
		nested[item] = m
	}
	return json.NewEncoder(w).Encode(nested)
}

// WriteRankedJSON writes the ranked, flattened catalog.
func WriteRankedJSON(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Entries())
}
