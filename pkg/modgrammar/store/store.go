package store

import (
	"context"
	"encoding/json"
	"time"
)

// Store persists index runs and the market statistics attached to groups.
type Store interface {
	Close() error

	// Prior statistics, keyed like the groups they describe
	GetStats(ctx context.Context, key GroupKey) (Stats, bool, error)
	AllStats(ctx context.Context) (map[GroupKey]Stats, error)
	UpsertStats(ctx context.Context, key GroupKey, s Stats) error

	// Ranked catalogs produced by index runs
	SaveRun(ctx context.Context, run Run, groups []GroupRecord) error
	LatestRun(ctx context.Context) (Run, bool, error)
	GetGroups(ctx context.Context, runID string) ([]GroupRecord, error)
}

// GroupKey identifies an item together with the canonical texts of the
// modifiers matched on it, joined with ", " in modifier order.
type GroupKey struct {
	Item  string `json:"item"`
	Stats string `json:"stats"`
}

// Stats is the market summary the pricing pipeline computed for a group.
type Stats struct {
	Average  *float64        `json:"average,omitempty"`
	Prices   []float64       `json:"prices,omitempty"`
	Filtered []float64       `json:"filtered,omitempty"`
	Search   json.RawMessage `json:"search,omitempty"`
}

// ModRef is one matched modifier of a stored group.
type ModRef struct {
	Text       string `json:"text"`
	TemplateID string `json:"id"`
	OptionID   string `json:"option_id,omitempty"`
	OptionText string `json:"option_text,omitempty"`
}

// GroupRecord is a stored group in rank order.
type GroupRecord struct {
	Key    GroupKey
	Builds int
	Mods   []ModRef
}

// Run describes one index run.
type Run struct {
	ID        string
	StartedAt time.Time
	Items     int
	Groups    int
}

// StripSearchResult drops the bulky "result" listing ids from a saved search
// response. Inputs that are not JSON objects are returned unchanged.
func StripSearchResult(search json.RawMessage) json.RawMessage {
	if len(search) == 0 {
		return search
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(search, &obj); err != nil {
		return search
	}
	if _, ok := obj["result"]; !ok {
		return search
	}
	delete(obj, "result")
	out, err := json.Marshal(obj)
	if err != nil {
		return search
	}
	return out
}

// Clone returns a deep copy of s.
func (s Stats) Clone() Stats {
	out := Stats{
		Prices:   append([]float64(nil), s.Prices...),
		Filtered: append([]float64(nil), s.Filtered...),
		Search:   append(json.RawMessage(nil), s.Search...),
	}
	if s.Average != nil {
		avg := *s.Average
		out.Average = &avg
	}
	return out
}
