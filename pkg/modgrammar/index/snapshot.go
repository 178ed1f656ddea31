package index

import (
	"sort"
	"strings"

	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/store"
)

// KeyFor builds the group key for an item and its matched modifiers, in the
// order they appear on the item.
func KeyFor(item string, mods []grammar.Result) store.GroupKey {
	texts := make([]string, len(mods))
	for i, m := range mods {
		texts[i] = m.Text
	}
	return store.GroupKey{Item: item, Stats: strings.Join(texts, ", ")}
}

// Group is one aggregated item/modifier combination.
type Group struct {
	Key    store.GroupKey
	Builds int
	Mods   []grammar.Result
	Prior  *store.Stats

	first int // lowest item ordinal seen, for stable tie order
}

// FirstSeen returns the ordinal of the first item that mapped to the group.
func (g Group) FirstSeen() int { return g.first }

// Tally accumulates observations from one worker. It is not safe for
// concurrent use; each worker owns its own and they are merged afterwards.
type Tally struct {
	groups map[store.GroupKey]*Group
	items  int
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{groups: make(map[store.GroupKey]*Group)}
}

// Observe counts one item instance whose matched modifiers are mods.
// ordinal is the item's position in the input.
func (t *Tally) Observe(ordinal int, item string, mods []grammar.Result) {
	if len(mods) == 0 {
		return
	}
	t.items++
	key := KeyFor(item, mods)
	g, ok := t.groups[key]
	if !ok {
		g = &Group{Key: key, Mods: append([]grammar.Result(nil), mods...), first: ordinal}
		t.groups[key] = g
	}
	g.Builds++
	if ordinal < g.first {
		g.first = ordinal
		g.Mods = append([]grammar.Result(nil), mods...)
	}
}

// Items returns the number of matched items observed.
func (t *Tally) Items() int { return t.items }

// Snapshot is an immutable set of groups. Merge and Attach return new
// snapshots and leave the receiver untouched.
type Snapshot struct {
	groups map[store.GroupKey]Group
	items  int
}

// Len returns the number of groups.
func (s Snapshot) Len() int { return len(s.groups) }

// Items returns the number of matched items folded into the snapshot.
func (s Snapshot) Items() int { return s.items }

// Get returns the group for key.
func (s Snapshot) Get(key store.GroupKey) (Group, bool) {
	g, ok := s.groups[key]
	return g, ok
}

// Merge folds a tally into a copy of s. Counts add, first-seen keeps the
// lowest ordinal, and prior stats already attached are kept.
func (s Snapshot) Merge(t *Tally) Snapshot {
	out := Snapshot{
		groups: make(map[store.GroupKey]Group, len(s.groups)+len(t.groups)),
		items:  s.items + t.items,
	}
	for k, g := range s.groups {
		out.groups[k] = g
	}
	for k, d := range t.groups {
		g, ok := out.groups[k]
		if !ok {
			out.groups[k] = Group{Key: k, Builds: d.Builds, Mods: d.Mods, first: d.first}
			continue
		}
		g.Builds += d.Builds
		if d.first < g.first {
			g.first = d.first
			g.Mods = d.Mods
		}
		out.groups[k] = g
	}
	return out
}

// Prior looks up previously computed market statistics for a group.
type Prior interface {
	Lookup(key store.GroupKey) (store.Stats, bool)
}

// PriorMap is an in-memory Prior.
type PriorMap map[store.GroupKey]store.Stats

// Lookup implements Prior.
func (m PriorMap) Lookup(key store.GroupKey) (store.Stats, bool) {
	st, ok := m[key]
	return st, ok
}

// Attach returns a copy of s with prior stats attached to every group that
// has them. Builds counts are never changed.
func (s Snapshot) Attach(prior Prior) Snapshot {
	out := Snapshot{groups: make(map[store.GroupKey]Group, len(s.groups)), items: s.items}
	for k, g := range s.groups {
		if prior != nil {
			if st, ok := prior.Lookup(k); ok {
				c := st.Clone()
				g.Prior = &c
			}
		}
		out.groups[k] = g
	}
	return out
}

// Ranked returns the groups by builds descending, ties in first-seen order.
func (s Snapshot) Ranked() []Group {
	out := make([]Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Builds != out[j].Builds {
			return out[i].Builds > out[j].Builds
		}
		if out[i].first != out[j].first {
			return out[i].first < out[j].first
		}
		// Only reachable when merging tallies from unrelated inputs.
		if out[i].Key.Item != out[j].Key.Item {
			return out[i].Key.Item < out[j].Key.Item
		}
		return out[i].Key.Stats < out[j].Key.Stats
	})
	return out
}

// ByItem returns the groups nested by item name then joined stats text.
func (s Snapshot) ByItem() map[string]map[string]Group {
	out := make(map[string]map[string]Group)
	for k, g := range s.groups {
		m, ok := out[k.Item]
		if !ok {
			m = make(map[string]Group)
			out[k.Item] = m
		}
		m[k.Stats] = g
	}
	return out
}

// Records converts the ranked groups for persistence.
func (s Snapshot) Records() []store.GroupRecord {
	ranked := s.Ranked()
	out := make([]store.GroupRecord, len(ranked))
	for i, g := range ranked {
		mods := make([]store.ModRef, len(g.Mods))
		for j, m := range g.Mods {
			mods[j] = store.ModRef{Text: m.Text, TemplateID: m.TemplateID}
			if m.Option != nil {
				mods[j].OptionID = string(m.Option.ID)
				mods[j].OptionText = m.Option.Text
			}
		}
		out[i] = store.GroupRecord{Key: g.Key, Builds: g.Builds, Mods: mods}
	}
	return out
}

// Chain returns a Prior that consults each non-nil prior in order.
func Chain(priors ...Prior) Prior {
	var out chain
	for _, p := range priors {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

type chain []Prior

func (c chain) Lookup(key store.GroupKey) (store.Stats, bool) {
	for _, p := range c {
		if st, ok := p.Lookup(key); ok {
			return st, true
		}
	}
	return store.Stats{}, false
}
