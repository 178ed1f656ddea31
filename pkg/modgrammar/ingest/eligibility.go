package ingest

// Eligibility decides which items and modifier lists are matched.
type Eligibility struct {
	FrameType        int
	RequireCorrupted bool
	Sources          []Source
}

// DefaultEligibility selects the implicit modifiers of corrupted uniques.
func DefaultEligibility() Eligibility {
	return Eligibility{
		FrameType:        FrameUnique,
		RequireCorrupted: true,
		Sources:          []Source{Implicit},
	}
}

// Eligible reports whether the item's modifiers should be matched at all.
func (e Eligibility) Eligible(it Item) bool {
	if it.FrameType != e.FrameType {
		return false
	}
	if e.RequireCorrupted && !it.Corrupted {
		return false
	}
	return len(e.Mods(it)) > 0
}

// Mods returns the raw modifier strings from the configured sources, in
// source order then item order.
func (e Eligibility) Mods(it Item) []string {
	var out []string
	for _, src := range e.Sources {
		out = append(out, it.Mods(src)...)
	}
	return out
}
