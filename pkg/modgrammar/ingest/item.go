package ingest

import (
	"fmt"
	"strings"

	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
)

// FrameUnique is the frame type the game uses for unique items.
const FrameUnique = 3

// Source names one modifier list on an item.
type Source string

const (
	Implicit  Source = "implicit"
	Explicit  Source = "explicit"
	Enchant   Source = "enchant"
	Crafted   Source = "crafted"
	Fractured Source = "fractured"
)

// ParseSource validates a source name from configuration.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case Implicit, Explicit, Enchant, Crafted, Fractured:
		return src, nil
	}
	return "", fmt.Errorf("%w: unknown modifier source %q", internalerr.ErrInvalidInput, s)
}

// Item is one equipped item as reported by the character API.
type Item struct {
	Name          string   `json:"name"`
	TypeLine      string   `json:"typeLine"`
	FrameType     int      `json:"frameType"`
	Corrupted     bool     `json:"corrupted"`
	ImplicitMods  []string `json:"implicitMods,omitempty"`
	ExplicitMods  []string `json:"explicitMods,omitempty"`
	EnchantMods   []string `json:"enchantMods,omitempty"`
	CraftedMods   []string `json:"craftedMods,omitempty"`
	FracturedMods []string `json:"fracturedMods,omitempty"`
}

// CatalogName is the name used in group keys. Items without a unique name
// fall back to their base type.
func (it Item) CatalogName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.TypeLine
}

// Mods returns the raw modifier strings for one source.
func (it Item) Mods(src Source) []string {
	switch src {
	case Implicit:
		return it.ImplicitMods
	case Explicit:
		return it.ExplicitMods
	case Enchant:
		return it.EnchantMods
	case Crafted:
		return it.CraftedMods
	case Fractured:
		return it.FracturedMods
	}
	return nil
}

// Character is the saved response of one items or passives request.
type Character struct {
	Items []Item `json:"items"`
}
