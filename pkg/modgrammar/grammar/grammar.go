// Package grammar holds the rule table compiled from the stat template catalog.
package grammar

import (
	"fmt"

	"github.com/cognicore/modgrammar/pkg/modgrammar/catalog"
	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
	"github.com/cognicore/modgrammar/pkg/modgrammar/shape"
)

// Start is the start symbol of every compiled catalog grammar.
const Start = "mod"

// SymbolKind tags a right-hand side symbol.
type SymbolKind int

const (
	// Literal matches one token by exact equality.
	Literal SymbolKind = iota
	// Ref expands to the rules registered under Name.
	Ref
	// Terminal matches one token by its shape class.
	Terminal
)

// Symbol is one element of a rule's right-hand side.
type Symbol struct {
	Kind  SymbolKind
	Text  string      // literal token or referenced rule name
	Class shape.Class // Terminal only
}

// Lit returns a literal symbol.
func Lit(text string) Symbol { return Symbol{Kind: Literal, Text: text} }

// RefTo returns a reference to the rules named name.
func RefTo(name string) Symbol { return Symbol{Kind: Ref, Text: name} }

// Shape returns a terminal accepting any token of class c.
func Shape(c shape.Class) Symbol { return Symbol{Kind: Terminal, Class: c} }

// Match reports whether a Literal or Terminal symbol accepts token.
func (s Symbol) Match(token string) bool {
	switch s.Kind {
	case Literal:
		return s.Text == token
	case Terminal:
		return shape.Matches(s.Class, token)
	}
	return false
}

func (s Symbol) String() string {
	switch s.Kind {
	case Literal:
		return fmt.Sprintf("%q", s.Text)
	case Ref:
		return s.Text
	default:
		return "<" + string(s.Class) + ">"
	}
}

// Result is what a start rule produces when it derives the input.
type Result struct {
	TemplateID string          `json:"id"`
	Text       string          `json:"text"`
	Option     *catalog.Option `json:"option,omitempty"`
}

// Rule is one production. Rank is its registration order across the whole
// grammar and is the tie-break between ambiguous derivations.
type Rule struct {
	Name    string
	Symbols []Symbol
	Rank    int
	Result  *Result
}

// Grammar is an immutable rule table. It is safe for concurrent readers.
type Grammar struct {
	start  string
	rules  []Rule
	byName map[string][]int
	known  map[string]struct{}

	// start rules headed by a literal, by that literal; the rest in open
	byFirst map[string][]int
	open    []int
}

func newGrammar(start string) *Grammar {
	return &Grammar{
		start:   start,
		byName:  make(map[string][]int),
		known:   make(map[string]struct{}),
		byFirst: make(map[string][]int),
	}
}

func (g *Grammar) add(r Rule) {
	r.Rank = len(g.rules)
	g.rules = append(g.rules, r)
	g.byName[r.Name] = append(g.byName[r.Name], r.Rank)
	if r.Name != g.start {
		return
	}
	if len(r.Symbols) > 0 && r.Symbols[0].Kind == Literal {
		first := r.Symbols[0].Text
		g.byFirst[first] = append(g.byFirst[first], r.Rank)
	} else {
		g.open = append(g.open, r.Rank)
	}
}

// NewGrammar builds a grammar from an explicit rule list. Ranks follow slice
// order and every rule name other than start is recorded as known.
func NewGrammar(start string, rules []Rule) (*Grammar, error) {
	g := newGrammar(start)
	for _, r := range rules {
		if len(r.Symbols) == 0 {
			return nil, fmt.Errorf("%w: rule %q has an empty right-hand side", internalerr.ErrInvalidInput, r.Name)
		}
		g.add(r)
		if r.Name != start {
			g.known[r.Name] = struct{}{}
		}
	}
	return g, nil
}

// Start returns the start symbol.
func (g *Grammar) Start() string { return g.start }

// Len returns the total number of rules.
func (g *Grammar) Len() int { return len(g.rules) }

// Rule returns the rule with the given rank. Its Symbols and Result are
// shared with the grammar and must not be modified.
func (g *Grammar) Rule(rank int) Rule { return g.rules[rank] }

// Ranks returns the ranks of the rules named name in registration order.
// The returned slice must not be modified.
func (g *Grammar) Ranks(name string) []int { return g.byName[name] }

// Rules returns the rules named name in registration order.
func (g *Grammar) Rules(name string) []Rule {
	ranks := g.byName[name]
	out := make([]Rule, len(ranks))
	for i, r := range ranks {
		out[i] = g.rules[r]
	}
	return out
}

// StartRanks returns the start rules that can derive input beginning with
// token: those headed by that literal, and those headed by a reference or a
// shape. Both slices are in rank order and must not be modified.
func (g *Grammar) StartRanks(token string) (literal, open []int) {
	return g.byFirst[token], g.open
}

// Known reports whether name is a registered placeholder class.
func (g *Grammar) Known(name string) bool {
	_, ok := g.known[name]
	return ok
}
