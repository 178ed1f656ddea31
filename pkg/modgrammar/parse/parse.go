// Package parse matches modifier text against a compiled grammar.
//
// Recognition is an Earley chart over whitespace tokens, so every rule whose
// derivation spans the whole input is found, including rules that share a
// prefix. When several rules derive the input, the one registered first wins.
package parse

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
)

// Tokenize lowercases s and splits it on whitespace.
func Tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// Parser runs a grammar over token sequences. It holds no per-parse state and
// may be shared between goroutines.
type Parser struct {
	g      *grammar.Grammar
	logger *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for no-match and ambiguity traces.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a parser for g.
func New(g *grammar.Grammar, opts ...Option) *Parser {
	p := &Parser{g: g, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the grammar the parser runs.
func (p *Parser) Grammar() *grammar.Grammar { return p.g }

// Derivations returns every start rule that derives exactly tokens, ordered
// by rank. The rules are shared with the grammar and must not be modified.
func (p *Parser) Derivations(tokens []string) []grammar.Rule {
	ranks := recognize(p.g, tokens)
	out := make([]grammar.Rule, len(ranks))
	for i, r := range ranks {
		out[i] = p.g.Rule(r)
	}
	return out
}

// Parse returns the result of the lowest-ranked rule deriving tokens.
func (p *Parser) Parse(tokens []string) (grammar.Result, bool) {
	rules := p.Derivations(tokens)
	if len(rules) == 0 {
		p.logger.Debug("no match", zap.Strings("tokens", tokens))
		return grammar.Result{}, false
	}
	best := rules[0]
	if len(rules) > 1 {
		p.logger.Debug("ambiguous match",
			zap.Strings("tokens", tokens),
			zap.Int("derivations", len(rules)),
			zap.Int("rank", best.Rank))
	}
	if best.Result == nil || best.Result.Text == "" {
		p.logger.Warn("unexpected result without text",
			zap.Strings("tokens", tokens),
			zap.Int("rank", best.Rank),
			zap.String("rule", best.Name))
		return grammar.Result{}, false
	}
	res := *best.Result
	if res.Option != nil {
		opt := *res.Option
		res.Option = &opt
	}
	return res, true
}

// ParseText tokenizes raw and parses it. If the whole string does not match
// and it spans several lines, each line is tried in order and the first match
// is returned.
func (p *Parser) ParseText(raw string) (grammar.Result, bool) {
	if res, ok := p.Parse(Tokenize(raw)); ok {
		return res, true
	}
	if !strings.Contains(raw, "\n") {
		return grammar.Result{}, false
	}
	for _, line := range strings.Split(raw, "\n") {
		if res, ok := p.Parse(Tokenize(line)); ok {
			return res, true
		}
	}
	return grammar.Result{}, false
}

type item struct {
	rank   int // rule
	dot    int
	origin int
}

// state is one Earley set. Items waiting on a nonterminal are indexed by its
// name for completion.
type state struct {
	items   []item
	seen    map[item]struct{}
	waiting map[string][]item
}

func newState() *state {
	return &state{
		seen:    make(map[item]struct{}),
		waiting: make(map[string][]item),
	}
}

func (s *state) add(g *grammar.Grammar, it item) {
	if _, ok := s.seen[it]; ok {
		return
	}
	s.seen[it] = struct{}{}
	s.items = append(s.items, it)
	r := g.Rule(it.rank)
	if it.dot < len(r.Symbols) && r.Symbols[it.dot].Kind == grammar.Ref {
		name := r.Symbols[it.dot].Text
		s.waiting[name] = append(s.waiting[name], it)
	}
}

// recognize returns the ranks of start rules spanning all of tokens, sorted.
// Rules must have non-empty right-hand sides, which both Build and
// NewGrammar guarantee.
func recognize(g *grammar.Grammar, tokens []string) []int {
	n := len(tokens)
	if n == 0 {
		return nil
	}
	chart := make([]*state, n+1)
	for i := range chart {
		chart[i] = newState()
	}
	literal, open := g.StartRanks(tokens[0])
	for _, r := range literal {
		chart[0].add(g, item{rank: r, origin: 0})
	}
	for _, r := range open {
		chart[0].add(g, item{rank: r, origin: 0})
	}

	for i := 0; i <= n; i++ {
		st := chart[i]
		for j := 0; j < len(st.items); j++ {
			it := st.items[j]
			r := g.Rule(it.rank)

			if it.dot == len(r.Symbols) {
				// Without empty rules origin < i, so that set is final.
				for _, w := range chart[it.origin].waiting[r.Name] {
					st.add(g, item{rank: w.rank, dot: w.dot + 1, origin: w.origin})
				}
				continue
			}

			sym := r.Symbols[it.dot]
			if sym.Kind == grammar.Ref {
				for _, q := range g.Ranks(sym.Text) {
					st.add(g, item{rank: q, origin: i})
				}
				continue
			}
			if i < n && sym.Match(tokens[i]) {
				chart[i+1].add(g, item{rank: it.rank, dot: it.dot + 1, origin: it.origin})
			}
		}
	}

	var ranks []int
	seen := make(map[int]struct{})
	for _, it := range chart[n].items {
		r := g.Rule(it.rank)
		if it.origin != 0 || it.dot != len(r.Symbols) || r.Name != g.Start() {
			continue
		}
		if _, dup := seen[it.rank]; dup {
			continue
		}
		seen[it.rank] = struct{}{}
		ranks = append(ranks, it.rank)
	}
	sort.Ints(ranks)
	return ranks
}
