package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/modgrammar/pkg/modgrammar/catalog"
	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/shape"
)

func build(t *testing.T, groups ...catalog.TemplateGroup) *Parser {
	t.Helper()
	return New(grammar.NewBuilder().Build(groups))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"12%", "increased", "critical"}, Tokenize("  12% Increased\tCRITICAL \n"))
	assert.Empty(t, Tokenize("   "))
}

func TestParsePercentageTemplate(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Label:   "Critical",
		Entries: []catalog.StatTemplate{{ID: "crit_1", Text: "#% increased Critical Strike Chance"}},
	})

	res, ok := p.Parse([]string{"12%", "increased", "critical", "strike", "chance"})
	require.True(t, ok)
	assert.Equal(t, grammar.Result{TemplateID: "crit_1", Text: "#% increased Critical Strike Chance"}, res)

	res, ok = p.ParseText("Critical 30% increased Critical Strike Chance")
	require.True(t, ok)
	assert.Equal(t, "crit_1", res.TemplateID)

	_, ok = p.ParseText("12 increased critical strike chance")
	assert.False(t, ok, "bare number is not a percentage")

	_, ok = p.ParseText("12% increased critical strike")
	assert.False(t, ok, "partial input must not match")

	_, ok = p.ParseText("12% increased critical strike chance per level")
	assert.False(t, ok, "trailing tokens must not match")
}

func TestParseLiteralOnlyTemplates(t *testing.T) {
	texts := []string{
		"Cannot be Frozen",
		"Your Hits can't be Evaded",
		"Cannot be Frozen while Moving",
	}
	var entries []catalog.StatTemplate
	for i, text := range texts {
		entries = append(entries, catalog.StatTemplate{ID: string(rune('a' + i)), Text: text})
	}
	p := build(t, catalog.TemplateGroup{Label: "Explicit", Entries: entries})

	for i, text := range texts {
		res, ok := p.Parse(Tokenize(text))
		require.True(t, ok, text)
		assert.Equal(t, entries[i].ID, res.TemplateID)
		assert.Equal(t, text, res.Text)
	}
}

func TestParseEnumeratedOptions(t *testing.T) {
	options := []catalog.Option{
		{ID: "1", Text: "Fire"},
		{ID: "2", Text: "Cold"},
		{ID: "3", Text: "Lightning"},
	}
	p := build(t, catalog.TemplateGroup{
		Label: "Resist",
		Entries: []catalog.StatTemplate{{
			ID:     "res",
			Text:   "#% to Fire Resistance",
			Option: &catalog.OptionSet{Options: []catalog.Option{{ID: "fire", Text: "Fire"}}},
		}, {
			ID:     "conv",
			Text:   "Converts # Damage",
			Option: &catalog.OptionSet{Options: options},
		}},
	})

	for _, opt := range options {
		res, ok := p.ParseText("Converts " + opt.Text + " Damage")
		require.True(t, ok, opt.Text)
		assert.Equal(t, "conv", res.TemplateID)
		require.NotNil(t, res.Option)
		assert.Equal(t, opt, *res.Option)
	}

	res, ok := p.ParseText("Fire% to Fire Resistance")
	require.True(t, ok)
	assert.Equal(t, catalog.OptionID("fire"), res.Option.ID)

	res, ok = p.ParseText("Resist Fire% to Fire Resistance")
	require.True(t, ok, "label-prefixed variant")
	assert.Equal(t, "res", res.TemplateID)

	_, ok = p.ParseText("Converts Chaos Damage")
	assert.False(t, ok, "values outside the option set do not match")
}

func TestParseLowestRankWins(t *testing.T) {
	groups := []catalog.TemplateGroup{{
		Label: "Explicit",
		Entries: []catalog.StatTemplate{
			{ID: "generic", Text: "# to Strength"},
			{ID: "signed", Text: "+# to Strength"},
		},
	}, {
		Label: "Implicit",
		Entries: []catalog.StatTemplate{
			{ID: "implicit", Text: "+# to Strength"},
		},
	}}

	core, logs := observer.New(zapcore.DebugLevel)
	p := New(grammar.NewBuilder().Build(groups), WithLogger(zap.New(core)))

	tokens := Tokenize("+10 to Strength")
	rules := p.Derivations(tokens)
	require.Len(t, rules, 3)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Rank, rules[i].Rank)
	}

	for i := 0; i < 5; i++ {
		res, ok := p.Parse(tokens)
		require.True(t, ok)
		assert.Equal(t, "generic", res.TemplateID)
	}
	assert.Equal(t, 5, logs.FilterMessage("ambiguous match").Len())

	res, ok := p.ParseText("Implicit +10 to Strength")
	require.True(t, ok)
	assert.Equal(t, "implicit", res.TemplateID)

	again := New(grammar.NewBuilder().Build(groups))
	res, ok = again.Parse(tokens)
	require.True(t, ok)
	assert.Equal(t, "generic", res.TemplateID)
}

func TestParseMultiLineFallback(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Label: "Explicit",
		Entries: []catalog.StatTemplate{
			{ID: "ms", Text: "#% increased Movement Speed"},
			{ID: "as", Text: "#% increased Attack Speed"},
		},
	})

	res, ok := p.ParseText("Grants a Blessing\n10% increased Movement Speed")
	require.True(t, ok)
	assert.Equal(t, "ms", res.TemplateID)

	res, ok = p.ParseText("5% increased Attack Speed\n10% increased Movement Speed")
	require.True(t, ok)
	assert.Equal(t, "as", res.TemplateID, "first matching line wins")

	_, ok = p.ParseText("nothing\nhere")
	assert.False(t, ok)
}

func TestParseWholeStringBeforeLines(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Label: "Explicit",
		Entries: []catalog.StatTemplate{
			{ID: "line", Text: "#% increased Movement Speed"},
			{ID: "whole", Text: "Blessed #% increased Movement Speed"},
		},
	})

	res, ok := p.ParseText("Blessed\n10% increased Movement Speed")
	require.True(t, ok)
	assert.Equal(t, "whole", res.TemplateID)
}

func TestParseUnreachableTemplate(t *testing.T) {
	b := grammar.NewBuilder()
	p := New(b.Build([]catalog.TemplateGroup{{
		Label:   "Explicit",
		Entries: []catalog.StatTemplate{{ID: "odd", Text: "Adds [#] Things"}},
	}}))
	require.Len(t, b.Diagnostics(), 1)

	for _, in := range []string{"adds [#] things", "adds [5] things", "adds 5 things", "explicit adds 5 things"} {
		_, ok := p.ParseText(in)
		assert.False(t, ok, in)
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Entries: []catalog.StatTemplate{{ID: "a", Text: "#"}},
	})
	_, ok := p.Parse(nil)
	assert.False(t, ok)
	_, ok = p.ParseText("")
	assert.False(t, ok)
}

func TestParseResultWithoutText(t *testing.T) {
	g, err := grammar.NewGrammar("mod", []grammar.Rule{
		{Name: "mod", Symbols: []grammar.Symbol{grammar.Lit("bare")}},
		{Name: "mod", Symbols: []grammar.Symbol{grammar.Lit("bare")}, Result: &grammar.Result{TemplateID: "b", Text: "Bare"}},
	})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	p := New(g, WithLogger(zap.New(core)))

	_, ok := p.Parse([]string{"bare"})
	assert.False(t, ok, "lowest rank has no text, treated as no match")
	assert.Equal(t, 1, logs.FilterMessage("unexpected result without text").Len())
}

func TestParseRecursiveGrammar(t *testing.T) {
	// "#" accepts one or more words, as the item mod grammar once did.
	g, err := grammar.NewGrammar("mod", []grammar.Rule{
		{Name: "mod", Symbols: []grammar.Symbol{grammar.Lit("grants"), grammar.RefTo("#")},
			Result: &grammar.Result{TemplateID: "grants", Text: "Grants #"}},
		{Name: "#", Symbols: []grammar.Symbol{grammar.Shape(shape.PlainWord)}},
		{Name: "#", Symbols: []grammar.Symbol{grammar.RefTo("#"), grammar.Shape(shape.PlainWord)}},
	})
	require.NoError(t, err)
	p := New(g)

	for _, in := range []string{"grants level", "grants level 20 summon skeletons"} {
		res, ok := p.ParseText(in)
		require.True(t, ok, in)
		assert.Equal(t, "grants", res.TemplateID)
	}
	_, ok := p.ParseText("grants")
	assert.False(t, ok)
}

func TestParseEmptyOptionListUsesPlaceholders(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Label:   "Explicit",
		Entries: []catalog.StatTemplate{{ID: "str", Text: "+# to Strength", Option: &catalog.OptionSet{}}},
	})

	res, ok := p.ParseText("+10 to Strength")
	require.True(t, ok)
	assert.Equal(t, "str", res.TemplateID)
	assert.Nil(t, res.Option)
}

func TestParseDuplicateOptionKeepsOthers(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Entries: []catalog.StatTemplate{{
			ID:   "allocates",
			Text: "Allocates #",
			Option: &catalog.OptionSet{Options: []catalog.Option{
				{ID: "1", Text: "Iron Will"},
				{ID: "2", Text: "Eldritch Battery"},
				{ID: "3", Text: "Iron Will"},
			}},
		}},
	})

	res, ok := p.ParseText("Allocates Eldritch Battery")
	require.True(t, ok)
	assert.Equal(t, catalog.OptionID("2"), res.Option.ID)

	res, ok = p.ParseText("Allocates Iron Will")
	require.True(t, ok)
	assert.Equal(t, catalog.OptionID("1"), res.Option.ID)
}

func TestParseResultIsACopy(t *testing.T) {
	p := build(t, catalog.TemplateGroup{
		Entries: []catalog.StatTemplate{{
			ID:     "allocates",
			Text:   "Allocates #",
			Option: &catalog.OptionSet{Options: []catalog.Option{{ID: "1", Text: "Iron Will"}}},
		}},
	})

	res, ok := p.ParseText("Allocates Iron Will")
	require.True(t, ok)
	res.Option.Text = "changed"
	res.Option.ID = "9"

	again, ok := p.ParseText("Allocates Iron Will")
	require.True(t, ok)
	assert.Equal(t, catalog.Option{ID: "1", Text: "Iron Will"}, *again.Option)
	assert.Equal(t, "Iron Will", p.Grammar().Rules(grammar.Start)[0].Result.Option.Text)
}

func TestParseLeftRecursiveStart(t *testing.T) {
	g, err := grammar.NewGrammar("s", []grammar.Rule{
		{Name: "s", Symbols: []grammar.Symbol{grammar.RefTo("s"), grammar.Lit("x")},
			Result: &grammar.Result{TemplateID: "more", Text: "s x"}},
		{Name: "s", Symbols: []grammar.Symbol{grammar.Lit("a")},
			Result: &grammar.Result{TemplateID: "one", Text: "a"}},
	})
	require.NoError(t, err)
	p := New(g)

	res, ok := p.ParseText("a x x")
	require.True(t, ok)
	assert.Equal(t, "more", res.TemplateID)

	res, ok = p.ParseText("a")
	require.True(t, ok)
	assert.Equal(t, "one", res.TemplateID)

	_, ok = p.ParseText("x a")
	assert.False(t, ok)
}
