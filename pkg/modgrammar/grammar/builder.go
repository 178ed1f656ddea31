package grammar

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/pkg/modgrammar/catalog"
	"github.com/cognicore/modgrammar/pkg/modgrammar/internalerr"
	"github.com/cognicore/modgrammar/pkg/modgrammar/shape"
)

// DiagnosticKind classifies a build-time problem.
type DiagnosticKind string

const (
	UnmatchedFormat   DiagnosticKind = "unmatched_format"
	MalformedTemplate DiagnosticKind = "malformed_template"
	DuplicateOption   DiagnosticKind = "duplicate_option"
)

// Diagnostic records a template the builder could not fully compile.
type Diagnostic struct {
	Kind       DiagnosticKind
	TemplateID string
	Label      string
	Tokens     []string        // unknown placeholder tokens, for UnmatchedFormat
	Err        error           // for MalformedTemplate
	Option     *catalog.Option // skipped option, if the problem is one option
}

// Builder compiles a template catalog into a Grammar.
type Builder struct {
	logger *zap.Logger
	diags  []Diagnostic
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Diagnostics returns the problems found by the last Build.
func (b *Builder) Diagnostics() []Diagnostic {
	return b.diags
}

// Build compiles the catalog. Generic shape rules come first, then every
// template in catalog order; an enumerated template registers each option's
// plain and label-prefixed rules back to back. Bad entries are skipped, and of
// several options with the same text only the first is registered.
func (b *Builder) Build(groups []catalog.TemplateGroup) *Grammar {
	b.diags = nil
	g := newGrammar(Start)

	for _, c := range shape.All {
		g.add(Rule{Name: string(c), Symbols: []Symbol{Shape(c)}})
		g.known[string(c)] = struct{}{}
	}

	for _, group := range groups {
		label := literals(group.Label)
		for _, tmpl := range group.Entries {
			if err := tmpl.Validate(); err != nil {
				b.logger.Warn("skipping malformed template",
					zap.String("label", group.Label),
					zap.String("id", tmpl.ID),
					zap.Error(err))
				b.diags = append(b.diags, Diagnostic{
					Kind:       MalformedTemplate,
					TemplateID: tmpl.ID,
					Label:      group.Label,
					Err:        err,
				})
				continue
			}

			if tmpl.Enumerated() {
				seen := make(map[string]struct{}, len(tmpl.Option.Options))
				for _, opt := range tmpl.Option.Options {
					norm := strings.ToLower(opt.Text)
					if _, dup := seen[norm]; dup {
						b.logger.Warn("skipping duplicate option",
							zap.String("label", group.Label),
							zap.String("id", tmpl.ID),
							zap.String("option", opt.Text))
						b.diags = append(b.diags, Diagnostic{
							Kind:       DuplicateOption,
							TemplateID: tmpl.ID,
							Label:      group.Label,
							Option:     &opt,
						})
						continue
					}
					seen[norm] = struct{}{}
					symbols := literals(strings.ReplaceAll(tmpl.Text, catalog.Placeholder, opt.Text))
					if len(symbols) == 0 {
						err := fmt.Errorf("%w: %s: option %s renders no text", internalerr.ErrMalformedTemplate, tmpl.ID, opt.ID)
						b.logger.Warn("skipping malformed option",
							zap.String("label", group.Label),
							zap.String("id", tmpl.ID),
							zap.Error(err))
						b.diags = append(b.diags, Diagnostic{
							Kind:       MalformedTemplate,
							TemplateID: tmpl.ID,
							Label:      group.Label,
							Err:        err,
							Option:     &opt,
						})
						continue
					}
					res := &Result{TemplateID: tmpl.ID, Text: tmpl.Text, Option: &opt}
					addVariants(g, label, symbols, res)
				}
				continue
			}

			symbols, unknown := placeholders(tmpl.Text)
			if len(unknown) > 0 {
				b.logger.Warn("unmatched format string",
					zap.String("label", group.Label),
					zap.String("id", tmpl.ID),
					zap.Strings("formats", unknown))
				b.diags = append(b.diags, Diagnostic{
					Kind:       UnmatchedFormat,
					TemplateID: tmpl.ID,
					Label:      group.Label,
					Tokens:     unknown,
				})
			}
			addVariants(g, label, symbols, &Result{TemplateID: tmpl.ID, Text: tmpl.Text})
		}
	}

	b.logger.Debug("grammar built",
		zap.Int("rules", g.Len()),
		zap.Int("diagnostics", len(b.diags)))
	return g
}

func addVariants(g *Grammar, label, symbols []Symbol, res *Result) {
	g.add(Rule{Name: Start, Symbols: symbols, Result: res})
	if len(label) == 0 {
		return
	}
	prefixed := make([]Symbol, 0, len(label)+len(symbols))
	prefixed = append(prefixed, label...)
	prefixed = append(prefixed, symbols...)
	g.add(Rule{Name: Start, Symbols: prefixed, Result: res})
}

// literals lowercases text and turns each word into a literal symbol.
func literals(text string) []Symbol {
	words := strings.Fields(strings.ToLower(text))
	out := make([]Symbol, len(words))
	for i, w := range words {
		out[i] = Lit(w)
	}
	return out
}

// placeholders maps placeholder-bearing tokens to references by their written
// format and lowercases the rest. Formats that are not a shape class are
// returned as unknown and still referenced, so the rule can never match.
func placeholders(text string) ([]Symbol, []string) {
	words := strings.Fields(text)
	out := make([]Symbol, len(words))
	var unknown []string
	for i, w := range words {
		if !strings.Contains(w, catalog.Placeholder) {
			out[i] = Lit(strings.ToLower(w))
			continue
		}
		out[i] = RefTo(w)
		if !shape.Known(w) {
			unknown = append(unknown, w)
		}
	}
	return out, unknown
}
