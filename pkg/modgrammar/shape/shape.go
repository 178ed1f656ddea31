// Package shape classifies modifier tokens by their punctuation pattern so a
// template placeholder can accept any numeric-looking token of the right form.
package shape

import "strings"

// Class names a token shape. The value is the placeholder format a template
// author writes for it, which is also the grammar rule name.
type Class string

const (
	PlainWord        Class = "#"
	SignedNumber     Class = "+#"
	Percentage       Class = "#%"
	SignedPercentage Class = "+#%"
	OpenParen        Class = "(#"
	CloseParen       Class = "#)"
	ParenEmpty       Class = "(#)"
	Multiplier       Class = "#x"
	ParenMultiplier  Class = "(×#)"
)

// All lists every class in registration order.
var All = []Class{
	PlainWord,
	SignedNumber,
	Percentage,
	SignedPercentage,
	OpenParen,
	CloseParen,
	ParenEmpty,
	Multiplier,
	ParenMultiplier,
}

// Set is a bitmask of classes.
type Set uint16

func bit(c Class) Set {
	for i, k := range All {
		if k == c {
			return 1 << i
		}
	}
	return 0
}

// Has reports whether c is in the set.
func (s Set) Has(c Class) bool {
	b := bit(c)
	return b != 0 && s&b != 0
}

// Classes returns the members of s in registration order.
func (s Set) Classes() []Class {
	var out []Class
	for i, c := range All {
		if s&(1<<i) != 0 {
			out = append(out, c)
		}
	}
	return out
}

// Known reports whether name is one of the nine shape classes.
func Known(name string) bool {
	return bit(Class(name)) != 0
}

// Matches applies the test for a single class. Unknown classes match nothing.
func Matches(c Class, token string) bool {
	switch c {
	case PlainWord:
		return true
	case SignedNumber:
		return strings.HasPrefix(token, "+")
	case Percentage:
		return strings.HasSuffix(token, "%")
	case SignedPercentage:
		return strings.HasPrefix(token, "+") && strings.HasSuffix(token, "%")
	case OpenParen:
		return strings.HasPrefix(token, "(")
	case CloseParen:
		return strings.HasSuffix(token, ")")
	case ParenEmpty:
		return strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")")
	case Multiplier:
		return strings.HasSuffix(token, "x")
	case ParenMultiplier:
		return strings.HasPrefix(token, "(×") && strings.HasSuffix(token, ")")
	}
	return false
}

// Classify returns every class the token satisfies. PlainWord is always set.
func Classify(token string) Set {
	var s Set
	for i, c := range All {
		if Matches(c, token) {
			s |= 1 << i
		}
	}
	return s
}
