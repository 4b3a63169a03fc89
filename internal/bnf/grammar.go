package bnf

import (
	"fmt"

	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

// AlternativeKind tags a ProductionAlternative as a single unit or a
// sequence of units.
type AlternativeKind int

const (
	AltSingle AlternativeKind = iota
	AltSequence
)

// ProductionAlternative is one `|`-separated right-hand side of a rule.
// A Single alternative wraps exactly one unit; a Sequence wraps one or
// more, in order. Flags is reserved for future use
// and is never populated by the current parser.
type ProductionAlternative struct {
	LHS      string
	Kind     AlternativeKind
	Unit     ProductionUnit
	Units    []ProductionUnit
	Flags    map[string]bool
}

// AllUnits returns the alternative's units regardless of Kind.
func (a ProductionAlternative) AllUnits() []ProductionUnit {
	if a.Kind == AltSingle {
		return []ProductionUnit{a.Unit}
	}
	return a.Units
}

// ProductionRule is a left-hand side plus its ordered alternatives.
type ProductionRule struct {
	LHS          string
	Alternatives []ProductionAlternative
}

// Grammar is an ordered list of rules, indexed by LHS for O(1) lookup.
type Grammar struct {
	Rules []ProductionRule
	index map[string]int
}

// StartSymbol is the name of the grammar's single mandatory start rule.
const StartSymbol = "instruction"

// NewGrammar builds a Grammar from an ordered rule list and indexes it.
// It does not validate; call Verify for that.
func NewGrammar(rules []ProductionRule) *Grammar {
	g := &Grammar{Rules: rules, index: make(map[string]int, len(rules))}
	for i, r := range rules {
		if _, exists := g.index[r.LHS]; !exists {
			g.index[r.LHS] = i
		}
	}
	return g
}

// Rule looks up a rule by LHS name (without angle brackets). ok is false if
// no such rule is defined.
func (g *Grammar) Rule(name string) (ProductionRule, bool) {
	i, ok := g.index[name]
	if !ok {
		return ProductionRule{}, false
	}
	return g.Rules[i], true
}

// GrammarError reports a structural grammar violation: a non-non-terminal
// LHS, a missing start symbol, an unresolved reference, a duplicate LHS, or
// an empty sequence.
type GrammarError struct {
	err cerr.Error
}

func newGrammarError(format string, args ...any) GrammarError {
	return GrammarError{err: cerr.New(fmt.Sprintf(format, args...), cerr.ErrGrammar)}
}

func (e GrammarError) Error() string {
	return e.err.Error()
}

func (e GrammarError) Unwrap() error {
	return e.err
}

func errNotNonTerminal(pos Position) GrammarError {
	return newGrammarError("rule left-hand side at %s is not a non-terminal", pos)
}

func errMissingStartSymbol(got string) GrammarError {
	return newGrammarError("grammar must begin with rule <%s>, got <%s>", StartSymbol, got)
}

// Verify checks a built Grammar against its structural invariants:
// every NonTerminal/Optional/Repetition reference resolves to a defined
// rule, no duplicate LHS, no empty Sequence, and exactly one rule named
// <instruction> exists and is first.
func Verify(g *Grammar) error {
	if len(g.Rules) == 0 {
		return newGrammarError("grammar has no rules")
	}
	if g.Rules[0].LHS != StartSymbol {
		return errMissingStartSymbol(g.Rules[0].LHS)
	}

	seen := make(map[string]int, len(g.Rules))
	for _, r := range g.Rules {
		seen[r.LHS]++
	}
	for name, count := range seen {
		if count > 1 {
			return newGrammarError("duplicate rule <%s>", name)
		}
	}

	for _, r := range g.Rules {
		for _, alt := range r.Alternatives {
			units := alt.AllUnits()
			if alt.Kind == AltSequence && len(units) == 0 {
				return newGrammarError("empty sequence alternative in rule <%s>", r.LHS)
			}
			for _, u := range units {
				if !u.IsReference() {
					continue
				}
				if _, ok := g.Rule(u.Name); !ok {
					return newGrammarError("rule <%s> references undefined <%s> at %s", r.LHS, u.Name, u.Pos)
				}
			}
		}
	}

	return nil
}
