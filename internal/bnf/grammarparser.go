package bnf

// GrammarParser consumes the token stream produced by GrammarLexer and
// builds a Grammar:
//
//	rule ::= lhs "::=" alt ( "|" alt )* ";"
//	lhs  ::= "<" ident ">"
//	alt  ::= unit+
//	unit ::= lhs | terminal | "[" lhs "]" | "{" lhs "}"
type GrammarParser struct {
	units []ProductionUnit
	pos   int
}

// NewGrammarParser returns a GrammarParser ready to parse units.
func NewGrammarParser() *GrammarParser {
	return &GrammarParser{}
}

// ParseGrammar lexes and parses src into a verified Grammar.
func ParseGrammar(src string) (*Grammar, error) {
	units, err := NewGrammarLexer().Lex(src)
	if err != nil {
		return nil, err
	}
	p := NewGrammarParser()
	g, err := p.Parse(units)
	if err != nil {
		return nil, err
	}
	if err := Verify(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Parse builds a Grammar from an already-lexed unit stream. It does not
// call Verify; callers that want the full invariant check should use
// ParseGrammar.
func (p *GrammarParser) Parse(units []ProductionUnit) (*Grammar, error) {
	p.units = units
	p.pos = 0

	var rules []ProductionRule
	for p.peek().Kind != UnitEndOfFile {
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return NewGrammar(rules), nil
}

func (p *GrammarParser) peek() ProductionUnit {
	return p.units[p.pos]
}

func (p *GrammarParser) advance() ProductionUnit {
	u := p.units[p.pos]
	if u.Kind != UnitEndOfFile {
		p.pos++
	}
	return u
}

func (p *GrammarParser) parseRule() (ProductionRule, error) {
	lhsTok := p.peek()
	if lhsTok.Kind != UnitNonTerminal {
		return ProductionRule{}, errNotNonTerminal(lhsTok.Pos)
	}
	p.advance()
	lhs := lhsTok.Name

	assign := p.peek()
	if assign.Kind != UnitPunctuation || assign.Literal != "::=" {
		return ProductionRule{}, newGrammarError("expected '::=' after <%s> at %s", lhs, assign.Pos)
	}
	p.advance()

	var alts []ProductionAlternative
	for {
		alt, err := p.parseAlternative(lhs)
		if err != nil {
			return ProductionRule{}, err
		}
		alts = append(alts, alt)

		next := p.peek()
		if next.Kind == UnitPunctuation && next.Literal == "|" {
			p.advance()
			continue
		}
		break
	}

	term := p.peek()
	if term.Kind != UnitPunctuation || term.Literal != ";" {
		return ProductionRule{}, newGrammarError("expected ';' to end rule <%s> at %s", lhs, term.Pos)
	}
	p.advance()

	return ProductionRule{LHS: lhs, Alternatives: alts}, nil
}

func (p *GrammarParser) parseAlternative(lhs string) (ProductionAlternative, error) {
	var units []ProductionUnit
	for {
		u := p.peek()
		if !isAltUnit(u) {
			break
		}
		units = append(units, u)
		p.advance()
	}

	if len(units) == 0 {
		return ProductionAlternative{}, newGrammarError("empty alternative in rule <%s> at %s", lhs, p.peek().Pos)
	}

	if len(units) == 1 {
		return ProductionAlternative{LHS: lhs, Kind: AltSingle, Unit: units[0]}, nil
	}
	return ProductionAlternative{LHS: lhs, Kind: AltSequence, Units: units}, nil
}

func isAltUnit(u ProductionUnit) bool {
	switch u.Kind {
	case UnitTerminal, UnitNonTerminal, UnitOptional, UnitRepetition:
		return true
	default:
		return false
	}
}
