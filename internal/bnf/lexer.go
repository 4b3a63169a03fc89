package bnf

import (
	"fmt"

	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

// LexError reports a malformed grammar token: an unterminated literal, a
// malformed optional/repetition group, or an unrecognized character.
type LexError struct {
	Pos Position

	err cerr.Error
}

func newLexError(pos Position, format string, args ...any) LexError {
	return LexError{Pos: pos, err: cerr.New(fmt.Sprintf(format, args...), cerr.ErrLexical)}
}

func (e LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.err.Error())
}

func (e LexError) Unwrap() error {
	return e.err
}

// GrammarLexer tokenizes a grammar source string into a stream of
// ProductionUnits. It is stateless between calls to Lex.
type GrammarLexer struct{}

// NewGrammarLexer returns a ready-to-use GrammarLexer.
func NewGrammarLexer() *GrammarLexer {
	return &GrammarLexer{}
}

type grammarScanner struct {
	src    []rune
	pos    int
	line   int
	column int
}

func (s *grammarScanner) atEnd() bool {
	return s.pos >= len(s.src)
}

func (s *grammarScanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *grammarScanner) peekAt(off int) rune {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *grammarScanner) position() Position {
	return Position{Line: s.line, Column: s.column}
}

func (s *grammarScanner) advance() rune {
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// Lex tokenizes src, skipping whitespace and `#`-to-EOL comments.
func (l *GrammarLexer) Lex(src string) ([]ProductionUnit, error) {
	s := &grammarScanner{src: []rune(src), line: 1, column: 1}
	var units []ProductionUnit

	for !s.atEnd() {
		r := s.peek()

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			s.advance()
			continue
		case r == '#':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
			continue
		case r == '<':
			u, err := l.lexNonTerminal(s)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		case r == '"' || r == '\'':
			u, err := l.lexTerminal(s)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		case r == '[':
			u, err := l.lexGroup(s, ']', UnitOptional)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		case r == '{':
			u, err := l.lexGroup(s, '}', UnitRepetition)
			if err != nil {
				return nil, err
			}
			units = append(units, u)
		case r == ':' && s.peekAt(1) == ':' && s.peekAt(2) == '=':
			pos := s.position()
			s.advance()
			s.advance()
			s.advance()
			units = append(units, ProductionUnit{Kind: UnitPunctuation, Literal: "::=", Pos: pos})
		case r == '|':
			pos := s.position()
			s.advance()
			units = append(units, ProductionUnit{Kind: UnitPunctuation, Literal: "|", Pos: pos})
		case r == ';':
			pos := s.position()
			s.advance()
			units = append(units, ProductionUnit{Kind: UnitPunctuation, Literal: ";", Pos: pos})
		default:
			pos := s.position()
			return nil, newLexError(pos, "unknown character %q", r)
		}
	}

	units = append(units, ProductionUnit{Kind: UnitEndOfFile, Pos: s.position()})
	return units, nil
}

func (l *GrammarLexer) lexNonTerminal(s *grammarScanner) (ProductionUnit, error) {
	pos := s.position()
	start := s.pos
	s.advance() // '<'
	if !isIdentStart(s.peek()) {
		return ProductionUnit{}, newLexError(pos, "expected identifier after '<'")
	}
	for isIdentCont(s.peek()) {
		s.advance()
	}
	if s.peek() != '>' {
		return ProductionUnit{}, newLexError(pos, "unterminated non-terminal reference")
	}
	s.advance() // '>'
	lit := string(s.src[start:s.pos])
	name := lit[1 : len(lit)-1]
	return ProductionUnit{Kind: UnitNonTerminal, Literal: lit, Name: name, Pos: pos}, nil
}

var escapeSubs = map[rune]rune{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

func (l *GrammarLexer) lexTerminal(s *grammarScanner) (ProductionUnit, error) {
	pos := s.position()
	quote := s.peek()
	start := s.pos
	s.advance() // opening quote
	for {
		if s.atEnd() {
			return ProductionUnit{}, newLexError(pos, "unterminated terminal literal")
		}
		r := s.peek()
		if r == '\\' {
			s.advance()
			if s.atEnd() {
				return ProductionUnit{}, newLexError(pos, "unterminated escape in terminal literal")
			}
			esc := s.advance()
			if _, ok := escapeSubs[esc]; !ok {
				return ProductionUnit{}, newLexError(pos, "unknown escape sequence \\%c", esc)
			}
			continue
		}
		if r == quote {
			s.advance()
			break
		}
		if r == '\n' {
			return ProductionUnit{}, newLexError(pos, "unterminated terminal literal (newline)")
		}
		s.advance()
	}
	lit := string(s.src[start:s.pos])
	return ProductionUnit{Kind: UnitTerminal, Literal: lit, Pos: pos}, nil
}

// lexGroup handles `[ <name> ]` and `{ <name> }`: exactly one enclosed
// non-terminal reference, nothing else.
func (l *GrammarLexer) lexGroup(s *grammarScanner, close rune, kind UnitKind) (ProductionUnit, error) {
	pos := s.position()
	start := s.pos
	s.advance() // opening bracket

	for s.peek() == ' ' || s.peek() == '\t' {
		s.advance()
	}
	if s.peek() != '<' {
		return ProductionUnit{}, newLexError(pos, "%s group must enclose exactly one non-terminal reference", kind)
	}
	inner, err := l.lexNonTerminal(s)
	if err != nil {
		return ProductionUnit{}, err
	}
	for s.peek() == ' ' || s.peek() == '\t' {
		s.advance()
	}
	if s.peek() != close {
		return ProductionUnit{}, newLexError(pos, "%s group must enclose exactly one non-terminal reference", kind)
	}
	s.advance() // closing bracket

	lit := string(s.src[start:s.pos])
	return ProductionUnit{Kind: kind, Literal: lit, Name: inner.Name, Pos: pos}, nil
}
