package bnf

import (
	"fmt"
	"strings"

	"github.com/cuwacunu/camahjucunu/internal/cerr"
	"github.com/dekarrin/rosed"
)

// maxDiagnosticLines bounds how many success/error diagnostic entries a
// rendered ParseError shows.
const maxDiagnosticLines = 50

// InstructionParser is a recursive-descent parser over a fixed Grammar. It
// holds mutable state (cursor position, diagnostic stacks, failure
// position) and must not be invoked concurrently on itself; callers that
// need concurrent decodes should serialize access or use a fresh
// InstructionParser per goroutine.
type InstructionParser struct {
	grammar *Grammar
	cursor  *instructionCursor

	successStack []string
	errorStack   []string

	failurePosition int
}

// NewInstructionParser returns a parser bound to g. g is assumed to have
// already passed Verify.
func NewInstructionParser(g *Grammar) *InstructionParser {
	return &InstructionParser{grammar: g, cursor: newInstructionCursor("")}
}

// ParseError reports that no alternative of <instruction> matched, or that
// trailing input remained after a successful parse. It renders as
// multi-line text: the input with a colored caret at the failure position,
// followed by the last maxDiagnosticLines success and error diagnostics.
type ParseError struct {
	Input           string
	FailurePosition int
	Success         []string
	Failures        []string

	err cerr.Error
}

func (p *InstructionParser) newParseError(input string) ParseError {
	return ParseError{
		Input:           input,
		FailurePosition: p.failurePosition,
		Success:         lastN(p.successStack, maxDiagnosticLines),
		Failures:        lastN(p.errorStack, maxDiagnosticLines),
		err:             cerr.New("no alternative of the instruction grammar matched", cerr.ErrParse),
	}
}

func (pe ParseError) Error() string {
	return fmt.Sprintf("%s at position %d", pe.err.Error(), pe.FailurePosition)
}

func (pe ParseError) Unwrap() error {
	return pe.err
}

func lastN(s []string, n int) []string {
	if len(s) <= n {
		return append([]string(nil), s...)
	}
	return append([]string(nil), s[len(s)-n:]...)
}

// Render produces the full multi-line diagnostic display: the input with
// the failure position highlighted between colored spans, followed by the
// success and error diagnostic stacks.
func (pe ParseError) Render() string {
	const (
		colorRed   = "\x1b[31m"
		colorReset = "\x1b[0m"
	)

	runes := []rune(pe.Input)
	pos := pe.FailurePosition
	if pos > len(runes) {
		pos = len(runes)
	}

	before := string(runes[:pos])
	var marker, after string
	if pos < len(runes) {
		marker = string(runes[pos])
		after = string(runes[pos+1:])
	}

	highlighted := before + colorRed + marker + colorReset + after

	var sb strings.Builder
	sb.WriteString(rosed.Edit(highlighted).Wrap(100).String())
	sb.WriteString(fmt.Sprintf("\n\n^-- failure position %d: %s\n", pos, pe.err.Error()))

	if len(pe.Success) > 0 {
		sb.WriteString("\nsuccess diagnostics:\n")
		for _, s := range pe.Success {
			sb.WriteString("  " + s + "\n")
		}
	}
	if len(pe.Failures) > 0 {
		sb.WriteString("\nerror diagnostics:\n")
		for _, s := range pe.Failures {
			sb.WriteString("  " + s + "\n")
		}
	}

	return sb.String()
}

func (p *InstructionParser) pushSuccess(msg string) {
	p.successStack = append(p.successStack, msg)
}

func (p *InstructionParser) pushError(msg string) {
	p.errorStack = append(p.errorStack, msg)
}

// ParseInstruction parses text against the <instruction> rule and wraps the
// result in a Root node. It is the Instruction Parser's sole entry point.
func (p *InstructionParser) ParseInstruction(text string) (*ASTNode, error) {
	p.cursor.setInput(text)
	p.successStack = nil
	p.errorStack = nil
	p.failurePosition = 0

	node, _, ok := p.parseRule(StartSymbol)
	if !ok || !p.cursor.isAtEnd() {
		if ok {
			p.failurePosition = p.cursor.position()
			p.pushError(fmt.Sprintf("trailing input after <%s> at position %d", StartSymbol, p.failurePosition))
		}
		return nil, p.newParseError(text)
	}

	return NewRoot(StartSymbol, node), nil
}

type ruleMatch struct {
	node *ASTNode
	end  int
}

// parseRule tries every alternative of the named rule in order, records
// each one that succeeds along with its end position, and picks the one
// with the greatest end position (longest match). On a tie, the
// first-found alternative wins.
func (p *InstructionParser) parseRule(name string) (*ASTNode, int, bool) {
	rule, ok := p.grammar.Rule(name)
	if !ok {
		return nil, p.cursor.position(), false
	}

	startPos := p.cursor.position()
	var matches []ruleMatch

	for _, alt := range rule.Alternatives {
		p.cursor.setPosition(startPos)
		node, ok := p.parseAlternative(alt)
		if ok {
			matches = append(matches, ruleMatch{node: node, end: p.cursor.position()})
		}
	}

	if len(matches) == 0 {
		p.cursor.setPosition(startPos)
		return nil, startPos, false
	}

	if len(matches) > 1 {
		p.pushSuccess(fmt.Sprintf("multiple alternatives matched <%s>; selected longest", name))
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if m.end > best.end {
			best = m
		}
	}

	p.cursor.setPosition(best.end)
	return best.node, best.end, true
}

// parseAlternative parses a single ProductionAlternative: a Sequence
// attempts each unit in order and resets to the sequence's start if any
// unit fails; a Single wrapping a Terminal returns that Terminal node
// directly with no Intermediary wrapper.
func (p *InstructionParser) parseAlternative(alt ProductionAlternative) (*ASTNode, bool) {
	startPos := p.cursor.position()

	if alt.Kind == AltSingle {
		node, ok := p.parseUnit(alt.Unit, alt.LHS)
		if !ok {
			p.cursor.setPosition(startPos)
			return nil, false
		}
		if alt.Unit.Kind == UnitTerminal {
			return node, true
		}
		return &ASTNode{Kind: NodeIntermediary, Alternative: alt, Children: []*ASTNode{node}}, true
	}

	var children []*ASTNode
	for _, u := range alt.Units {
		node, ok := p.parseUnit(u, alt.LHS)
		if !ok {
			p.cursor.setPosition(startPos)
			return nil, false
		}
		if u.Kind == UnitRepetition {
			children = append(children, node.Children...)
		} else {
			children = append(children, node)
		}
	}

	return &ASTNode{Kind: NodeIntermediary, Alternative: alt, Children: children}, true
}

// parseUnit parses a single ProductionUnit. ownerLHS is the rule name the
// enclosing alternative belongs to, and is attached to Terminal nodes
// produced directly.
func (p *InstructionParser) parseUnit(u ProductionUnit, ownerLHS string) (*ASTNode, bool) {
	switch u.Kind {
	case UnitTerminal:
		return p.parseTerminal(u, ownerLHS)
	case UnitNonTerminal:
		node, _, ok := p.parseRule(u.Name)
		return node, ok
	case UnitOptional:
		return p.parseOptional(u, ownerLHS)
	case UnitRepetition:
		return p.parseRepetition(u)
	default:
		return nil, false
	}
}

// parseOptional attempts its enclosed reference; on failure it returns a
// Terminal node with empty content rather than failing, so an Optional
// always succeeds.
func (p *InstructionParser) parseOptional(u ProductionUnit, ownerLHS string) (*ASTNode, bool) {
	startPos := p.cursor.position()
	node, _, ok := p.parseRule(u.Name)
	if ok {
		return node, true
	}
	p.cursor.setPosition(startPos)
	return &ASTNode{Kind: NodeTerminal, LHS: ownerLHS, Unit: ProductionUnit{Kind: UnitTerminal, Literal: `""`, Pos: Position{}}}, true
}

// parseRepetition repeatedly parses its enclosed reference until it fails,
// collecting all successful children. If zero children are collected the
// repetition itself fails. This deviates from classic zero-or-more BNF
// semantics; callers that want a true zero-or-more must wrap the
// repetition in an Optional.
func (p *InstructionParser) parseRepetition(u ProductionUnit) (*ASTNode, bool) {
	var children []*ASTNode
	for {
		startPos := p.cursor.position()
		node, _, ok := p.parseRule(u.Name)
		if !ok {
			p.cursor.setPosition(startPos)
			break
		}
		children = append(children, node)
	}
	if len(children) == 0 {
		return nil, false
	}
	return &ASTNode{Kind: NodeIntermediary, Alternative: ProductionAlternative{LHS: u.Name, Kind: AltSequence}, Children: children}, true
}

// parseTerminal dequotes u's lexeme and matches it character-for-character
// against the cursor. Any mismatch resets the cursor, updates the parser's
// failure position, clears the success diagnostic stack, pushes an error
// diagnostic, and fails. A full match does the reverse: it clears the error
// diagnostic stack and pushes a success diagnostic, so only the failures
// after the last matched terminal are visible in a subsequent ParseError.
// The asymmetry can mask chained errors but is intentional; callers rely on
// the latest-failure-only display.
func (p *InstructionParser) parseTerminal(u ProductionUnit, ownerLHS string) (*ASTNode, bool) {
	lexeme := dequoteTerminalLiteral(u.Literal)
	startPos := p.cursor.position()

	for _, want := range lexeme {
		got := p.cursor.peek()
		if got != want {
			mismatchPos := p.cursor.position()
			p.cursor.setPosition(startPos)
			p.failurePosition = mismatchPos
			p.successStack = nil
			p.pushError(fmt.Sprintf("expected %q at position %d", lexeme, mismatchPos))
			return nil, false
		}
		p.cursor.advance()
	}

	p.errorStack = nil
	p.pushSuccess(fmt.Sprintf("matched %q at position %d", lexeme, startPos))
	return &ASTNode{Kind: NodeTerminal, LHS: ownerLHS, Unit: u}, true
}
