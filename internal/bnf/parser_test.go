package bnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrammar(t *testing.T, src string) *Grammar {
	t.Helper()
	g, err := ParseGrammar(src)
	require.NoError(t, err)
	return g
}

// TestAlternativeRanking_prefersLongestMatch checks that when more than one
// alternative matches, the parser keeps the one that consumed the most
// input: <instruction> ::= "A" | "AB" ; on input "AB" must pick "AB".
func TestAlternativeRanking_prefersLongestMatch(t *testing.T) {
	g := mustGrammar(t, `<instruction> ::= "A" | "AB" ;`)
	p := NewInstructionParser(g)

	root, err := p.ParseInstruction("AB")
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	child := root.Children[0]
	require.Equal(t, NodeTerminal, child.Kind)
	assert.Equal(t, "AB", dequoteTerminalLiteral(child.Unit.Literal))
	assert.Equal(t, "AB", root.Text())
}

// TestOptional_emptyInputYieldsEmptyTerminal checks that an unmatched
// optional yields an empty Terminal instead of failing the parse. The
// <instruction> alternative is a Single over an Optional unit (not a Terminal
// unit), so the empty Terminal sits inside that alternative's Intermediary.
func TestOptional_emptyInputYieldsEmptyTerminal(t *testing.T) {
	g := mustGrammar(t, `
		<instruction> ::= [ <y> ] ;
		<y> ::= "y" ;
	`)
	p := NewInstructionParser(g)

	root, err := p.ParseInstruction("")
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	wrapper := root.Children[0]
	require.Equal(t, NodeIntermediary, wrapper.Kind)
	require.Len(t, wrapper.Children, 1)
	assert.Equal(t, NodeTerminal, wrapper.Children[0].Kind)
	assert.Equal(t, "", root.Text())
}

// TestRepetition_failsOnZeroMatches checks that a repetition group with no
// matches fails outright rather than yielding an empty match.
func TestRepetition_failsOnZeroMatches(t *testing.T) {
	g := mustGrammar(t, `
		<instruction> ::= { <y> } ;
		<y> ::= "y" ;
	`)
	p := NewInstructionParser(g)

	_, err := p.ParseInstruction("zzz")
	require.Error(t, err)
	var perr ParseError
	require.ErrorAs(t, err, &perr)
	assert.LessOrEqual(t, perr.FailurePosition, len("zzz"))
}

func TestRepetition_collectsAllMatches(t *testing.T) {
	g := mustGrammar(t, `
		<instruction> ::= { <y> } ;
		<y> ::= "y" ;
	`)
	p := NewInstructionParser(g)

	root, err := p.ParseInstruction("yyy")
	require.NoError(t, err)
	assert.Equal(t, "yyy", root.Text())
}

func TestParseInstruction_trailingInputFails(t *testing.T) {
	g := mustGrammar(t, `<instruction> ::= "a" ;`)
	p := NewInstructionParser(g)

	_, err := p.ParseInstruction("ab")
	require.Error(t, err)
}

func TestParseInstruction_escapesInTerminals(t *testing.T) {
	g := mustGrammar(t, `<instruction> ::= "a\nb" ;`)
	p := NewInstructionParser(g)

	root, err := p.ParseInstruction("a\nb")
	require.NoError(t, err)
	assert.Equal(t, "a\nb", root.Text())
}

func TestSequenceFlattensRepetitionChildren(t *testing.T) {
	g := mustGrammar(t, `
		<instruction> ::= "(" { <item> } ")" ;
		<item> ::= "x" ;
	`)
	p := NewInstructionParser(g)

	root, err := p.ParseInstruction("(xxx)")
	require.NoError(t, err)
	assert.Equal(t, "(xxx)", root.Text())

	seq := root.Children[0]
	require.Equal(t, NodeIntermediary, seq.Kind)
	// "(" + 3 flattened <item> terminals + ")" == 5 direct children, not a
	// nested repetition wrapper.
	assert.Len(t, seq.Children, 5)
}

func TestReusedParserIsIndependentBetweenCalls(t *testing.T) {
	g := mustGrammar(t, `<instruction> ::= "a" | "ab" ;`)
	p := NewInstructionParser(g)

	root1, err := p.ParseInstruction("ab")
	require.NoError(t, err)
	assert.Equal(t, "ab", root1.Text())

	root2, err := p.ParseInstruction("a")
	require.NoError(t, err)
	assert.Equal(t, "a", root2.Text())
}
