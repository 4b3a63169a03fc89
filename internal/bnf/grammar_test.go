package bnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrammar_simpleAlternatives(t *testing.T) {
	g, err := ParseGrammar(`<instruction> ::= "A" | "AB" ;`)
	require.NoError(t, err)

	rule, ok := g.Rule(StartSymbol)
	require.True(t, ok)
	assert.Len(t, rule.Alternatives, 2)
	assert.Equal(t, AltSingle, rule.Alternatives[0].Kind)
	assert.Equal(t, UnitTerminal, rule.Alternatives[0].Unit.Kind)
}

func TestParseGrammar_requiresStartSymbolFirst(t *testing.T) {
	_, err := ParseGrammar(`<other> ::= "x" ;`)
	require.Error(t, err)
	var gerr GrammarError
	assert.ErrorAs(t, err, &gerr)
}

func TestParseGrammar_rejectsUnresolvedReference(t *testing.T) {
	_, err := ParseGrammar(`<instruction> ::= <missing> ;`)
	require.Error(t, err)
}

func TestParseGrammar_rejectsDuplicateLHS(t *testing.T) {
	_, err := ParseGrammar(`<instruction> ::= "a" ; <instruction> ::= "b" ;`)
	require.Error(t, err)
}

func TestParseGrammar_optionalAndRepetitionGroups(t *testing.T) {
	g, err := ParseGrammar(`
		<instruction> ::= <x> ;
		<x> ::= [ <y> ] { <y> } ;
		<y> ::= "y" ;
	`)
	require.NoError(t, err)

	rule, ok := g.Rule("x")
	require.True(t, ok)
	require.Len(t, rule.Alternatives, 1)
	units := rule.Alternatives[0].AllUnits()
	require.Len(t, units, 2)
	assert.Equal(t, UnitOptional, units[0].Kind)
	assert.Equal(t, "y", units[0].Name)
	assert.Equal(t, UnitRepetition, units[1].Kind)
	assert.Equal(t, "y", units[1].Name)
}

func TestLex_commentsAndWhitespaceSkipped(t *testing.T) {
	units, err := NewGrammarLexer().Lex("# a comment\n<instruction> ::= \"a\" ; # trailing\n")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(units), 5)
	assert.Equal(t, UnitNonTerminal, units[0].Kind)
}

func TestLex_unterminatedTerminalFails(t *testing.T) {
	_, err := NewGrammarLexer().Lex(`<instruction> ::= "a ;`)
	require.Error(t, err)
	var lerr LexError
	assert.ErrorAs(t, err, &lerr)
}
