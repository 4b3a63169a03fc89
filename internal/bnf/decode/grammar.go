// Package decode implements the concrete instruction decoders built on top
// of package bnf: the table decoder (pipe-delimited configuration tables)
// and the rendering decoder (terminal UI layout instructions). Both share
// the same character-class grammar fragment and the same "accumulate
// terminal text into a current element, strip stray quotes" decoding style.
package decode

import "strings"

// charClassAlternatives renders a BNF alternative list of one-character
// terminals for every rune in alphabet, separated by " | " on a single line,
// continuing the alternatives of an already-open rule body.
func charClassAlternatives(alphabet string) string {
	var sb strings.Builder
	runes := []rune(alphabet)
	for i, r := range runes {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(quoteRune(r))
	}
	return sb.String()
}

func quoteRune(r rune) string {
	switch r {
	case '"':
		return `"\""`
	case '\\':
		return `"\\"`
	default:
		return `"` + string(r) + `"`
	}
}

const (
	lowerAlpha = "abcdefghijklmnopqrstuvwxyz"
	upperAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits     = "0123456789"
)

// letterAlphabet is the alphabet shared by <letter>: upper/lower case ASCII
// plus underscore, matching identifier rules across both decoders.
const letterAlphabet = lowerAlpha + upperAlpha + "_"

// fieldSpecialAlphabet holds the punctuation a table or rendering field may
// carry verbatim: key/value separators, list separators, path dots, and the
// quote character itself (stripped back out by the decoder once the field
// text is fully accumulated).
const fieldSpecialAlphabet = "-.,=\" "

func buildCharClassGrammar() string {
	var sb strings.Builder
	sb.WriteString("<letter> ::= " + charClassAlternatives(letterAlphabet) + " ;\n")
	sb.WriteString("<number> ::= " + charClassAlternatives(digits) + " ;\n")
	sb.WriteString("<special> ::= " + charClassAlternatives(fieldSpecialAlphabet) + " ;\n")
	sb.WriteString("<field_char> ::= <letter> | <number> | <special> ;\n")
	return sb.String()
}
