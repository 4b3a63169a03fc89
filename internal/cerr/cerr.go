// Package cerr holds the error kinds shared across the camahjucunu core:
// the BNF grammar/parser/decoder pipeline and the WebSocket session manager.
// Error is compatible with errors.Is/errors.Unwrap: calling errors.Is on an
// Error with one of the sentinel kind values below as target returns true
// whenever that kind is (or is among) its causes.
package cerr

import "errors"

var (
	// ErrLexical covers malformed grammar tokens: unterminated literals,
	// malformed groups, unknown characters.
	ErrLexical = errors.New("lexical error")

	// ErrGrammar covers structural grammar violations: duplicate rules,
	// missing start symbol, unresolved references, empty sequences.
	ErrGrammar = errors.New("grammar error")

	// ErrParse covers instruction-parse failures: no alternative matched,
	// trailing input, terminal mismatch.
	ErrParse = errors.New("parse error")

	// ErrDecode covers decoder structural violations, such as a table
	// header missing before an item line.
	ErrDecode = errors.New("decode error")

	// ErrPath covers canonical-path format violations and legacy-alias use.
	ErrPath = errors.New("path error")

	// ErrTransport covers session-not-found, scheme-upgrade timeout, send
	// failure, and close-timeout conditions in the WebSocket layer.
	ErrTransport = errors.New("transport error")

	// ErrTimeout covers a request/response correlation that did not
	// observe its target frame within the deadline.
	ErrTimeout = errors.New("timeout error")
)

// Error is a typed error that carries a message plus zero or more causes.
// It mirrors the shape used across the rest of this codebase: Error() joins
// the message with the first cause's message, and Is/Unwrap let callers
// match against any of the causes without manual type assertions.
type Error struct {
	msg   string
	cause []error
}

// New creates an Error with the given message and causes.
func New(msg string, cause ...error) Error {
	return Error{msg: msg, cause: cause}
}

func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

// Unwrap returns the causes of Error. The return value will be nil if no
// causes were defined for it.
//
// This function is for interaction with the errors API. It will only be used
// in Go version 1.20 and later; 1.19 will default to use of Error.Is when
// calling errors.Is on the Error.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether Error either Is itself the given target error, or one of
// its causes is.
//
// This function is for interaction with the errors API.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		if e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause) {
			allCausesEqual := true
			for i := range e.cause {
				if e.cause[i] != errTarget.cause[i] {
					allCausesEqual = false
					break
				}
			}
			if allCausesEqual {
				return true
			}
		}
	}

	for i := range e.cause {
		if errors.Is(e.cause[i], target) {
			return true
		}
	}
	return false
}
