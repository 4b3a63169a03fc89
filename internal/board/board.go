// Package board decodes circuit/board declaration text: a small format
// naming instance aliases bound to tsi component types, wiring them together
// with directed hops, and invoking one of them to run the circuit. Built on
// the same internal/bnf engine as the other instruction decoders.
package board

import (
	"strings"

	"github.com/cuwacunu/camahjucunu/internal/bnf"
	"github.com/cuwacunu/camahjucunu/internal/canonicalpath"
	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

var boardGrammarText = `
<instruction> ::= { <circuit_entry> } ;
<circuit_entry> ::= <circuit> ;
<circuit> ::= <circuit_header> { <instance_entry> } [ <hop_list> ] <circuit_invoke> <circuit_close> ;
<hop_list> ::= { <hop_entry> } ;

<circuit_header> ::= "CIRCUIT" <ws> <circuit_name> <ws> ;
<circuit_name> ::= <word> ;

<instance_entry> ::= <instance_decl> ;
<instance_decl> ::= "INSTANCE" <ws> <instance_alias> <ws> <tsi_type> <ws> ;
<instance_alias> ::= <word> ;
<tsi_type> ::= <path_word> ;

<hop_entry> ::= <hop_decl> ;
<hop_decl> ::= "HOP" <ws> <endpoint_from> <ws> "->" <ws> <endpoint_to> <ws> ;
<endpoint_from> ::= <endpoint_ref> ;
<endpoint_to> ::= <endpoint_ref> ;
<endpoint_ref> ::= <path_word> ;

<circuit_invoke> ::= "INVOKE" <ws> <invoke_name> <ws> <invoke_payload> <ws> ;
<invoke_name> ::= <word> ;
<invoke_payload> ::= <quoted_string> ;

<circuit_close> ::= "ENDCIRCUIT" <ws> ;

<ws> ::= { <space_char> } ;
<space_char> ::= " " ;
<word> ::= { <word_char> } ;
<word_char> ::= <letter> | <number> ;
<path_word> ::= { <path_char> } ;
<path_char> ::= <letter> | <number> | "@" | ":" | "." | "_" | "-" ;
<quoted_string> ::= "\"" { <qchar> } "\"" ;
<qchar> ::= <letter> | <number> | <qspecial> ;
<qspecial> ::= " " | "," | "." | ":" | "-" | "_" | "=" | "\\" ;
<letter> ::= "a" | "b" | "c" | "d" | "e" | "f" | "g" | "h" | "i" | "j" | "k" | "l" | "m" | "n" | "o" | "p" | "q" | "r" | "s" | "t" | "u" | "v" | "w" | "x" | "y" | "z" | "A" | "B" | "C" | "D" | "E" | "F" | "G" | "H" | "I" | "J" | "K" | "L" | "M" | "N" | "O" | "P" | "Q" | "R" | "S" | "T" | "U" | "V" | "W" | "X" | "Y" | "Z" | "_" ;
<number> ::= "0" | "1" | "2" | "3" | "4" | "5" | "6" | "7" | "8" | "9" ;
`

// Endpoint is one side of a hop: an instance alias plus the directive/kind
// it is addressed through, e.g. "srcA@jkimyei:tensor".
type Endpoint struct {
	Instance  string
	Directive string
	Kind      string
}

// Instance binds an alias to a tsi component type.
type Instance struct {
	Alias   string
	TSIType string
}

// Hop wires one endpoint's output to another's input.
type Hop struct {
	From Endpoint
	To   Endpoint
}

// Circuit is one declared CIRCUIT...ENDCIRCUIT block.
type Circuit struct {
	Name          string
	Instances     []Instance
	Hops          []Hop
	InvokeName    string
	InvokePayload string
}

// Result is the decoded output of a board instruction.
type Result struct {
	Circuits []Circuit
}

// parseEndpointRef splits "<alias>@<directive>:<kind>" using the canonical
// path package's directive/kind registries, so a hop endpoint is addressed
// with exactly the same directive vocabulary a canonical path endpoint is.
func parseEndpointRef(text string) (Endpoint, error) {
	at := strings.IndexByte(text, '@')
	if at < 0 {
		return Endpoint{}, cerr.New("endpoint reference missing '@directive:kind': "+text, cerr.ErrDecode)
	}
	alias := text[:at]
	rest := text[at+1:]

	colon := strings.LastIndexByte(rest, ':')
	if colon < 0 {
		return Endpoint{}, cerr.New("endpoint reference missing ':kind': "+text, cerr.ErrDecode)
	}

	directive, ok := canonicalpath.ParseDirectiveID(rest[:colon])
	if !ok {
		return Endpoint{}, cerr.New("endpoint reference has unknown directive: "+text, cerr.ErrDecode)
	}
	kind, ok := canonicalpath.ParseKindToken(rest[colon+1:])
	if !ok {
		return Endpoint{}, cerr.New("endpoint reference has unknown kind: "+text, cerr.ErrDecode)
	}

	return Endpoint{Instance: alias, Directive: directive, Kind: kind}, nil
}

// validateHop rejects a hop whose source directive is not an output, whose
// target is not an input, or whose two sides carry mismatched payload kinds.
func validateHop(from, to Endpoint) error {
	fromKind, _ := canonicalpath.ParsePayloadKind(from.Kind)
	toKind, _ := canonicalpath.ParsePayloadKind(to.Kind)
	if ok, reason := canonicalpath.DirectivesCompatible(from.Directive, fromKind, to.Directive, toKind); !ok {
		return cerr.New("incompatible hop "+from.Instance+from.Directive+from.Kind+" -> "+to.Instance+to.Directive+to.Kind+": "+reason, cerr.ErrDecode)
	}
	return nil
}

// Decoder decodes board instruction text into a Result. Not safe for
// concurrent use.
type Decoder struct {
	grammar *bnf.Grammar
	parser  *bnf.InstructionParser
}

// NewDecoder parses and verifies the embedded board grammar.
func NewDecoder() (*Decoder, error) {
	g, err := bnf.ParseGrammar(boardGrammarText)
	if err != nil {
		return nil, cerr.New("building board grammar", err)
	}
	return &Decoder{grammar: g, parser: bnf.NewInstructionParser(g)}, nil
}

// Decode parses text against the board grammar and walks the resulting tree
// into a Result.
func (d *Decoder) Decode(text string) (*Result, error) {
	root, err := d.parser.ParseInstruction(text)
	if err != nil {
		return nil, cerr.New("decoding board instruction", err, cerr.ErrDecode)
	}

	result := &Result{}
	state := &boardState{result: result}
	v := &boardVisitor{}
	ctx := bnf.NewVisitorContext(state)
	bnf.Accept(v, root, ctx)
	if state.err != nil {
		return nil, state.err
	}
	return result, nil
}

type boardState struct {
	result  *Result
	current *Circuit
	hopFrom *Endpoint
	elem    strings.Builder
	err     error
}

type boardVisitor struct{}

func (v *boardVisitor) VisitRoot(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	bnf.AcceptChildren(v, n, ctx)
}

func (v *boardVisitor) VisitIntermediary(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	st := ctx.UserData.(*boardState)
	if st.err != nil {
		return
	}

	name := n.Alternative.LHS
	switch name {
	case "circuit":
		st.current = &Circuit{}
		bnf.AcceptChildren(v, n, ctx)
		if st.current != nil {
			st.result.Circuits = append(st.result.Circuits, *st.current)
			st.current = nil
		}
	case "circuit_name", "instance_alias", "tsi_type", "endpoint_ref", "invoke_name", "invoke_payload":
		st.elem.Reset()
		bnf.AcceptChildren(v, n, ctx)
		text := st.elem.String()
		if name == "invoke_payload" {
			text = strings.ReplaceAll(text, `"`, "")
		}
		v.consumeText(ctx, st, name, text)
	default:
		bnf.AcceptChildren(v, n, ctx)
	}
}

func (v *boardVisitor) consumeText(ctx *bnf.VisitorContext, st *boardState, name, text string) {
	switch name {
	case "circuit_name":
		st.current.Name = text
	case "instance_alias":
		st.current.Instances = append(st.current.Instances, Instance{Alias: text})
	case "tsi_type":
		last := len(st.current.Instances) - 1
		if last >= 0 {
			st.current.Instances[last].TSIType = text
		}
	case "endpoint_ref":
		ep, err := parseEndpointRef(text)
		if err != nil {
			st.err = err
			return
		}
		if ctx.Under("endpoint_from") {
			st.hopFrom = &ep
		} else if ctx.Under("endpoint_to") && st.hopFrom != nil {
			from := *st.hopFrom
			st.hopFrom = nil
			if err := validateHop(from, ep); err != nil {
				st.err = err
				return
			}
			st.current.Hops = append(st.current.Hops, Hop{From: from, To: ep})
		}
	case "invoke_name":
		st.current.InvokeName = text
	case "invoke_payload":
		st.current.InvokePayload = text
	}
}

func (v *boardVisitor) VisitTerminal(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	st := ctx.UserData.(*boardState)
	if st.err != nil {
		return
	}
	if ctx.Under("circuit_name") || ctx.Under("instance_alias") || ctx.Under("tsi_type") ||
		ctx.Under("endpoint_ref") || ctx.Under("invoke_name") || ctx.Under("invoke_payload") {
		st.elem.WriteString(n.Text())
	}
}
