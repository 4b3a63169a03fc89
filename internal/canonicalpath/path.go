// Package canonicalpath decodes canonical component path text
// ("tsi.wikimyei.representation.vicreg.0x0001@jkimyei:tensor") into a
// structured Path, and hands out stable hex identities for the paths it
// decodes via the package-level IdentityProvider.
package canonicalpath

import (
	"strings"

	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

// PathKind distinguishes a bare node reference, a call expression, and a
// directive endpoint reference.
type PathKind int

const (
	KindNode PathKind = iota
	KindCall
	KindEndpoint
)

// Arg is one "key" or "key=value" call argument.
type Arg struct {
	Key   string
	Value string
}

// Path is the decoded result of a canonical path expression. On failure Ok
// is false, Error carries the first violation encountered, and Raw still
// holds the input; fields filled in by steps that succeeded before the
// failing one (Segments, Hashimyei, Args, Kind) keep their values, and the
// canonical strings and hash names stay empty.
type Path struct {
	Ok  bool
	Raw string

	Segments []string
	Args     []Arg
	Kind     PathKind

	Directive string // "@jkimyei", empty if no endpoint suffix
	PayloadKind string // ":tensor" / ":str", empty if no endpoint suffix

	Hashimyei string // hex identity embedded in a 5-segment tsi.wikimyei path

	CanonicalIdentity string
	CanonicalEndpoint string
	Canonical         string

	IdentityHashName string
	EndpointHashName string

	Error string
}

func isAtomChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isValidAtom(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAtomChar(s[i]) {
			return false
		}
	}
	return true
}

type parsedCore struct {
	pathText     string
	argsText     string
	endpointText string
	hasCall      bool
}

// splitCore finds the last unbalanced '@' (respecting "(...)" depth) to
// separate the core path from an optional endpoint suffix, then finds the
// first unbalanced '(' in the core to separate the base path from an
// optional call argument list.
func splitCore(input string) (parsedCore, string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return parsedCore{}, "empty path expression"
	}

	at := -1
	depth := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return parsedCore{}, "unbalanced ')'"
			}
		case '@':
			if depth == 0 {
				at = i
			}
		}
	}
	if depth != 0 {
		return parsedCore{}, "unbalanced parentheses"
	}

	core := input
	var out parsedCore
	if at >= 0 {
		out.endpointText = strings.TrimSpace(input[at+1:])
		core = strings.TrimSpace(input[:at])
	}

	lp := strings.IndexByte(core, '(')
	if lp < 0 {
		out.pathText = strings.TrimSpace(core)
		if out.pathText == "" {
			return parsedCore{}, "missing base path"
		}
		return out, ""
	}

	callDepth := 0
	rp := -1
	for i := lp; i < len(core); i++ {
		switch core[i] {
		case '(':
			callDepth++
		case ')':
			callDepth--
			if callDepth == 0 {
				rp = i
			}
		}
		if rp >= 0 {
			break
		}
	}
	if rp < 0 {
		return parsedCore{}, "missing ')' for call suffix"
	}

	trailing := strings.TrimSpace(core[rp+1:])
	if trailing != "" {
		return parsedCore{}, "unexpected trailing text after call"
	}

	out.hasCall = true
	out.pathText = strings.TrimSpace(core[:lp])
	out.argsText = strings.TrimSpace(core[lp+1 : rp])
	if out.pathText == "" {
		return parsedCore{}, "missing callable path"
	}
	return out, ""
}

func splitDot(s string) []string {
	return strings.Split(s, ".")
}

// canonicalizeSegments validates segs and returns the canonical segments (a
// new slice when a fused 4-segment model_hashimyei is split), the embedded
// hashimyei id (if any), and the first violation encountered.
func canonicalizeSegments(segs []string) ([]string, string, string) {
	if len(segs) == 0 {
		return segs, "", "missing path segments"
	}
	for _, s := range segs {
		if !isValidAtom(s) {
			return segs, "", "invalid path segment: " + s
		}
	}

	if len(segs) >= 3 && segs[0] == "tsi" && segs[1] == "wave" && segs[2] == "generator" {
		return segs, "", "legacy alias 'tsi.wave.generator' is removed; use 'board.wave'"
	}
	if len(segs) >= 4 && segs[0] == "tsi" && segs[1] == "wikimyei" && segs[2] == "wave" && segs[3] == "generator" {
		return segs, "", "legacy alias 'tsi.wikimyei.wave.generator' is removed; use 'board.wave'"
	}
	if len(segs) >= 3 && segs[0] == "tsi" && segs[1] == "wikimyei" && segs[2] == "source" {
		return segs, "", "legacy namespace 'tsi.wikimyei.source.*' is removed; use 'tsi.source.*'"
	}

	rootIsTsi := segs[0] == "tsi"
	rootIsIinuji := segs[0] == "iinuji"
	rootIsBoard := segs[0] == "board"
	if !rootIsTsi && !rootIsIinuji && !rootIsBoard {
		return segs, "", "path root must be 'tsi', 'board', or 'iinuji'"
	}
	if len(segs) >= 2 && rootIsTsi && segs[1] == "iinuji" {
		return segs, "", "tsi.iinuji.* is not supported; use iinuji.*"
	}
	if len(segs) >= 2 && rootIsTsi && segs[1] == "wave" {
		return segs, "", "tsi.wave is not a TSI component anymore; use board.wave and source roots"
	}
	if segs[len(segs)-1] == "jkimyei" {
		return segs, "", "legacy '.jkimyei' facet is removed; use '@jkimyei:<kind>'"
	}

	if len(segs) == 1 {
		return segs, "", ""
	}

	if segs[1] != "wikimyei" {
		return segs, "", ""
	}
	if !rootIsTsi {
		return segs, "", "wikimyei paths must be rooted at tsi.wikimyei"
	}
	if len(segs) == 2 || len(segs) == 3 {
		return segs, "", ""
	}
	if len(segs) < 4 {
		return segs, "", "tsi.wikimyei path requires family and model"
	}
	if len(segs) == 4 {
		model, hashimyei, ok := SplitModelHashSuffix(segs[3])
		if !ok {
			return segs, "", "tsi.wikimyei path requires explicit hashimyei suffix " +
				"(expected tsi.wikimyei.<family>.<model>.<hashimyei>)"
		}
		segs = append(append([]string{}, segs[:3]...), model, hashimyei)
	} else if len(segs) != 5 {
		return segs, "", "tsi.wikimyei path accepts family.model.hashimyei"
	}

	hashimyei := segs[4]
	if hashimyei == "default" {
		return segs, "", "legacy hashimyei alias 'default' is removed; " +
			"use explicit hex hashimyei id (for example 0x0000)"
	}
	if !IsHexHashName(hashimyei) {
		return segs, "", "invalid hashimyei id; expected explicit hex form 0x<hex>"
	}

	return segs, hashimyei, ""
}

func parseArgs(text string) ([]Arg, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ""
	}

	var args []Arg
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		var arg Arg
		if eq := strings.IndexByte(token, '='); eq < 0 {
			arg.Key = token
		} else {
			arg.Key = strings.TrimSpace(token[:eq])
			arg.Value = strings.TrimSpace(token[eq+1:])
		}
		if !isValidAtom(arg.Key) {
			return nil, "invalid argument key: " + arg.Key
		}
		args = append(args, arg)
	}
	return args, ""
}

func canonicalArgs(args []Arg) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Key)
		if a.Value != "" {
			sb.WriteByte('=')
			sb.WriteString(a.Value)
		}
	}
	return sb.String()
}

type parsedEndpoint struct {
	present   bool
	directive string
	kind      string
}

// parseEndpointSuffix splits text at its last ':'; the left side must
// canonicalize to a registered directive, the right side to a payload kind.
func parseEndpointSuffix(text string) (parsedEndpoint, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return parsedEndpoint{}, ""
	}

	colon := strings.LastIndexByte(text, ':')
	if colon <= 0 || colon+1 >= len(text) {
		return parsedEndpoint{}, "endpoint requires @directive:kind"
	}

	directive, ok := ParseDirectiveID(text[:colon])
	if !ok {
		return parsedEndpoint{}, "invalid directive in endpoint suffix"
	}
	kind, ok := ParseKindToken(text[colon+1:])
	if !ok {
		return parsedEndpoint{}, "invalid kind in endpoint suffix"
	}
	pk, _ := ParsePayloadKind(kind)
	if !DirectiveAcceptsKind(directive, DirOut, pk) {
		return parsedEndpoint{}, "directive " + directive + " is input-only; cannot terminate an endpoint"
	}

	return parsedEndpoint{present: true, directive: directive, kind: kind}, ""
}

// Decode parses canonical path expression text and, on success, assigns
// stable hex identities to its canonical identity (and endpoint, if
// present) via the package's DefaultIdentityProvider.
func Decode(text string) Path {
	out := Path{Raw: text}

	core, err := splitCore(text)
	if err != "" {
		out.Error = err
		return out
	}

	segs, hashimyei, err := canonicalizeSegments(splitDot(core.pathText))
	if err != "" {
		out.Error = err
		return out
	}
	out.Segments = segs
	out.Hashimyei = hashimyei

	if core.hasCall {
		args, err := parseArgs(core.argsText)
		if err != "" {
			out.Error = err
			return out
		}
		out.Args = args
		out.Kind = KindCall
	} else {
		out.Kind = KindNode
	}

	endpoint, err := parseEndpointSuffix(core.endpointText)
	if err != "" {
		out.Error = err
		return out
	}

	var identity strings.Builder
	identity.WriteString(strings.Join(out.Segments, "."))
	if core.hasCall {
		identity.WriteString("(" + canonicalArgs(out.Args) + ")")
	}
	out.CanonicalIdentity = identity.String()

	if endpoint.present {
		out.Directive = endpoint.directive
		out.PayloadKind = endpoint.kind
		if out.Kind != KindCall {
			out.Kind = KindEndpoint
		}
		out.CanonicalEndpoint = out.CanonicalIdentity + out.Directive + out.PayloadKind
		out.Canonical = out.CanonicalEndpoint
	} else {
		out.Canonical = out.CanonicalIdentity
	}

	out.IdentityHashName = DefaultIdentityProvider().Assign(out.CanonicalIdentity + ".self")
	if out.CanonicalEndpoint != "" {
		out.EndpointHashName = DefaultIdentityProvider().Assign(out.CanonicalEndpoint + ".self")
	}

	out.Ok = true
	return out
}

// DecodeOrError is a convenience wrapper returning a cerr.Error wrapping
// ErrPath when Decode fails, for callers that want Go-idiomatic error
// propagation instead of checking Path.Ok.
func DecodeOrError(text string) (Path, error) {
	p := Decode(text)
	if !p.Ok {
		return p, cerr.New(p.Error, cerr.ErrPath)
	}
	return p, nil
}
