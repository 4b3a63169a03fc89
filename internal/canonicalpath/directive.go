package canonicalpath

import "strings"

// PayloadKind is the payload family an endpoint directive carries.
type PayloadKind int

const (
	PayloadTensor PayloadKind = iota
	PayloadString
)

// KindToken renders a PayloadKind as its canonical ":tensor"/":str" suffix.
func (k PayloadKind) KindToken() string {
	switch k {
	case PayloadString:
		return ":str"
	default:
		return ":tensor"
	}
}

// DirectiveDir is the data-flow direction of a directive relative to a tsi
// node: In accepts data, Out produces it.
type DirectiveDir int

const (
	DirIn DirectiveDir = iota
	DirOut
)

// DirectiveSpec is the static metadata for one registered directive id.
type DirectiveSpec struct {
	ID  string
	Dir DirectiveDir
}

// directiveRegistry lists every canonical directive id recognized by tsi and
// board paths. Every directive token begins with '@', is matched
// case-insensitively, and carries a fixed data direction.
var directiveRegistry = []DirectiveSpec{
	{ID: "@jkimyei", Dir: DirOut},
	{ID: "@wikimyei", Dir: DirOut},
	{ID: "@wave", Dir: DirOut},
	{ID: "@source", Dir: DirOut},
	{ID: "@refresh", Dir: DirIn},
	{ID: "@bind", Dir: DirIn},
	{ID: "@update", Dir: DirIn},
}

// ParsePayloadKind converts a canonical kind token (":tensor"/":str", as
// returned by ParseKindToken) into a PayloadKind.
func ParsePayloadKind(token string) (PayloadKind, bool) {
	switch token {
	case ":tensor":
		return PayloadTensor, true
	case ":str":
		return PayloadString, true
	default:
		return PayloadTensor, false
	}
}

func findDirective(id string) (DirectiveSpec, bool) {
	for _, d := range directiveRegistry {
		if d.ID == id {
			return d, true
		}
	}
	return DirectiveSpec{}, false
}

// ParseDirectiveID canonicalizes a directive token: trims whitespace, lower
// cases it, and prepends "@" if missing. Returns ok=false if the token does
// not match a registered directive.
func ParseDirectiveID(token string) (string, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return "", false
	}
	if !strings.HasPrefix(token, "@") {
		token = "@" + token
	}
	if _, ok := findDirective(token); ok {
		return token, true
	}
	return "", false
}

// ParseKindToken canonicalizes a payload-kind token ("str"/"tensor", with or
// without the leading ':'), returning ok=false for anything else.
func ParseKindToken(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "str", ":str":
		return ":str", true
	case "tensor", ":tensor":
		return ":tensor", true
	default:
		return "", false
	}
}

// DirectiveAcceptsKind reports whether directive id directiveID may be used
// in a context requiring data-flow direction dir, carrying payload kind k.
// Every registered directive currently accepts both payload kinds; only
// direction is a hard constraint of the directive itself.
func DirectiveAcceptsKind(directiveID string, dir DirectiveDir, _ PayloadKind) bool {
	spec, ok := findDirective(directiveID)
	if !ok {
		return false
	}
	return spec.Dir == dir
}

// DirectivesCompatible checks a hop's two sides: a hop may only wire an
// Out-direction directive's output into an In-direction directive's input,
// and the two sides must carry the same payload kind.
func DirectivesCompatible(outID string, outKind PayloadKind, inID string, inKind PayloadKind) (bool, string) {
	if !DirectiveAcceptsKind(outID, DirOut, outKind) {
		return false, "direction mismatch: " + outID + " is not an output directive"
	}
	if !DirectiveAcceptsKind(inID, DirIn, inKind) {
		return false, "direction mismatch: " + inID + " is not an input directive"
	}
	if outKind != inKind {
		return false, "kind mismatch: " + outKind.KindToken() + " feeding " + inKind.KindToken()
	}
	return true, ""
}
