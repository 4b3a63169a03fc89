package canonicalpath

import "strings"

// sanitizeAtom replaces any non-atom character in s with '_', returning
// "unknown" if the result would be empty. Used only by the primitive
// shorthand helpers below to turn arbitrary user text into a valid path
// segment.
func sanitizeAtom(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if isAtomChar(s[i]) {
			sb.WriteByte(s[i])
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "unknown"
	}
	return sb.String()
}

// sanitizeValue is sanitizeAtom's looser sibling for call-argument values:
// it additionally keeps '.', '-', ':', '/', and '@' verbatim.
func sanitizeValue(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		keep := isAtomChar(c) || c == '.' || c == '-' || c == ':' || c == '/' || c == '@'
		if keep {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "empty"
	}
	return sb.String()
}

// DecodePrimitiveEndpointText is a surface affordance layered on top of
// Decode: full "tsi."/"iinuji." canonical text passes straight through,
// while a bare alias (optionally suffixed with "@endpoint") is expanded into
// an iinuji.primitive.endpoint.<alias> path. This is not part of Decode's
// core contract; it is kept only for user-input compatibility.
func DecodePrimitiveEndpointText(text string) Path {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "iinuji.") || strings.HasPrefix(t, "tsi.") {
		return Decode(t)
	}

	at := strings.IndexByte(t, '@')
	if at < 0 {
		alias := sanitizeAtom(t)
		return Decode("iinuji.primitive.endpoint." + alias)
	}

	alias := sanitizeAtom(strings.TrimSpace(t[:at]))
	endpoint := strings.TrimSpace(t[at+1:])
	return Decode("iinuji.primitive.endpoint." + alias + "@" + endpoint)
}

// DecodePrimitiveCommandText is DecodePrimitiveEndpointText's counterpart
// for short interactive command text ("reload", "data plot seq", "plot
// toggle", ...), expanding a handful of recognized shorthands into their
// canonical iinuji path before falling back to a raw primitive.command
// wrapper.
func DecodePrimitiveCommandText(text string) Path {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "iinuji.") || strings.HasPrefix(t, "tsi.") {
		return Decode(t)
	}

	fields := strings.Fields(t)
	var a0, a1, a2 string
	if len(fields) > 0 {
		a0 = strings.ToLower(fields[0])
	}
	if len(fields) > 1 {
		a1 = strings.ToLower(fields[1])
	}
	if len(fields) > 2 {
		a2 = strings.ToLower(fields[2])
	}

	switch {
	case a0 == "":
		return Decode(t)
	case a0 == "reload":
		return Decode("iinuji.refresh()")
	case a0 == "data" && a1 == "plot":
		mode := a2
		if mode == "" {
			mode = "seq"
		}
		return Decode("iinuji.view.data.plot(mode=" + sanitizeValue(mode) + ")")
	case a0 == "plot":
		view := a1
		if view == "" {
			view = "toggle"
		}
		return Decode("iinuji.view.data.plot(view=" + sanitizeValue(view) + ")")
	case a0 == "data":
		return Decode("iinuji.view.data()")
	case a0 == "tsi":
		return Decode("iinuji.view.tsi()")
	default:
		return Decode("iinuji.primitive.command(raw=" + sanitizeValue(t) + ")")
	}
}
