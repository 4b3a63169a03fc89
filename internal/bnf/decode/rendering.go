package decode

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/cuwacunu/camahjucunu/internal/bnf"
	"github.com/cuwacunu/camahjucunu/internal/cerr"
)

// FormBinding is one "scope:path" pair parsed out of a form property, e.g.
// "local:amount" or "path:tsi.wikimyei.representation.vicreg.0x0001".
type FormBinding struct {
	Scope string
	Path  string
}

// Entity is a screen, panel, figure, or event block. Screens own Panels,
// Figures, and Events; panels/figures/events do not nest further.
type Entity struct {
	ID   string
	Kind string

	Coords struct{ X, Y float64 }
	Shape  struct{ W, H float64 }

	ZIndex       int
	Scale        float64
	Thickness    float64
	Capacity     float64
	Title, Value string
	Legend       string
	Border       bool
	Colors       []string
	Triggers     []string
	DrawType     string
	DrawArgs     []string
	Form         []FormBinding

	Panels  []Entity
	Figures []Entity
	Events  []Entity
}

// RenderResult is the decoded output of a rendering instruction.
type RenderResult struct {
	Screens []Entity
}

// numericProp names a property whose value is a single numeric word.
type numericProp struct {
	keyword string
	kind    string // "float", "int"
}

var numericProps = []numericProp{
	{"z", "int"},
	{"scale", "float"},
	{"thickness", "float"},
	{"capacity", "float"},
}

var stringProps = []string{"title", "value", "legend"}

// renderGrammarText is assembled once from a small table of recognized
// property keywords, the same way the rest of this package's grammars are
// built from character-class tables.
var renderGrammarText = buildRenderGrammar()

// buildRenderGrammar assembles the embedded rendering grammar. draw_arg is
// deliberately a single letter rather than a generic <word>: the parser
// never backtracks across a sequence, so a greedy multi-character draw_arg
// would consume ENDPANEL/ENDSCREEN itself whenever a trailing space preceded
// the closing keyword.
func buildRenderGrammar() string {
	var sb strings.Builder
	sb.WriteString(`
<instruction> ::= { <screen_entry> } ;
<screen_entry> ::= <screen_stmt> ;
<screen_stmt> ::= "SCREEN" <ws> <word> <ws> <screen_body> "ENDSCREEN" ;
<screen_body> ::= { <screen_body_entry> } ;
<screen_body_entry> ::= <panel_entry> | <figure_entry> | <event_entry> | <opt_entry> ;

<panel_entry> ::= <panel_stmt> <ws> ;
<panel_stmt> ::= "PANEL" <ws> <word> <ws> <word> <ws> <panel_body> "ENDPANEL" ;
<figure_entry> ::= <figure_stmt> <ws> ;
<figure_stmt> ::= "FIGURE" <ws> <word> <ws> <word> <ws> <panel_body> "ENDFIGURE" ;
<event_entry> ::= <event_stmt> <ws> ;
<event_stmt> ::= "EVENT" <ws> <word> <ws> <word> <ws> <panel_body> "ENDEVENT" ;

<panel_body> ::= { <panel_body_entry> } ;
<panel_body_entry> ::= <opt_entry> ;

<opt_entry> ::= <opt_at> | <opt_coords> | <opt_shape> | <opt_bind> | <opt_draw> | <opt_form> | <opt_color> | <opt_border> | ` + numericAltNames() + ` | ` + stringAltNames() + ` | <block_comment> ;

<opt_at> ::= "at" <ws> <word> <ws> <word> <ws> <word> <ws> <word> <ws> ;
<opt_coords> ::= "coords" <ws> <coord_word> <ws> ;
<opt_shape> ::= "shape" <ws> <coord_word> <ws> ;
<opt_bind> ::= "bind" <ws> <word> <ws> ;
<opt_draw> ::= "draw" <ws> <word> <ws> [ <draw_args> ] ;
<draw_args> ::= { <draw_arg> } ;
<draw_arg> ::= <axis_letter> <ws> ;
<axis_letter> ::= <letter> ;
<opt_form> ::= "form" <ws> <word> <ws> ;
<opt_color> ::= "color" <ws> <color_word> <ws> ;
<opt_border> ::= "border" <ws> <word> <ws> ;
<block_comment> ::= "/*" { <comment_char> } "*/" <ws> ;

`)

	for _, p := range numericProps {
		sb.WriteString("<opt_" + p.keyword + "> ::= \"" + p.keyword + "\" <ws> <word> <ws> ;\n")
	}
	for _, p := range stringProps {
		sb.WriteString("<opt_" + p + "> ::= \"" + p + "\" <ws> <quoted_string> <ws> ;\n")
	}

	sb.WriteString(`
<ws> ::= { <space_char> } ;
<space_char> ::= " " ;
<coord_word> ::= { <coord_char> } ;
<coord_char> ::= <letter> | <number> | "," | "." | "-" ;
<color_word> ::= { <color_char> } ;
<color_char> ::= <letter> | <number> | "#" ;
<quoted_string> ::= "\"" { <qchar> } "\"" ;
<qchar> ::= <letter> | <number> | <qspecial> ;
<qspecial> ::= " " | "," | "." | ":" | "-" | "_" | "\\" ;
<comment_char> ::= <letter> | <number> | <qspecial> | "/" ;
<word> ::= { <word_char> } ;
<word_char> ::= <letter> | <number> | "+" | "-" | "." | "," | ":" | "_" | "#" ;
` + buildCharClassGrammar())

	return sb.String()
}

func numericAltNames() string {
	var parts []string
	for _, p := range numericProps {
		parts = append(parts, "<opt_"+p.keyword+">")
	}
	return strings.Join(parts, " | ")
}

func stringAltNames() string {
	var parts []string
	for _, p := range stringProps {
		parts = append(parts, "<opt_"+p+">")
	}
	return strings.Join(parts, " | ")
}

// ruleHash keys the entry-handler table by the FNV-1a hash of the rule name.
// newRenderVisitor builds the table at the start of each Decode, and each
// visited Intermediary's rule name is hashed to look its handler up.
func ruleHash(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// entityHandler entries for the four statement rules push a fresh Entity
// scope on entry and fold it into the parent on exit; the block_comment
// entry suppresses terminal text while its subtree is walked. Everything
// else (opt_* nodes) is dispatched purely by
// ctx.Under() checks at the point a <word>/<quoted_string> token completes,
// so it needs no entry in this table.
type entityHandler func(v *renderVisitor, n *bnf.ASTNode, ctx *bnf.VisitorContext)

type renderVisitor struct {
	enter map[uint64]entityHandler
}

func newRenderVisitor() *renderVisitor {
	v := &renderVisitor{enter: map[uint64]entityHandler{}}
	v.enter[ruleHash("screen_stmt")] = entityPusher(func(st *renderState, e *Entity) {
		st.result.Screens = append(st.result.Screens, *e)
	})
	v.enter[ruleHash("panel_stmt")] = entityPusher(func(st *renderState, e *Entity) {
		parent := st.scope[len(st.scope)-1]
		parent.Panels = append(parent.Panels, *e)
	})
	v.enter[ruleHash("figure_stmt")] = entityPusher(func(st *renderState, e *Entity) {
		parent := st.scope[len(st.scope)-1]
		parent.Figures = append(parent.Figures, *e)
	})
	v.enter[ruleHash("event_stmt")] = entityPusher(func(st *renderState, e *Entity) {
		parent := st.scope[len(st.scope)-1]
		parent.Events = append(parent.Events, *e)
	})
	v.enter[ruleHash("block_comment")] = (*renderVisitor).handleBlockComment
	return v
}

// entityPusher builds an entityHandler that opens a new Entity scope,
// recurses into the statement's children, then lets commit attach the
// finished Entity wherever it belongs (the parent scope's Panels, Figures,
// Events, or the top-level Screens list).
func entityPusher(commit func(st *renderState, e *Entity)) entityHandler {
	return func(v *renderVisitor, n *bnf.ASTNode, ctx *bnf.VisitorContext) {
		st := ctx.UserData.(*renderState)
		e := &Entity{}
		st.scope = append(st.scope, e)
		st.wordIdx = 0
		bnf.AcceptChildren(v, n, ctx)
		st.scope = st.scope[:len(st.scope)-1]
		commit(st, e)
	}
}

type renderState struct {
	result *RenderResult
	scope  []*Entity
	elem   strings.Builder
	// wordIdx tracks position among the bare <word> tokens directly under
	// the current statement (0=id, 1=kind, 2.. = opt_at's x/y/w/h), reset
	// whenever a new Entity scope opens.
	wordIdx   int
	inComment bool
}

func (v *renderVisitor) VisitRoot(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	bnf.AcceptChildren(v, n, ctx)
}

func (v *renderVisitor) VisitIntermediary(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	name := n.Alternative.LHS
	if h, ok := v.enter[ruleHash(name)]; ok {
		h(v, n, ctx)
		return
	}
	switch name {
	case "word", "coord_word", "color_word", "quoted_string", "axis_letter":
		st := ctx.UserData.(*renderState)
		st.elem.Reset()
		bnf.AcceptChildren(v, n, ctx)
		text := st.elem.String()
		if name == "quoted_string" {
			text = strings.ReplaceAll(text, `"`, "")
		}
		v.consumeWord(ctx, name, text)
	default:
		bnf.AcceptChildren(v, n, ctx)
	}
}

func (v *renderVisitor) VisitTerminal(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	st := ctx.UserData.(*renderState)
	if st.inComment {
		return
	}
	if ctx.Under("word") || ctx.Under("coord_word") || ctx.Under("color_word") || ctx.Under("quoted_string") || ctx.Under("axis_letter") {
		st.elem.WriteString(n.Text())
	}
}

// consumeWord records a fully-accumulated <word>/<coord_word>/<color_word>/
// <quoted_string> token against whichever opt_* scope is active. If none is
// active, the token is one of the statement's bare id/kind words.
func (v *renderVisitor) consumeWord(ctx *bnf.VisitorContext, kind, text string) {
	st := ctx.UserData.(*renderState)
	scope := st.scope[len(st.scope)-1]

	switch {
	case ctx.Under("opt_at"):
		handleAtWord(scope, st, text)
		return
	case ctx.Under("opt_bind"):
		scope.Triggers = append(scope.Triggers, splitNonEmpty(text, ",")...)
		return
	case ctx.Under("opt_draw"):
		if scope.DrawType == "" {
			scope.DrawType = text
		} else {
			scope.DrawArgs = append(scope.DrawArgs, text)
		}
		return
	case ctx.Under("opt_form"):
		for _, part := range splitNonEmpty(text, ",") {
			if i := strings.IndexByte(part, ':'); i >= 0 {
				scope.Form = append(scope.Form, FormBinding{Scope: part[:i], Path: part[i+1:]})
			} else {
				scope.Form = append(scope.Form, FormBinding{Scope: "local", Path: part})
			}
		}
		return
	case ctx.Under("opt_border"):
		scope.Border = strings.EqualFold(text, "true")
		return
	case kind == "coord_word" && ctx.Under("opt_coords"):
		scope.Coords.X, scope.Coords.Y = parseXY(text)
		return
	case kind == "coord_word" && ctx.Under("opt_shape"):
		scope.Shape.W, scope.Shape.H = parseXY(text)
		return
	case kind == "color_word" && ctx.Under("opt_color"):
		scope.Colors = append(scope.Colors, text)
		return
	}

	for _, p := range numericProps {
		if ctx.Under("opt_" + p.keyword) {
			applyNumericWord(scope, p, text)
			return
		}
	}
	for _, p := range stringProps {
		if ctx.Under("opt_" + p) {
			applyStringWord(scope, p, text)
			return
		}
	}

	// Not inside any opt_* scope: one of the two bare words that follow the
	// statement keyword (id, then kind).
	switch st.wordIdx {
	case 0:
		scope.ID = text
	case 1:
		scope.Kind = text
	}
	st.wordIdx++
}

func handleAtWord(scope *Entity, st *renderState, text string) {
	// opt_at accumulates four bare <word> numbers in sequence: x, y, w, h.
	// The shared wordIdx counter has already advanced past 0/1 (id, kind)
	// by the time opt_at's words arrive, so its first number lands at
	// index 2.
	n, _ := strconv.ParseFloat(text, 64)
	switch st.wordIdx - 2 {
	case 0:
		scope.Coords.X = n
	case 1:
		scope.Coords.Y = n
	case 2:
		scope.Shape.W = n
	case 3:
		scope.Shape.H = n
	}
	st.wordIdx++
}

func parseXY(text string) (x, y float64) {
	i := strings.IndexByte(text, ',')
	if i < 0 {
		x, _ = strconv.ParseFloat(text, 64)
		return x, 0
	}
	x, _ = strconv.ParseFloat(text[:i], 64)
	y, _ = strconv.ParseFloat(text[i+1:], 64)
	return x, y
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyNumericWord(scope *Entity, p numericProp, text string) {
	switch p.kind {
	case "int":
		n, _ := strconv.Atoi(text)
		if p.keyword == "z" {
			scope.ZIndex = n
		}
	case "float":
		n, _ := strconv.ParseFloat(text, 64)
		switch p.keyword {
		case "scale":
			scope.Scale = n
		case "thickness":
			scope.Thickness = n
		case "capacity":
			scope.Capacity = n
		}
	}
}

func applyStringWord(scope *Entity, name, text string) {
	switch name {
	case "title":
		scope.Title = text
	case "value":
		scope.Value = text
	case "legend":
		scope.Legend = text
	}
}

func (v *renderVisitor) handleBlockComment(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	st := ctx.UserData.(*renderState)
	st.inComment = true
	bnf.AcceptChildren(v, n, ctx)
	st.inComment = false
}

// RenderingDecoder decodes rendering instruction text into a RenderResult.
type RenderingDecoder struct {
	grammar *bnf.Grammar
	parser  *bnf.InstructionParser
}

// NewRenderingDecoder parses and verifies the embedded rendering grammar.
func NewRenderingDecoder() (*RenderingDecoder, error) {
	g, err := bnf.ParseGrammar(renderGrammarText)
	if err != nil {
		return nil, cerr.New("building rendering grammar", err)
	}
	return &RenderingDecoder{grammar: g, parser: bnf.NewInstructionParser(g)}, nil
}

// Decode parses text against the rendering grammar and walks the resulting
// tree into a RenderResult.
func (d *RenderingDecoder) Decode(text string) (*RenderResult, error) {
	root, err := d.parser.ParseInstruction(text)
	if err != nil {
		return nil, cerr.New("decoding rendering instruction", err, cerr.ErrDecode)
	}

	result := &RenderResult{}
	topScope := &Entity{}
	state := &renderState{result: result, scope: []*Entity{topScope}}
	v := newRenderVisitor()
	ctx := bnf.NewVisitorContext(state)
	bnf.Accept(v, root, ctx)
	return result, nil
}
