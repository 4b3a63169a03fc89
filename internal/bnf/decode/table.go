package decode

import (
	"strings"

	"github.com/cuwacunu/camahjucunu/internal/bnf"
	"github.com/cuwacunu/camahjucunu/internal/cerr"
	"github.com/dekarrin/rosed"
)

// tableGrammarText is the embedded grammar for the table instruction
// format: one or more pipe-delimited tables, each opened by a bare title
// line and closed by a fixed divider, e.g.:
//
//	loss_functions_table
//	====
//	|row_id|type|options|
//	|vr|VICReg|"sim_coeff=25,std_coeff=25,cov_coeff=1,huber_delta=1"|
//	====
var tableGrammarText = `
<instruction> ::= { <table_entry> } ;
<table_entry> ::= <table> ;
<table> ::= <table_title> <newline> <table_divider_line> <header_line> { <item_line> } <table_bottom_line> ;
<table_divider_line> ::= "====" <newline> ;
<table_bottom_line> ::= "====" <newline> ;
<table_title> ::= { <field_char> } ;
<header_line> ::= <line_start> { <cell_group> } <line_ending> ;
<item_line> ::= <line_start> { <cell_group> } <line_ending> ;
<cell_group> ::= <cell> <div> ;
<line_start> ::= "|" ;
<line_ending> ::= <newline> ;
<cell> ::= <field> ;
<field> ::= { <field_char> } ;
<div> ::= "|" ;
<newline> ::= "\n" ;
` + buildCharClassGrammar()

// Row is a single table record keyed by column name. By convention the
// first column of every table is "row_id".
type Row map[string]string

// Table is an ordered list of rows, in the order they appeared in the
// source instruction.
type Table []Row

// TableSet is the decoded result of a table instruction: every table,
// keyed by title, plus the raw (label, value) event log the decoder built
// the tables from.
type TableSet struct {
	Tables map[string]Table
	order  []string
	Raw    []RawEvent
}

// RawEvent is one entry of the decode pass's event log, mirroring the
// label/value pairs a table decode accumulates while walking the tree.
type RawEvent struct {
	Label string
	Value string
}

// Names returns the decoded table titles in source order.
func (ts *TableSet) Names() []string {
	return append([]string(nil), ts.order...)
}

// GetTable returns the table with the given title.
func (ts *TableSet) GetTable(name string) (Table, bool) {
	t, ok := ts.Tables[name]
	return t, ok
}

// GetRow returns the row whose "row_id" column equals rowID.
func (ts *TableSet) GetRow(table, rowID string) (Row, bool) {
	t, ok := ts.Tables[table]
	if !ok {
		return nil, false
	}
	for _, row := range t {
		if row["row_id"] == rowID {
			return row, true
		}
	}
	return nil, false
}

// GetField returns a single field of a single row.
func (ts *TableSet) GetField(table, rowID, column string) (string, bool) {
	row, ok := ts.GetRow(table, rowID)
	if !ok {
		return "", false
	}
	v, ok := row[column]
	return v, ok
}

// String renders the decoded tables as fixed-width text, one table at a
// time, for logging and debugging.
func (ts *TableSet) String() string {
	var sb strings.Builder
	for _, name := range ts.order {
		t := ts.Tables[name]
		sb.WriteString(name)
		sb.WriteString("\n")
		if len(t) == 0 {
			continue
		}
		var cols []string
		for c := range t[0] {
			cols = append(cols, c)
		}
		data := [][]string{cols}
		for _, row := range t {
			rowData := make([]string, len(cols))
			for i, c := range cols {
				rowData[i] = row[c]
			}
			data = append(data, rowData)
		}
		sb.WriteString(rosed.
			Edit("").
			InsertTableOpts(0, data, 20, rosed.Options{
				TableHeaders:             true,
				NoTrailingLineSeparators: true,
			}).
			String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParseKV parses a comma-separated key=value / bare-key argument string,
// the shape table "options" columns commonly carry (e.g.
// `sim_coeff=25,std_coeff=25`). Bare keys map to the empty string.
func ParseKV(s string) map[string]string {
	out := map[string]string{}
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '='); i >= 0 {
			out[part[:i]] = part[i+1:]
		} else {
			out[part] = ""
		}
	}
	return out
}

// TableDecoder decodes table instruction text into a TableSet. It builds a
// fresh Grammar and InstructionParser on construction and is safe to reuse
// across multiple Decode calls, but not safe for concurrent use (the
// underlying InstructionParser is stateful).
type TableDecoder struct {
	grammar *bnf.Grammar
	parser  *bnf.InstructionParser
}

// NewTableDecoder parses and verifies the embedded table grammar.
func NewTableDecoder() (*TableDecoder, error) {
	g, err := bnf.ParseGrammar(tableGrammarText)
	if err != nil {
		return nil, cerr.New("building table grammar", err)
	}
	return &TableDecoder{grammar: g, parser: bnf.NewInstructionParser(g)}, nil
}

// Decode parses text against the table grammar and walks the resulting
// tree into a TableSet.
func (d *TableDecoder) Decode(text string) (*TableSet, error) {
	root, err := d.parser.ParseInstruction(text)
	if err != nil {
		return nil, cerr.New("decoding table instruction", err, cerr.ErrDecode)
	}

	ts := &TableSet{Tables: map[string]Table{}}
	state := &tableVisitorState{set: ts}
	v := &tableVisitor{}
	ctx := bnf.NewVisitorContext(state)
	bnf.Accept(v, root, ctx)
	return ts, nil
}

type stagingTable struct {
	name    string
	columns []string
	colIdx  int
	rows    []Row
	curRow  Row
}

type tableVisitorState struct {
	set     *TableSet
	current *stagingTable
	elem    strings.Builder
}

type tableVisitor struct{}

func (v *tableVisitor) VisitRoot(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	bnf.AcceptChildren(v, n, ctx)
}

func (v *tableVisitor) VisitIntermediary(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	st := ctx.UserData.(*tableVisitorState)
	name := n.Alternative.LHS

	switch name {
	case "table":
		st.current = &stagingTable{}
		bnf.AcceptChildren(v, n, ctx)
		if st.current != nil {
			st.set.order = append(st.set.order, st.current.name)
			st.set.Tables[st.current.name] = st.current.rows
		}
	case "table_title":
		st.elem.Reset()
		bnf.AcceptChildren(v, n, ctx)
		title := strings.ReplaceAll(st.elem.String(), `"`, "")
		st.current.name = title
		st.set.Raw = append(st.set.Raw, RawEvent{Label: "TABLE_TITLE", Value: title})
	case "header_line":
		st.current.colIdx = 0
		bnf.AcceptChildren(v, n, ctx)
		st.set.Raw = append(st.set.Raw, RawEvent{Label: "HEADER_LINE", Value: strings.Join(st.current.columns, "|")})
	case "item_line":
		st.current.curRow = Row{}
		st.current.colIdx = 0
		bnf.AcceptChildren(v, n, ctx)
		if len(st.current.curRow) > 0 {
			st.current.rows = append(st.current.rows, st.current.curRow)
		}
		vals := make([]string, 0, len(st.current.columns))
		for _, c := range st.current.columns {
			vals = append(vals, st.current.curRow[c])
		}
		st.set.Raw = append(st.set.Raw, RawEvent{Label: "ITEM_LINE", Value: strings.Join(vals, "|")})
	case "field":
		st.elem.Reset()
		bnf.AcceptChildren(v, n, ctx)
		text := strings.ReplaceAll(st.elem.String(), `"`, "")
		switch {
		case ctx.Under("header_line"):
			st.current.columns = append(st.current.columns, text)
		case ctx.Under("item_line"):
			if st.current.colIdx < len(st.current.columns) {
				st.current.curRow[st.current.columns[st.current.colIdx]] = text
				st.current.colIdx++
			}
		}
	default:
		bnf.AcceptChildren(v, n, ctx)
	}
}

func (v *tableVisitor) VisitTerminal(n *bnf.ASTNode, ctx *bnf.VisitorContext) {
	st := ctx.UserData.(*tableVisitorState)
	if ctx.Under("table_title") || ctx.Under("field") {
		st.elem.WriteString(n.Text())
	}
}
