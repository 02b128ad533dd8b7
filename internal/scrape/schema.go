package scrape

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/backyonatan-alt/coronastats/internal/model"
)

// SchemaVersion identifies the page layout the schemas below describe.
// Bump it whenever a selector, path or column index changes.
const SchemaVersion = "worldometers/2020-03"

// ErrParseMiss matches every *ParseMiss via errors.Is.
var ErrParseMiss = errors.New("parse miss")

// ParseMiss reports that the document does not have the shape a schema
// expects. Extraction results returned alongside it are partial.
type ParseMiss struct {
	Schema string
	Anchor string
	Want   int
	Got    int
	Detail string
}

func (e *ParseMiss) Error() string {
	msg := fmt.Sprintf("%s: %s: %s: want %d, got %d", ErrParseMiss, e.Schema, e.Anchor, e.Want, e.Got)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ParseMiss) Is(target error) bool {
	return target == ErrParseMiss
}

// Step is one structural move from a DOM node.
type Step int

const (
	FirstChild Step = iota
	NextSibling
)

func (s Step) String() string {
	switch s {
	case FirstChild:
		return "firstChild"
	case NextSibling:
		return "nextSibling"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// NodePath is a fixed sequence of steps that leads from an anchor node to
// the node holding a value.
type NodePath []Step

func Path(steps ...Step) NodePath {
	return NodePath(steps)
}

// Resolve follows the path from n, returning nil as soon as a step leads
// nowhere.
func (p NodePath) Resolve(n *html.Node) *html.Node {
	for _, step := range p {
		if n == nil {
			return nil
		}
		switch step {
		case FirstChild:
			n = n.FirstChild
		case NextSibling:
			n = n.NextSibling
		default:
			return nil
		}
	}
	return n
}

// Text returns the raw data of the node at the end of the path when it is
// a text node, and "" otherwise.
func (p NodePath) Text(n *html.Node) string {
	target := p.Resolve(n)
	if target == nil || target.Type != html.TextNode {
		return ""
	}
	return target.Data
}

func (p NodePath) String() string {
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = step.String()
	}
	return strings.Join(parts, "/")
}

// CounterField binds the n-th matched anchor to a GlobalSnapshot field.
type CounterField struct {
	Name string
	Set  func(*model.GlobalSnapshot, int64)
}

// CounterSchema describes the headline counters: every element matching
// Selector carries one value at Path, mapped to Fields by order of
// appearance.
type CounterSchema struct {
	Version  string
	Selector string
	Path     NodePath
	Fields   []CounterField
}

// Column binds a numeric table column to a CountryRecord field.
type Column struct {
	Index int
	Name  string
	Set   func(*model.CountryRecord, int64)
}

// TableSchema describes a table whose body cells are read as one flat
// sequence, Width cells per row.
type TableSchema struct {
	Version string
	// Selector locates the table. Rows are its direct tbody > tr > td children.
	Selector string
	Width    int
	// NameColumn holds the row label, resolved through NamePaths in order.
	NameColumn int
	NamePaths  []NodePath
	// NameFallback is read when every NamePaths candidate trims to "".
	NameFallback NodePath
	Columns      []Column
	// TrailingRows are dropped from the end, e.g. a totals row.
	TrailingRows int
}

// columnAt returns the numeric columns indexed by cell position; ignored
// positions are nil.
func (s TableSchema) columnAt() []*Column {
	at := make([]*Column, s.Width)
	for i := range s.Columns {
		col := &s.Columns[i]
		if col.Index >= 0 && col.Index < s.Width {
			at[col.Index] = col
		}
	}
	return at
}

// GlobalCounters is the layout of the three headline counters. The page
// gives them no labels, so reordering on the page would mislabel them.
var GlobalCounters = CounterSchema{
	Version:  SchemaVersion,
	Selector: ".maincounter-number",
	Path:     Path(FirstChild, NextSibling, FirstChild),
	Fields: []CounterField{
		{Name: "cases", Set: func(g *model.GlobalSnapshot, v int64) { g.Cases = model.Int64(v) }},
		{Name: "deaths", Set: func(g *model.GlobalSnapshot, v int64) { g.Deaths = model.Int64(v) }},
		{Name: "recovered", Set: func(g *model.GlobalSnapshot, v int64) { g.Recovered = model.Int64(v) }},
	},
}

// CountryColumns is the layout of the per-country table. Columns 6 and 8
// are not read.
var CountryColumns = TableSchema{
	Version:    SchemaVersion,
	Selector:   "table#main_table_countries",
	Width:      9,
	NameColumn: 0,
	NamePaths: []NodePath{
		Path(FirstChild),
		Path(FirstChild, FirstChild),
		// name inside a link
		Path(FirstChild, FirstChild, FirstChild),
		// name inside a link and a formatting element
		Path(FirstChild, FirstChild, FirstChild, FirstChild),
	},
	NameFallback: Path(FirstChild, NextSibling, FirstChild),
	Columns: []Column{
		{Index: 1, Name: "cases", Set: func(r *model.CountryRecord, v int64) { r.Cases = v }},
		{Index: 2, Name: "todayCases", Set: func(r *model.CountryRecord, v int64) { r.TodayCases = v }},
		{Index: 3, Name: "deaths", Set: func(r *model.CountryRecord, v int64) { r.Deaths = v }},
		{Index: 4, Name: "todayDeaths", Set: func(r *model.CountryRecord, v int64) { r.TodayDeaths = v }},
		{Index: 5, Name: "recovered", Set: func(r *model.CountryRecord, v int64) { r.Recovered = v }},
		{Index: 7, Name: "critical", Set: func(r *model.CountryRecord, v int64) { r.Critical = v }},
	},
	TrailingRows: 1,
}
