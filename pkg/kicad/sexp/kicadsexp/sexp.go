// Package kicadsexp is a small streaming S-expression reader for KiCad
// schematics and wirenet layout documents. Atoms keep track of whether they
// were quoted so documents can be written back faithfully.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp is either an atom (Symbol, Quoted) or a *List.
type Sexp interface {
	IsLeaf() bool
	String() string
}

// Symbol is an unquoted atom: a keyword, identifier or number.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// Quoted is an atom read from a double-quoted string, unescaped.
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) String() string { return Quote(string(q)) }

// List is a parenthesized sequence. Line and Col locate its opening paren.
type List struct {
	items []Sexp
	Line  int
	Col   int
}

// NewList builds a list from items.
func NewList(items ...Sexp) *List {
	return &List{items: items}
}

func (l *List) IsLeaf() bool { return false }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// Get returns the element at index, or nil when out of range.
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.items) {
		return nil
	}
	return l.items[index]
}

// Items returns the elements. The slice must not be modified.
func (l *List) Items() []Sexp { return l.items }

// Append adds elements to the end of the list.
func (l *List) Append(items ...Sexp) { l.items = append(l.items, items...) }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, item := range l.items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(item.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Quote renders s as a double-quoted atom the Lexer reads back unchanged.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
