package value

import "github.com/mna/smile/lang/symbol"

// Symbol is the boxed Kind wrapping an interned symbol id; comparison is
// integer equality (spec.md §3).
type Symbol symbol.ID

func (s Symbol) Kind() Kind       { return KindSymbol }
func (s Symbol) ToBool() bool     { return true }
func (s Symbol) ToString() string { return "#" + symbol.ID(s).String() }
func (s Symbol) Hash() uint64     { return uint64(s) }
func (s Symbol) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (s Symbol) CompareEqual(other Object) bool {
	os, ok := other.(Symbol)
	return ok && os == s
}

// Name returns the interned textual spelling of the symbol.
func (s Symbol) Name() string {
	if name, ok := symbol.Lookup(symbol.ID(s)); ok {
		return name
	}
	return ""
}

var _ Equaler = Symbol(0)

// Char is a single byte (Latin-1-range character), the narrow counterpart
// to Uni.
type Char byte

func (c Char) Kind() Kind       { return KindChar }
func (c Char) ToBool() bool     { return true }
func (c Char) ToString() string { return string(rune(c)) }
func (c Char) Hash() uint64     { return uint64(c) }
func (c Char) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (c Char) CompareEqual(other Object) bool {
	oc, ok := other.(Char)
	return ok && oc == c
}

var _ Equaler = Char(0)

// Uni is a full Unicode code point.
type Uni rune

func (u Uni) Kind() Kind       { return KindUni }
func (u Uni) ToBool() bool     { return true }
func (u Uni) ToString() string { return string(rune(u)) }
func (u Uni) Hash() uint64     { return uint64(u) }
func (u Uni) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (u Uni) CompareEqual(other Object) bool {
	ou, ok := other.(Uni)
	return ok && ou == u
}

var _ Equaler = Uni(0)
