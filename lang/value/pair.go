package value

// Pair is a generic (left, right) cell; List is the (head, tail) cons cell
// used to build the parser's s-expression trees (spec.md §3). Both carry an
// optional SourceLocation so the parser's "each list carries a lexer
// position" requirement (spec.md §4.2) survives into the tree.
type Pair struct {
	Left, Right Object
	Loc         SourceLocation
}

func NewPair(left, right Object) *Pair { return &Pair{Left: left, Right: right} }

func (p *Pair) Kind() Kind                     { return KindPair }
func (p *Pair) ToBool() bool                   { return true }
func (p *Pair) ToString() string               { return "(" + p.Left.ToString() + " . " + p.Right.ToString() + ")" }
func (p *Pair) GetSourceLocation() SourceLocation { return p.Loc }

func (p *Pair) Hash() uint64 {
	return p.Left.Hash()*31 + p.Right.Hash()
}

func (p *Pair) CompareEqual(other Object) bool {
	op, ok := other.(*Pair)
	if !ok {
		return false
	}
	return equalObjects(p.Left, op.Left) && equalObjects(p.Right, op.Right)
}

// List is a cons cell: Head is the element, Tail is the rest of the list
// (another *List, or Null to terminate). Null also denotes the empty list.
type List struct {
	Head, Tail Object
	Loc        SourceLocation
}

func NewList(head, tail Object) *List { return &List{Head: head, Tail: tail} }

// OfSlice builds a proper list from elems, in order, terminated by Null.
func OfSlice(elems ...Object) Object {
	var tail Object = Null
	for i := len(elems) - 1; i >= 0; i-- {
		tail = &List{Head: elems[i], Tail: tail}
	}
	return tail
}

// Cons prepends head onto an existing list tail (which need not itself be a
// proper list).
func Cons(head, tail Object) Object { return &List{Head: head, Tail: tail} }

// Combine appends the proper lists in lists into a single proper list.
func Combine(lists ...Object) Object {
	var elems []Object
	for _, l := range lists {
		ToSlice(l, &elems)
	}
	return OfSlice(elems...)
}

// ToSlice appends every element of the proper list l (if it is one) to out.
func ToSlice(l Object, out *[]Object) {
	for {
		lst, ok := l.(*List)
		if !ok {
			return
		}
		*out = append(*out, lst.Head)
		l = lst.Tail
	}
}

func (l *List) Kind() Kind       { return KindList }
func (l *List) ToBool() bool     { return true }
func (l *List) GetSourceLocation() SourceLocation { return l.Loc }

func (l *List) ToString() string {
	var sb []byte
	sb = append(sb, '[')
	cur := Object(l)
	first := true
	for {
		lst, ok := cur.(*List)
		if !ok {
			break
		}
		if !first {
			sb = append(sb, ' ')
		}
		first = false
		sb = append(sb, lst.Head.ToString()...)
		cur = lst.Tail
	}
	sb = append(sb, ']')
	return string(sb)
}

func (l *List) Hash() uint64 {
	h := uint64(1)
	cur := Object(l)
	for {
		lst, ok := cur.(*List)
		if !ok {
			break
		}
		h = h*31 + lst.Head.Hash()
		cur = lst.Tail
	}
	return h
}

func (l *List) CompareEqual(other Object) bool {
	a, b := Object(l), other
	for {
		la, aok := a.(*List)
		lb, bok := b.(*List)
		if aok != bok {
			return false
		}
		if !aok {
			return equalObjects(a, b)
		}
		if !equalObjects(la.Head, lb.Head) {
			return false
		}
		a, b = la.Tail, lb.Tail
	}
}

// equalObjects is the structural-or-identity equality used throughout the
// value package: it consults Equaler when available, falling back to Go
// identity (pointer or comparable-value equality) otherwise, per spec.md
// Invariant 3.
func equalObjects(a, b Object) bool {
	if ea, ok := a.(Equaler); ok {
		return ea.CompareEqual(b)
	}
	return a == b
}

var (
	_ Equaler = (*Pair)(nil)
	_ Equaler = (*List)(nil)
)
