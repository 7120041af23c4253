package syntax

import (
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
)

// Matcher is implemented by the parser so Apply can drive a trie walk
// without this package depending on package parser: PeekTerminal/
// ConsumeTerminal read the token stream one terminal at a time, and
// ParseNonterminal recursively invokes the built-in precedence-ladder
// production (after first trying cls's own rules again, same as any other
// call into that level) for a nonterminal pattern element.
type Matcher interface {
	// PeekTerminal returns the symbol id the current token would intern to
	// (an identifier or operator spelling) and true, or false if the current
	// token cannot possibly match a terminal pattern element (e.g. EOF or a
	// literal that isn't spelled as a bare symbol).
	PeekTerminal() (symbol.ID, bool)
	// ConsumeTerminal advances past the token last reported by PeekTerminal.
	ConsumeTerminal()
	// ParseNonterminal parses one instance of cls starting at the current
	// token. ok is false if cls has no built-in production that could start
	// here and no custom rule matched either (used to end a repeating
	// nonterminal element, or to fall back to a shorter already-matched
	// rule).
	ParseNonterminal(cls symbol.ID) (value.Object, bool)
}

// Apply tries to match the longest rule registered in c against the input
// m exposes, substituting matched nonterminal captures into the winning
// rule's replacement template. ok is false if no rule in c matches at all,
// in which case m is left exactly as it was (Apply never consumes a
// terminal token or parses a nonterminal unless some rule could still be
// completed afterward, since AddRule's ambiguity checks guarantee each
// dictionary is either all-terminal or a single nonterminal -- there is
// never a need to backtrack across alternatives at the same level, only to
// fall back from a longer match to a shorter already-valid prefix).
func Apply(c *Class, m Matcher) (value.Object, bool) {
	if c == nil || len(c.Dict) == 0 {
		return nil, false
	}
	vars := make(map[symbol.ID]value.Object)
	node, ok := matchNode(c, m, vars)
	if !ok {
		return nil, false
	}
	return substitute(node.Replacement, vars), true
}

func matchNode(c *Class, m Matcher, vars map[symbol.ID]value.Object) (*Node, bool) {
	if len(c.Dict) == 0 {
		return nil, false
	}

	var node *Node
	if c.IsNonterminal {
		for _, n := range c.Dict {
			node = n
		}
		captured, ok := matchRepeated(node, m)
		if !ok {
			return nil, false
		}
		vars[node.Variable] = captured
	} else {
		sym, ok := m.PeekTerminal()
		if !ok {
			return nil, false
		}
		n, found := c.Dict[sym]
		if !found {
			return nil, false
		}
		m.ConsumeTerminal()
		node = n
	}

	if node.Next != nil {
		if deeper, ok := matchNode(node.Next, m, vars); ok {
			return deeper, true
		}
	}
	if node.Replacement != nil {
		return node, true
	}
	return nil, false
}

// matchRepeated parses one or more instances of node's referenced class per
// node.Repeat/node.Sep, returning the single parsed value (RepeatNone), the
// parsed value or Null (RepeatQuestion), or a proper list of parsed values
// (RepeatStar/RepeatPlus).
func matchRepeated(node *Node, m Matcher) (value.Object, bool) {
	switch node.Repeat {
	case value.RepeatNone:
		return m.ParseNonterminal(node.Name)

	case value.RepeatQuestion:
		v, ok := m.ParseNonterminal(node.Name)
		if !ok {
			return value.Null, true
		}
		return v, true

	case value.RepeatStar, value.RepeatPlus:
		var elems []value.Object
		for {
			v, ok := m.ParseNonterminal(node.Name)
			if !ok {
				break
			}
			elems = append(elems, v)
			if node.Sep != value.SepNone {
				sym, has := m.PeekTerminal()
				if !has || sym != sepSymbol(node.Sep) {
					break
				}
				m.ConsumeTerminal()
			}
		}
		if node.Repeat == value.RepeatPlus && len(elems) == 0 {
			return nil, false
		}
		return value.OfSlice(elems...), true

	default:
		return nil, false
	}
}

var (
	symComma = symbol.Intern(",")
	symSemi  = symbol.Intern(";")
	symList  = symbol.Intern("List")
	symCons  = symbol.Intern("cons")
	symOf    = symbol.Intern("of")
	symJoin  = symbol.Intern("combine")
)

func sepSymbol(s value.RepeatSep) symbol.ID {
	if s == value.SepSemi {
		return symSemi
	}
	return symComma
}

// substitute instantiates a matched rule's replacement template by walking
// it and replacing every symbol leaf that names a captured nonterminal
// variable with its capture, per spec.md §4.3's "substitute into the
// replacement". [$quote x] passes x through untouched (no substitution
// inside it, letting a template embed a literal symbol that happens to
// share a name with a capture); [List.cons a b], [List.of ...] and
// [List.combine ...] build a list out of their (recursively substituted)
// arguments instead of appearing literally in the output, so a rule's
// replacement can assemble a tree shape around a repeated ('*'/'+')
// capture's elements.
func substitute(tmpl value.Object, vars map[symbol.ID]value.Object) value.Object {
	switch v := tmpl.(type) {
	case value.Symbol:
		if captured, ok := vars[symbol.ID(v)]; ok {
			return captured
		}
		return v

	case *value.List:
		if sym, ok := v.Head.(value.Symbol); ok {
			switch symbol.ID(sym) {
			case symbol.Quote:
				if rest, ok := v.Tail.(*value.List); ok {
					return rest.Head
				}
			}
		}
		if args, ok := listDotCallArgs(v, symList, symCons); ok && len(args) == 2 {
			return value.Cons(substitute(args[0], vars), substitute(args[1], vars))
		}
		if args, ok := listDotCallArgs(v, symList, symOf); ok {
			return value.OfSlice(substituteAll(args, vars)...)
		}
		if args, ok := listDotCallArgs(v, symList, symJoin); ok {
			return value.Combine(substituteAll(args, vars)...)
		}

		var elems []value.Object
		value.ToSlice(v, &elems)
		return value.OfSlice(substituteAll(elems, vars)...)

	default:
		return tmpl
	}
}

func substituteAll(elems []value.Object, vars map[symbol.ID]value.Object) []value.Object {
	out := make([]value.Object, len(elems))
	for i, e := range elems {
		out[i] = substitute(e, vars)
	}
	return out
}

// listDotCallArgs reports whether list has the shape "[[$dot obj method]
// arg...]" (the call form lang/compiler.compileCall/compileMet gives a
// dotted method invocation like List.cons(a, b)) for the given obj/method
// symbols, returning its arguments.
func listDotCallArgs(list *value.List, obj, method symbol.ID) ([]value.Object, bool) {
	callee, ok := list.Head.(*value.List)
	if !ok {
		return nil, false
	}
	var parts []value.Object
	value.ToSlice(callee, &parts)
	if len(parts) != 3 {
		return nil, false
	}
	dotSym, ok1 := parts[0].(value.Symbol)
	objSym, ok2 := parts[1].(value.Symbol)
	methodSym, ok3 := parts[2].(value.Symbol)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	if symbol.ID(dotSym) != symbol.Dot || symbol.ID(objSym) != obj || symbol.ID(methodSym) != method {
		return nil, false
	}
	var args []value.Object
	value.ToSlice(list.Tail, &args)
	return args, true
}

// VerifyTemplate reports whether tmpl only uses the restricted,
// evaluable-at-parse-time forms spec.md §4.3 allows in a rule's
// replacement: constants, nonterminal references, and tree-data list
// literals built out of those (spec.md's own worked example
// "[$if c t e]" is exactly this shape: a plain literal list, the same
// bracket tree-data notation spec.md §2 uses to describe "[and a b]"),
// plus [$quote x] and the three blessed embedded calls [List.cons a b],
// [List.of ...] and [List.combine ...]. What's actually rejected is an
// embedded call shape other than those three -- a list headed by another
// list, i.e. a "[[$dot a b] ...]" method-call shape that substitute would
// otherwise leave in the output un-evaluated -- so a rule's substitution
// never has to invoke arbitrary user code while parsing.
func VerifyTemplate(tmpl value.Object) bool {
	switch v := tmpl.(type) {
	case value.Symbol:
		return true

	case *value.List:
		if v == nil {
			return true
		}
		if sym, ok := v.Head.(value.Symbol); ok && symbol.ID(sym) == symbol.Quote {
			rest, ok := v.Tail.(*value.List)
			return ok && rest.Tail == value.Null
		}
		if args, ok := listDotCallArgs(v, symList, symCons); ok {
			return len(args) == 2 && VerifyTemplate(args[0]) && VerifyTemplate(args[1])
		}
		if args, ok := listDotCallArgs(v, symList, symOf); ok {
			return verifyAll(args)
		}
		if args, ok := listDotCallArgs(v, symList, symJoin); ok {
			return verifyAll(args)
		}
		if _, ok := v.Head.(*value.List); ok {
			// headed by another list: an embedded call shape other than the
			// three blessed List.* forms handled above.
			return false
		}

		var elems []value.Object
		value.ToSlice(v, &elems)
		return verifyAll(elems)

	default:
		return true
	}
}

func verifyAll(elems []value.Object) bool {
	for _, e := range elems {
		if !VerifyTemplate(e) {
			return false
		}
	}
	return true
}
