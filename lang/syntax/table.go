// Package syntax implements Smile's user-extensible custom-syntax engine
// (spec.md §4.3): a per-scope, reference-counted copy-on-write trie of
// "#syntax CLASS: [pattern] => template" rules, grounded on the original
// interpreter's ParserSyntaxTable/ParserSyntaxClass/ParserSyntaxNode
// (smilelib/src/parsing/parser/parsersyntaxtable.c), which the Go module's
// teacher (mna/nenuphar) has no equivalent of.
//
// A Table maps a class symbol (e.g. "_stmt", or a user-chosen custom name)
// to a Class: a trie node holding either a flat set of terminal children
// (keyed by the literal keyword's symbol) or, exclusively, a single
// nonterminal child (keyed by the referenced class's symbol). Each path
// through the trie from a Class's root to a leaf Node carrying a
// Replacement spells one rule's pattern in order.
//
// Tables, Classes and Nodes are shared structures: every scope starts as a
// copy of its parent's Table (an O(1) "vfork" of the root, not a deep
// clone), and only the nodes actually mutated by a later #syntax
// declaration in that scope are cloned, via AddRule's calls to vfork at
// every level it needs to change. Scopes that never declare their own rules
// never pay for a clone at all.
package syntax

import (
	"fmt"

	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/value"
)

// MaxPatternDepth bounds how many elements a single rule's pattern may
// contain, mirroring the original's fixed 256-element limit.
const MaxPatternDepth = 256

// Node is one trie edge-and-leaf: the edge is (IsNonterminal, Name,
// Variable, Repeat, Sep) identifying what it matches and, for a
// nonterminal, what variable name captures it; the leaf, present only once
// a rule's pattern ends here, is (Replacement, ReplacementVars).
type Node struct {
	refCount int

	IsNonterminal bool
	Name          symbol.ID // terminal: the literal keyword; nonterminal: the referenced class
	Variable      symbol.ID // nonterminal only: the binding name in Replacement
	Repeat        value.RepeatKind
	Sep           value.RepeatSep

	Next *Class // trie continuation for the pattern element after this one

	Replacement     value.Object // non-nil only at a rule's final element
	ReplacementVars []symbol.ID  // nonterminal variable names, in pattern order
}

func (n *Node) vfork() *Node {
	if n.refCount <= 1 {
		return n
	}
	clone := *n
	clone.refCount = 1
	if clone.Next != nil {
		clone.Next.refCount++
	}
	return &clone
}

// Class is one syntax class's pattern trie: a dictionary of Nodes that is
// either all-terminal or (exclusively) a single nonterminal, per spec.md
// Invariant 4.
type Class struct {
	refCount int

	IsNonterminal bool
	Dict          map[symbol.ID]*Node
}

func newClass() *Class {
	return &Class{refCount: 1, Dict: make(map[symbol.ID]*Node)}
}

func (c *Class) vfork() *Class {
	if c.refCount <= 1 {
		return c
	}
	clone := &Class{refCount: 1, IsNonterminal: c.IsNonterminal, Dict: make(map[symbol.ID]*Node, len(c.Dict))}
	for k, n := range c.Dict {
		n.refCount++
		clone.Dict[k] = n
	}
	return clone
}

// Table is the root of the trie: a symbol-keyed map of syntax classes, one
// per scope (spec.md §4.3's "Data structure").
type Table struct {
	refCount int
	Classes  map[symbol.ID]*Class
}

// NewTable returns an empty table with no rules.
func NewTable() *Table {
	return &Table{refCount: 1, Classes: make(map[symbol.ID]*Class)}
}

// Fork returns a table a child scope can extend independently of t: an O(1)
// "vfork" that shares every class with t until AddRule on the fork mutates
// one. t and its fork are both left valid; AddRule never mutates either in
// place, it always returns a (possibly new) *Table.
func (t *Table) Fork() *Table {
	t.refCount++
	return t
}

func (t *Table) vfork() *Table {
	if t.refCount <= 1 {
		return t
	}
	clone := &Table{refCount: 1, Classes: make(map[symbol.ID]*Class, len(t.Classes))}
	for k, c := range t.Classes {
		c.refCount++
		clone.Classes[k] = c
	}
	return clone
}

// class returns t's Class for cls, or nil if no rule has ever targeted it.
func (t *Table) class(cls symbol.ID) *Class {
	return t.Classes[cls]
}

// Class returns t's Class for cls, or nil if no rule has ever targeted it.
// Used by package lang/parser to look up a class's rules from outside this
// package (see Matcher/Apply in match.go).
func (t *Table) Class(cls symbol.ID) *Class {
	return t.class(cls)
}

// PatternElem is one element of a rule's pattern: either a literal terminal
// keyword or a nonterminal reference, matching the two kinds of values that
// appear in a value.Syntax.Pattern list.
type PatternElem struct {
	IsNonterminal bool
	Name          symbol.ID // terminal: the keyword; nonterminal: the referenced class
	Variable      symbol.ID // nonterminal only
	Repeat        value.RepeatKind
	Sep           value.RepeatSep
}

// AddRule inserts a new rule into t for class cls, returning the table
// that includes it. When no Fork shares t (its reference count is 1), t
// itself is updated in place and returned; otherwise the levels that change
// are cloned and t is left as it was. On error t is returned and nothing is
// installed.
//
// AddRule enforces spec.md §4.3's validation contract: non-empty pattern,
// max depth, no '?'/'*' repeat on the first element, ambiguity rejection
// when a dictionary already committed to terminals-only or a single
// nonterminal, the reserved classes' extra shape constraints, a cycle
// check over the "first-nonterminal-of-rule" graph, and duplicate/absent
// replacement rejection at the leaf.
func AddRule(t *Table, cls symbol.ID, pattern []PatternElem, replacement value.Object, replacementVars []symbol.ID) (*Table, error) {
	if len(pattern) == 0 {
		return t, fmt.Errorf("syntax: pattern for class %q must be non-empty", cls.String())
	}
	if len(pattern) > MaxPatternDepth {
		return t, fmt.Errorf("syntax: pattern for class %q exceeds the maximum of %d elements", cls.String(), MaxPatternDepth)
	}
	if pattern[0].IsNonterminal && (pattern[0].Repeat == value.RepeatQuestion || pattern[0].Repeat == value.RepeatStar) {
		return t, fmt.Errorf("syntax: the first element of a pattern cannot repeat with '%s' (only '+' is allowed there)", pattern[0].Repeat)
	}
	if replacement == nil {
		return t, fmt.Errorf("syntax: pattern for class %q has no replacement", cls.String())
	}
	if symbol.IsReservedClass(cls) {
		if err := validateReservedClassPattern(cls, pattern); err != nil {
			return t, err
		}
	}
	if err := validateNoCycle(t, cls, pattern[0]); err != nil {
		return t, err
	}

	nt := t.vfork()
	root := nt.class(cls)
	if root == nil {
		root = newClass()
	} else {
		root = root.vfork()
	}

	newRoot, err := extend(root, pattern, 0, replacement, replacementVars)
	if err != nil {
		return t, err
	}
	nt.Classes[cls] = newRoot
	return nt, nil
}

// extend installs pattern[i:] under class c (already vforked by the
// caller), returning the updated class. It vforks every Node and Class it
// descends through only when that node is actually about to be mutated, so
// unrelated rules sharing a prefix are left untouched.
func extend(c *Class, pattern []PatternElem, i int, replacement value.Object, replacementVars []symbol.ID) (*Class, error) {
	elem := pattern[i]

	if len(c.Dict) > 0 {
		if c.IsNonterminal != elem.IsNonterminal {
			if c.IsNonterminal {
				return nil, fmt.Errorf("syntax: cannot add a terminal pattern where a nonterminal rule is already registered (ambiguous)")
			}
			return nil, fmt.Errorf("syntax: cannot add a nonterminal pattern where terminal rules are already registered (ambiguous)")
		}
		if c.IsNonterminal {
			// A nonterminal dictionary holds exactly one child (spec.md
			// Invariant 4): any existing entry must match this element exactly.
			for _, existing := range c.Dict {
				if existing.Name != elem.Name || existing.Variable != elem.Variable ||
					existing.Repeat != elem.Repeat || existing.Sep != elem.Sep {
					return nil, fmt.Errorf("syntax: conflicting nonterminal pattern element (ambiguous fork on %q)", elem.Name.String())
				}
			}
		}
	}

	node, ok := c.Dict[elem.Name]
	if !ok {
		node = &Node{refCount: 1, IsNonterminal: elem.IsNonterminal, Name: elem.Name, Variable: elem.Variable, Repeat: elem.Repeat, Sep: elem.Sep}
	} else {
		node = node.vfork()
	}
	c.Dict[elem.Name] = node
	c.IsNonterminal = elem.IsNonterminal

	if i == len(pattern)-1 {
		if node.Replacement != nil {
			return nil, fmt.Errorf("syntax: duplicate pattern (a rule with this exact pattern is already registered)")
		}
		node.Replacement = replacement
		node.ReplacementVars = replacementVars
		return c, nil
	}

	next := node.Next
	if next == nil {
		next = newClass()
	} else {
		next = next.vfork()
	}
	next, err := extend(next, pattern, i+1, replacement, replacementVars)
	if err != nil {
		return nil, err
	}
	node.Next = next
	return c, nil
}

// validateNoCycle walks the "first-nonterminal-of-rule" chain starting from
// first (pattern[0] of the rule being added): if first is itself a
// nonterminal, follow whichever single nonterminal already roots the
// referenced class, and so on, rejecting if the chain ever returns to cls
// (spec.md Invariant 5, preventing infinite left recursion). A chain that
// reaches a terminal-rooted or not-yet-defined class is safe.
func validateNoCycle(t *Table, cls symbol.ID, first PatternElem) error {
	if !first.IsNonterminal {
		return nil
	}
	seen := map[symbol.ID]bool{cls: true}
	next := first.Name
	for {
		if seen[next] {
			return fmt.Errorf("syntax: rule for class %q would create a left-recursive cycle through %q", cls.String(), next.String())
		}
		seen[next] = true

		c := t.class(next)
		if c == nil || !c.IsNonterminal || len(c.Dict) == 0 {
			return nil
		}
		var only *Node
		for _, n := range c.Dict {
			only = n
		}
		if !only.IsNonterminal {
			return nil
		}
		next = only.Name
	}
}

// validateReservedClassPattern enforces the extra per-class shape
// constraints spec.md §4.3 places on the nine built-in precedence-ladder
// classes, grounded on the original's Parser_ValidateSpecialSyntaxClasses.
func validateReservedClassPattern(cls symbol.ID, pattern []PatternElem) error {
	startsWithKeyword := !pattern[0].IsNonterminal

	switch cls {
	case symbol.ClassStmt, symbol.ClassExpr, symbol.ClassUnary, symbol.ClassTerm:
		if !startsWithKeyword {
			return fmt.Errorf("syntax: patterns in the %q class must start with a keyword", cls.String())
		}
		return nil

	case symbol.ClassCmpExpr:
		return validateChainedClass(cls, pattern, symbol.ClassAddExpr, isCmpOp)
	case symbol.ClassAddExpr:
		return validateChainedClass(cls, pattern, symbol.ClassMulExpr, isAddOp)
	case symbol.ClassMulExpr:
		return validateChainedClass(cls, pattern, symbol.ClassBinary, isMulOp)
	case symbol.ClassBinary:
		return validateChainedClass(cls, pattern, symbol.Invalid, nil)
	case symbol.ClassPostfix:
		return validateChainedClass(cls, pattern, symbol.Invalid, nil)
	}
	return nil
}

// validateChainedClass enforces the "starts with a keyword, or with a
// nonterminal of wantClass followed by a keyword that is not one of the
// operators this level itself consumes" shape shared by CMPEXPR, ADDEXPR
// and MULEXPR, and (with no forbidden-operator set) by BINARYEXPR and
// POSTFIXEXPR.
func validateChainedClass(cls symbol.ID, pattern []PatternElem, wantClass symbol.ID, forbidden func(symbol.ID) bool) error {
	if !pattern[0].IsNonterminal {
		return nil
	}
	if wantClass != symbol.Invalid && pattern[0].Name != wantClass {
		return fmt.Errorf("syntax: patterns in the %q class must start with a keyword or a %q nonterminal", cls.String(), wantClass.String())
	}
	if len(pattern) < 2 || pattern[1].IsNonterminal {
		return fmt.Errorf("syntax: patterns in the %q class must have a keyword as their second element when the first is a nonterminal", cls.String())
	}
	if forbidden != nil && forbidden(pattern[1].Name) {
		return fmt.Errorf("syntax: patterns in the %q class cannot use one of this level's own operators as their second element", cls.String())
	}
	return nil
}

func isCmpOp(s symbol.ID) bool {
	switch s {
	case symbol.OpLt, symbol.OpGt, symbol.OpLe, symbol.OpGe, symbol.OpEq, symbol.OpNe, symbol.OpSeq, symbol.OpSne, symbol.OpIs:
		return true
	}
	return false
}

func isAddOp(s symbol.ID) bool { return s == symbol.OpAdd || s == symbol.OpSub }
func isMulOp(s symbol.ID) bool { return s == symbol.OpMul || s == symbol.OpDiv }
