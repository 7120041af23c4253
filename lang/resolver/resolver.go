// Package resolver walks a parsed chunk's s-expression forms and classifies
// every name they bind or reference (spec.md §4's "$set"/"$fn" forms), the
// adaptation of a Starlark-style block/scope resolver onto a homoiconic
// tree: there is no separate Expr/Stmt hierarchy to switch on, only
// lang/value.Object cons cells whose head symbol (if any) selects one of
// lang/compiler's reserved special forms.
//
// # Scopes
//
// A name resolves as "local" to the innermost enclosing $fn (the module's
// own top-level form list counts as its own implicit function), "free" if
// it is a reference to a binding declared in an enclosing $fn -- at which
// point the enclosing binding is promoted to a "cell" -- "predeclared" or
// "universal" if a name lookup predicate recognizes it, or "global"
// otherwise. Unlike Starlark, "global" is never an error: $set always
// defines-or-updates a module global when its target is not some
// enclosing function's local, matching lang/compiler's own conservative
// "every free symbol is a global" fallback.
//
// # Bindings
//
// Only two forms introduce bindings:
//   - "[$fn [params...] body...]": each parameter is a new local, scoped to
//     the function body.
//   - "[$set name value]": if name is not already bound by the innermost
//     enclosing $fn (in this block or an enclosing one of the same
//     function), it becomes a new local of that function; otherwise it is
//     a plain re-assignment to the existing binding.
package resolver

import (
	"context"
	"fmt"

	"github.com/mna/smile/lang/ast"
	"github.com/mna/smile/lang/scanner"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// Mode is a set of bit flags that configures the resolving. By default (0),
// the symbols are resolved, all errors are reported and blocks are not
// given unique names.
type Mode uint

// List of supported resolver modes, which can be combined with bitwise or.
const (
	NameBlocks Mode = 1 << iota // give unique names to blocks, useful for printing.
)

// ResolveFiles takes the chunks from a successful parse result and
// classifies the bindings used in their source code (spec.md §4's "$set"/
// "$fn" forms), reporting any malformed special-form shape it finds along
// the way.
//
// fset is accepted for symmetry with the parser/scanner pipeline, but is
// unused: every lang/value.Object s-expression node already carries its own
// resolved SourceLocation (filename/line/column), unlike go/token.Pos,
// which needs a *token.File to decode.
//
// An AST that resulted in errors in the parse phase should never be passed
// to the resolver, the behavior is undefined.
//
// The returned error, if non-nil, is guaranteed to be a scanner.ErrorList.
func ResolveFiles(ctx context.Context, fset *token.FileSet, chunks []*ast.Chunk,
	mode Mode, isPredeclared, isUniversal func(name string) bool) error {
	_ = fset
	if len(chunks) == 0 {
		return nil
	}

	var r resolver
	r.isPredeclared = isPredeclared
	if isPredeclared == nil {
		r.isPredeclared = func(string) bool { return false }
	}
	r.isUniversal = isUniversal
	if isUniversal == nil {
		r.isUniversal = func(string) bool { return false }
	}

	for _, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.name = ch.Name
		r.globals = make(map[string]*Binding)
		r.env = nil
		r.root = nil

		top := &block{fn: &Function{Definition: ch}}
		r.push(top)
		for _, form := range ch.Forms {
			r.expr(form)
		}
		r.pop()

		if mode&NameBlocks != 0 {
			r.nameBlocks()
		}
	}
	r.errors.Sort()
	return r.errors.Err()
}

// block is one lexical scope: a $fn body, or a nested $progn inside one.
// Every block belongs to exactly one enclosing Function; a $progn block
// shares its parent's fn, a $fn block starts a new one.
type block struct {
	parent   *block
	children []*block
	fn       *Function
	bindings map[string]*Binding

	name string // filled in by nameBlocks, empty otherwise
}

type resolver struct {
	name   string // current chunk's filename, for error positions
	errors scanner.ErrorList

	// env is the current innermost block; root is env's ultimate ancestor
	// for the chunk currently being resolved.
	env, root *block

	// globals caches the Predeclared/Universal/Global binding for each name
	// the first time it is referenced, so repeated references to the same
	// global name share one Binding.
	globals map[string]*Binding

	// curLoc is the most recent non-zero source location seen, used to
	// report errors for forms (e.g. bare symbols) whose own
	// GetSourceLocation is the zero value.
	curLoc value.SourceLocation

	isPredeclared, isUniversal func(name string) bool
}

func (r *resolver) push(b *block) {
	if r.env == nil {
		r.root = b
	} else {
		r.env.children = append(r.env.children, b)
		if b.fn == nil {
			b.fn = r.env.fn
		}
	}
	b.parent = r.env
	b.bindings = make(map[string]*Binding)
	r.env = b
}

func (r *resolver) pop() { r.env = r.env.parent }

func (r *resolver) errorf(format string, args ...any) {
	pos := token.Position{Filename: r.curLoc.Filename, Line: r.curLoc.Line, Col: r.curLoc.Column}
	r.errors.Add(pos, fmt.Sprintf(format, args...))
}

// expr resolves any s-expression: a bare symbol reference, a list/pair
// form, or a self-evaluating literal (which needs no resolution at all).
func (r *resolver) expr(o value.Object) {
	switch v := o.(type) {
	case value.Symbol:
		r.use(v)
	case *value.Pair, *value.List:
		r.list(o)
	}
}

func (r *resolver) list(o value.Object) {
	if loc := o.GetSourceLocation(); loc.Filename != "" || loc.Line != 0 {
		r.curLoc = loc
	}

	elems, proper := flatten(o)
	if len(elems) == 0 {
		return
	}

	if headSym, ok := elems[0].(value.Symbol); ok && proper {
		switch symbol.ID(headSym) {
		case symbol.Quote:
			return // quoted data is never resolved, it is not evaluated
		case symbol.If:
			r.ifForm(elems)
			return
		case symbol.Set:
			r.setForm(elems)
			return
		case symbol.Progn:
			r.progn(elems[1:])
			return
		case symbol.Fn:
			r.fn(elems)
			return
		case symbol.Dot:
			r.dot(elems)
			return
		case symbol.OpNot:
			if len(elems) != 2 {
				r.errorf("not requires exactly one operand")
				return
			}
			r.expr(elems[1])
			return
		case symbol.OpAnd, symbol.OpOr, symbol.OpIs, symbol.OpSeq, symbol.OpSne:
			if len(elems) != 3 {
				r.errorf("%s requires exactly two operands", headSym.Name())
				return
			}
			r.expr(elems[1])
			r.expr(elems[2])
			return
		}
	}

	// generic application, "[Callee Arg...]": resolve the callee (itself
	// possibly a $dot form) and every argument as a plain expression,
	// mirroring lang/compiler's compileCall.
	for _, e := range elems {
		r.expr(e)
	}
}

func (r *resolver) ifForm(elems []value.Object) {
	if len(elems) != 4 {
		r.errorf("$if requires (cond then else)")
		return
	}
	r.expr(elems[1])
	r.expr(elems[2])
	r.expr(elems[3])
}

func (r *resolver) setForm(elems []value.Object) {
	if len(elems) != 3 {
		r.errorf("$set requires (symbol value)")
		return
	}
	r.expr(elems[2])

	sym, ok := elems[1].(value.Symbol)
	if !ok {
		r.errorf("$set target must be a symbol")
		return
	}
	r.assign(sym)
}

func (r *resolver) dot(elems []value.Object) {
	if len(elems) != 3 {
		r.errorf("$dot requires (target member)")
		return
	}
	r.expr(elems[1])
	if _, ok := elems[2].(value.Symbol); !ok {
		r.errorf("$dot member must be a symbol")
	}
	// elems[2] itself names a property, not a variable: never resolved.
}

// progn resolves a nested block that shares its enclosing function: a new
// lexical scope for shadowing purposes, but not a new set of locals.
func (r *resolver) progn(forms []value.Object) {
	r.push(&block{})
	for _, f := range forms {
		r.expr(f)
	}
	r.pop()
}

// fn resolves a "[$fn [params...] body...]" literal: a new Function whose
// locals start with its parameters (lang/compiler's compileFn mirrors this
// exactly when it lowers the same form to a nested UserFunctionInfo).
func (r *resolver) fn(elems []value.Object) {
	if len(elems) < 2 {
		r.errorf("$fn requires a parameter list")
		return
	}
	params, proper := flatten(elems[1])
	if !proper {
		r.errorf("$fn parameter list must be a proper list")
		return
	}

	fn2 := &Function{Definition: elems[0]}
	r.push(&block{fn: fn2})
	for _, p := range params {
		sym, ok := p.(value.Symbol)
		if !ok {
			r.errorf("$fn parameter must be a symbol")
			continue
		}
		r.declare(sym)
	}
	for _, e := range elems[2:] {
		r.expr(e)
	}
	r.pop()
}

// declare unconditionally introduces sym as a new local of the current
// block's function, used for $fn parameters which can never shadow one
// another inside the same parameter list in valid code, but are not
// double-checked here -- lang/compiler's own compileFn would simply bind
// the last occurrence, so there is nothing unsafe about letting a
// duplicate through this pass.
func (r *resolver) declare(sym value.Symbol) {
	name := sym.Name()
	bdg := &Binding{Scope: Local, Decl: sym}
	bdg.Index = len(r.env.fn.Locals)
	r.env.fn.Locals = append(r.env.fn.Locals, bdg)
	r.env.bindings[name] = bdg
}

// assign resolves a $set target: a plain re-assignment if name is already
// bound anywhere in the current function's block chain, or a new local of
// the current function otherwise.
func (r *resolver) assign(sym value.Symbol) {
	name := sym.Name()
	curFn := r.env.fn
	for env := r.env; env != nil && env.fn == curFn; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			return
		}
	}
	r.declare(sym)
}

// use resolves a bare symbol reference: a local or free variable if some
// enclosing block already bound the name, otherwise a predeclared,
// universal or plain global name.
func (r *resolver) use(sym value.Symbol) {
	name := sym.Name()
	startFn := r.env.fn
	for env := r.env; env != nil; env = env.parent {
		bdg, ok := env.bindings[name]
		if !ok {
			continue
		}
		if env.fn != startFn && bdg.Scope == Local {
			// found in an enclosing function's block: that binding becomes a
			// cell, shared with this (and possibly other) nested functions.
			bdg.Scope = Cell
			startFn.FreeVars = append(startFn.FreeVars, bdg)
		}
		return
	}

	switch {
	case r.isPredeclared(name):
		r.globalBinding(name, Predeclared)
	case r.isUniversal(name):
		r.globalBinding(name, Universal)
	default:
		r.globalBinding(name, Global)
	}
}

func (r *resolver) globalBinding(name string, scope Scope) {
	if _, ok := r.globals[name]; !ok {
		r.globals[name] = &Binding{Scope: scope}
	}
}

// flatten decomposes a cons-cell form into its elements: a proper list
// returns every Head in order with proper=true, a dotted pair returns its
// (Left, Right) with proper=false, and anything else is nil, false. Mirrors
// lang/compiler's unexported flatten so the resolver's special-form
// dispatch recognizes the exact same shapes the compiler does.
func flatten(o value.Object) ([]value.Object, bool) {
	switch v := o.(type) {
	case *value.List:
		var out []value.Object
		cur := value.Object(v)
		for {
			lst, ok := cur.(*value.List)
			if !ok {
				return out, value.IsNull(cur)
			}
			out = append(out, lst.Head)
			cur = lst.Tail
		}
	case *value.Pair:
		return []value.Object{v.Left, v.Right}, false
	default:
		return nil, false
	}
}
