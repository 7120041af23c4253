// Package parser implements Smile's parser (spec.md §4.2): a precedence-
// climbing recursive-descent parser that turns a token stream into a
// list-structured s-expression tree (lang/value.Pair/lang/value.List cons
// cells) instead of a dedicated AST node hierarchy, with panic-mode
// recovery at '}', ']' or ')'.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mna/smile/lang/ast"
	"github.com/mna/smile/lang/scanner"
	"github.com/mna/smile/lang/syntax"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// Mode is a set of bit flags that configures the parsing. By default (0),
// every error is reported and comments are ignored.
type Mode uint

// List of supported parsing modes, which can be combined with bitwise or.
const (
	Comments Mode = 1 << iota // parse and report comments, associated with the nearest following form.
)

// ParseFiles is a helper function that parses the source files and returns
// the fileset along with the chunks and any error encountered. The error, if
// non-nil, is guaranteed to be a scanner.ErrorList (via Unwrap() []error).
func ParseFiles(ctx context.Context, mode Mode, files ...string) (*token.FileSet, []*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var p parser
	p.parseComments = mode&Comments != 0

	res := make([]*ast.Chunk, 0, len(files))
	fs := token.NewFileSet()

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			p.errors.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		p.init(fs, file, b)
		ch := p.parseChunk()
		ch.Name = file
		res = append(res, ch)
	}
	p.errors.Sort()
	return fs, res, p.errors.Err()
}

// ParseChunk is a helper function that parses a single chunk from a slice of
// bytes and returns the chunk and any error encountered. The chunk is added
// to the provided fset for position reporting under the name specified in
// filename. The error, if non-nil, is guaranteed to be a scanner.ErrorList.
func ParseChunk(ctx context.Context, mode Mode, fset *token.FileSet, filename string, src []byte) (*ast.Chunk, error) {
	var p parser
	p.parseComments = mode&Comments != 0
	p.init(fset, filename, src)
	ch := p.parseChunk()
	ch.Name = filename
	return ch, p.errors.Err()
}

// parser parses one source file into an *ast.Chunk.
type parser struct {
	// immutable after p.init
	parseComments bool
	scanner       scanner.Scanner
	errors        scanner.ErrorList
	file          *token.File

	// current token
	tok token.Token
	val token.Value

	// syntaxTable holds every "#syntax CLASS: [pattern] => template" rule
	// visible at the current point in the source (spec.md §4.3); parseScope
	// forks it on entry to a nested scope and restores the outer table on
	// exit so a rule declared inside a scope never leaks to its siblings.
	syntaxTable *syntax.Table

	// set in p.advance to the position before skipping any comment, used as
	// the chunk's starting position so it encompasses leading comments.
	preCommentPos token.Pos

	// only used when parseComments is true: comments skipped over by
	// p.advance, stored here with their FormIndex left unresolved
	// (resolvedComments tracks how many of the leading entries already have
	// their final index) until parseChunk's resolvePendingComments fills it
	// in once it knows which form follows.
	pendingComments []*ast.Comment
	resolvedComments int
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, -1, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.pendingComments = nil
	p.resolvedComments = 0
	p.syntaxTable = syntax.NewTable()

	// advance to first token
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
	p.preCommentPos = p.val.Pos
	for p.tok == token.COMMENT {
		if p.parseComments {
			p.pendingComments = append(p.pendingComments, &ast.Comment{
				Start: p.val.Pos,
				Raw:   p.val.Raw,
				Val:   p.val.String,
			})
		}
		p.tok = p.scanner.Scan(&p.val)
	}
}

// resolvePendingComments assigns idx as the FormIndex of every comment
// lexed since the last call, i.e. every comment found while looking ahead
// past the previous form's last token: since a comment is only ever
// discovered as lookahead while finishing whichever form precedes it,
// its FormIndex can't be known until the parser learns what comes next --
// either the form about to start (idx == len(Forms) at that point) or, at
// EOF, the final form count (meaning the comment trails every form).
func (p *parser) resolvePendingComments(idx int) {
	for ; p.resolvedComments < len(p.pendingComments); p.resolvedComments++ {
		p.pendingComments[p.resolvedComments].FormIndex = idx
	}
}

// loc converts the current file's resolved position for pos into a
// value.SourceLocation, stamping every tree node the parser builds with the
// lexer position spec.md §4.2 requires ("each list carries a lexer
// position").
func (p *parser) loc(pos token.Pos) value.SourceLocation {
	fp := p.file.Position(pos)
	return value.SourceLocation{Filename: fp.Filename, Line: fp.Line, Column: fp.Col}
}

// list builds a proper s-expression list out of elems, stamped with loc.
func (p *parser) list(loc value.SourceLocation, elems ...value.Object) value.Object {
	var tail value.Object = value.Null
	for i := len(elems) - 1; i >= 0; i-- {
		tail = &value.List{Head: elems[i], Tail: tail, Loc: loc}
	}
	return tail
}

// pair builds a dotted pair (left . right), stamped with loc.
func (p *parser) pair(loc value.SourceLocation, left, right value.Object) value.Object {
	return &value.Pair{Left: left, Right: right, Loc: loc}
}

var errPanicMode = errors.New("panic")

// expect returns the position of the current token and consumes it if it is
// one of the expected tokens, otherwise it reports an error and panics with
// errPanicMode, recovered at the top-level-form level as panic-mode
// recovery (spec.md §4.2).
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos

	var buf strings.Builder
	var ok bool
	for i, tok := range toks {
		if p.tok == tok {
			ok = true
			break
		}
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}

	if !ok {
		var lbl string
		if len(toks) > 1 {
			lbl = "one of " + buf.String()
		} else {
			lbl = buf.String()
		}
		p.errorExpected(pos, lbl)
		panic(errPanicMode)
	}

	p.advance()
	return pos
}

func (p *parser) error(pos token.Pos, msg string) {
	lpos := p.file.Position(pos)
	p.errors.Add(lpos, msg)
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.error(pos, fmt.Sprintf(format, args...))
}

func (p *parser) errorExpected(pos token.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.val.Pos {
		// the error happened at the current position; make the message more
		// specific by naming what was actually found.
		switch lit := p.tok.Literal(p.val); lit {
		case "":
			msg += ", found " + p.tok.GoString()
		default:
			msg += ", found " + lit
		}
	}
	p.error(pos, msg)
}
