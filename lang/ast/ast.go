// Package ast holds the result of parsing one source file: not a node
// hierarchy, but the list-structured s-expression tree spec.md §4.2
// describes (cons cells of symbols, numbers, strings, pairs and nested
// lists, built from lang/value.Pair/lang/value.List). A Chunk is just that
// tree's top-level forms plus enough bookkeeping (name, comments, overall
// span) for tooling -- there is no separate Expr/Stmt/Block type to walk,
// since the tree itself already carries everything lang/compiler needs to
// lower it.
package ast

import (
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// Chunk is everything the parser produces from one source file: its
// top-level forms, in order, each one a complete s-expression ready for
// lang/compiler.CompileToplevel.
type Chunk struct {
	// Name is the filename, which may be empty if the chunk is not a file.
	Name string

	// Forms are the chunk's top-level expressions, in source order.
	Forms []value.Object

	// Comments is filled only if parsing comments was requested, ordered by
	// position in the chunk.
	Comments []*Comment

	// Start and EOF bound the chunk, letting an empty file still report a
	// valid position.
	Start, EOF token.Pos
}

// Span reports the start and end position of the chunk.
func (c *Chunk) Span() (start, end token.Pos) { return c.Start, c.EOF }

// Comment represents a single "--" line comment (there is no long-comment
// form).
type Comment struct {
	Start    token.Pos
	Raw, Val string

	// FormIndex is the index into the owning Chunk's Forms slice of the
	// nearest form at or after this comment's position, or len(Forms) if the
	// comment trails every form.
	FormIndex int
}
