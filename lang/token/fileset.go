package token

import "fmt"

// Position describes a resolved source location: a filename plus a 1-based
// line and column. It is the decoded counterpart of the packed Pos value.
type Position struct {
	Filename string
	Line     int
	Col      int
}

// IsValid reports whether the position holds a known line and column.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if p.Filename == "" && !p.IsValid() {
		return "-"
	}
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	if !p.IsValid() {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// A File tracks the line-start byte offsets of a single source file so that
// byte offsets can be translated to packed Pos values (and back to a
// Position) without rescanning the source.
type File struct {
	name  string
	base  int
	size  int
	lines []int // byte offsets of the start of each line, lines[0] == 0
}

// NewFileSet returns a new, empty FileSet.
func NewFileSet() *FileSet { return &FileSet{} }

// FileSet is a minimal registry of Files, analogous in spirit to go/token's
// FileSet but keyed only by name since Pos is self-contained (it never needs
// a FileSet to resolve, unlike go/token.Pos).
type FileSet struct {
	files []*File
}

// AddFile registers a new file with the given name and size, starting at the
// given base offset (a base of -1 picks the next available base). It returns
// the new File.
func (fs *FileSet) AddFile(filename string, base, size int) *File {
	if base < 0 {
		base = 1
		for _, f := range fs.files {
			if end := f.base + f.size + 1; end > base {
				base = end
			}
		}
	}
	f := &File{name: filename, base: base, size: size, lines: []int{0}}
	fs.files = append(fs.files, f)
	return f
}

// FileByName returns the registered File with the given name, or nil if no
// such file was added. Pos values are self-contained line/column pairs with
// no embedded file identity, so code that needs to resolve a Pos back to its
// File (e.g. to print "filename:line:col") must already know which file it
// came from, typically by name (ast.Chunk.Name in the parser/loader).
func (fs *FileSet) FileByName(name string) *File {
	for _, f := range fs.files {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Name returns the file's name.
func (f *File) Name() string { return f.name }

// Size returns the file's size in bytes.
func (f *File) Size() int { return f.size }

// AddLine records that a new line begins right after the byte at offset off
// (i.e. off is the offset of a '\n'). Offsets must be added in increasing
// order; out-of-order or duplicate calls are ignored.
func (f *File) AddLine(off int) {
	if n := len(f.lines); n == 0 || f.lines[n-1] < off+1 {
		f.lines = append(f.lines, off+1)
	}
}

// Pos returns the packed Pos value corresponding to the given byte offset
// within the file.
func (f *File) Pos(offset int) Pos {
	line, col := f.lineCol(offset)
	if line > MaxLines {
		line = MaxLines
	}
	if col > MaxCols {
		col = MaxCols
	}
	return MakePos(line, col)
}

func (f *File) lineCol(offset int) (line, col int) {
	// binary search for the line containing offset
	lo, hi := 0, len(f.lines)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.lines[mid] <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	idx := lo - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, offset - f.lines[idx] + 1
}

// Position decodes a packed Pos into a full Position using this file's name.
func (f *File) Position(p Pos) Position {
	line, col := p.LineCol()
	return Position{Filename: f.name, Line: line, Col: col}
}

// FormatPos renders pos (resolved against file) per mode, with a trailing
// colon if requested and the result is non-empty. Returns "" if mode is
// PosNone or file is nil.
func FormatPos(mode PosMode, file *File, pos Pos, trailingColon bool) string {
	if mode == PosNone || file == nil {
		return ""
	}
	p := file.Position(pos)
	if mode == PosShort {
		p.Filename = ""
	}
	s := p.String()
	if trailingColon {
		s += ":"
	}
	return s
}
