package ast

import (
	"fmt"
	"io"

	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
)

// Printer controls pretty-printing of a Chunk's forms.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// Pos indicates the position printing mode.
	Pos token.PosMode

	// NodeFmt is the format verb used to print each form's value, e.g. "%v"
	// or "%s". Defaults to "%v".
	NodeFmt string
}

// Print pretty-prints every top-level form of ch, one per line, interleaving
// comments (if ch.Comments was populated) at the position of the form they
// precede. file is not consulted: forms carry their own
// value.SourceLocation, so it is accepted only for API symmetry with a
// file-based printer.
func (p *Printer) Print(ch *Chunk, file *token.File) error {
	_ = file // forms already carry their own SourceLocation

	nodeFmt := p.NodeFmt
	if nodeFmt == "" {
		nodeFmt = "%v"
	}

	byForm := make(map[int][]*Comment, len(ch.Comments))
	for _, c := range ch.Comments {
		byForm[c.FormIndex] = append(byForm[c.FormIndex], c)
	}

	for i, form := range ch.Forms {
		for _, c := range byForm[i] {
			if err := p.printComment(c); err != nil {
				return err
			}
		}
		if err := p.printForm(form, nodeFmt); err != nil {
			return err
		}
	}
	for _, c := range byForm[len(ch.Forms)] {
		if err := p.printComment(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printForm(form value.Object, nodeFmt string) error {
	if p.Pos != token.PosNone {
		loc := form.GetSourceLocation()
		if p.Pos == token.PosShort {
			loc.Filename = ""
		}
		if _, err := fmt.Fprintf(p.Output, "[%s] ", loc); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.Output, nodeFmt+"\n", form)
	return err
}

func (p *Printer) printComment(c *Comment) error {
	_, err := fmt.Fprintf(p.Output, "-- %s\n", c.Val)
	return err
}
