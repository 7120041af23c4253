package machine

import "github.com/mna/smile/lang/value"

// Frame records one entry in the call chain: the closure being executed (or
// the native function invoked) and its program counter, for error reporting
// and for Brk's resume-point bookkeeping (spec.md §4.1).
type Frame struct {
	Closure  *Closure
	Callable value.Object // *Function or *NativeFunction
}

// SourceLocation reports the current point of execution in this frame, for
// error messages (spec.md §4.1's native_method_error and uncaught-exception
// formatting).
func (fr *Frame) SourceLocation() value.SourceLocation {
	if fr.Closure == nil {
		return value.SourceLocation{}
	}
	fn := fr.Closure.Info.Fn
	loc := value.SourceLocation{Filename: fn.Tables.Filename}
	for _, s := range fn.Sources {
		if s.PC > fr.Closure.PC {
			break
		}
		loc.Line, loc.Column = s.Line, s.Column
	}
	return loc
}
