// Package loader reads and writes the compiled-unit on-disk layout spec.md
// §6 describes: "a static-data image containing (a) the interned strings
// table, (b) the symbols table ... (c) the objects table ... (d) the
// user-function-info table with bytecode segments, (e) the source-location
// table, (f) a list of (target, value) pairs driving top-level [$set]s."
// lang/compiler.CompiledTables already is that shape in memory (see
// compiled.go's own doc comments, which cite spec.md §6 component by
// component); this package is only the serialization boundary around it,
// the one piece of the bootstrap precompiler spec.md's scope note keeps in
// bounds ("The precompiler is included only to the extent of defining the
// on-disk layout it produces, because the VM must load it.").
//
// The teacher has no analog: it loads Starlark source text directly and
// never precompiles to an image, so this package is grounded on
// lang/compiler.CompiledTables' own shape plus the teacher's general
// table/program vocabulary (Funcode/Program in lang/compiler/compiler.go)
// rather than on any single teacher file.
package loader

import (
	"bytes"
	"compress/flate"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/mna/smile/lang/compiler"
	"github.com/mna/smile/lang/value"
)

// magic tags a loader image so Load fails fast on unrelated gob data instead
// of decoding garbage into a CompiledTables. version bumps in lockstep with
// compiler.Version: compiled.go's UserFunctionInfo.Code is only meaningful
// to the opcode set the Version it was compiled against defines.
const magic = "smilevm"

func init() {
	// Every concrete value.Object kind that lang/compiler's internConst (or a
	// $quote form's literal datum) can place in CompiledTables.Objects must be
	// registered so gob's interface encoding recognizes it; int64 is the raw
	// (unboxed) shape internConst stores integer literals under (compiler.go's
	// compileExpr, the Int64/Int32/Int16 cases call v.Signed(), not v itself).
	gob.Register(int64(0))
	gob.Register(value.Bool(false))
	gob.Register(value.Float32(0))
	gob.Register(value.Float64(0))
	gob.Register(value.Float128{})
	gob.Register(value.Real32{})
	gob.Register(value.Real64{})
	gob.Register(value.Real128{})
	gob.Register(value.Byte{})
	gob.Register(value.Int16{})
	gob.Register(value.Int32{})
	gob.Register(value.Int64{})
	gob.Register(value.BigInt{})
	gob.Register(value.BigReal{})
	gob.Register(value.BigFloat{})
	gob.Register(value.String{})
	gob.Register(value.Symbol(0))
	gob.Register(value.NewByteArray(nil))
	gob.Register(value.Timestamp{})
	gob.Register(&value.Pair{})
	gob.Register(&value.List{})
	gob.Register(value.Null) // Null also terminates every proper *List's Tail
}

// image is CompiledTables' on-disk shape: identical field-for-field except
// that UserFunctionInfo's back-reference to its owning CompiledTables is
// dropped. Gob cannot follow that cycle (CompiledTables -> Functions ->
// Tables -> the same CompiledTables) without recursing forever, and the
// back-reference carries no information an on-disk image needs to keep --
// Load reconstructs it with CompiledTables.AddFunction exactly the way a
// freshly-compiled unit gets it from CompileToplevel.
type image struct {
	Version int

	Filename string
	Strings  []string
	Objects  []interface{}
	Names    []string

	Toplevel  funcImage
	Functions []funcImage

	TopLevelSets []compiler.TopLevelSet
}

// funcImage is compiler.UserFunctionInfo minus its Tables back-reference.
type funcImage struct {
	Name string
	Code []byte

	Args     []compiler.Binding
	Locals   []compiler.Binding
	Freevars []compiler.Binding

	ArgPolicy compiler.ArgPolicy
	MaxStack  int

	Sources []compiler.SourceEntry
}

func toFuncImage(fn *compiler.UserFunctionInfo) funcImage {
	return funcImage{
		Name:      fn.Name,
		Code:      fn.Code,
		Args:      fn.Args,
		Locals:    fn.Locals,
		Freevars:  fn.Freevars,
		ArgPolicy: fn.ArgPolicy,
		MaxStack:  fn.MaxStack,
		Sources:   fn.Sources,
	}
}

func (fi funcImage) toUserFunctionInfo() *compiler.UserFunctionInfo {
	return &compiler.UserFunctionInfo{
		Name:      fi.Name,
		Code:      fi.Code,
		Args:      fi.Args,
		Locals:    fi.Locals,
		Freevars:  fi.Freevars,
		ArgPolicy: fi.ArgPolicy,
		MaxStack:  fi.MaxStack,
		Sources:   fi.Sources,
	}
}

// Save writes tables' on-disk image to w, flate-compressed (spec.md doesn't
// mandate a compression scheme; flate is the one compression format the
// standard library ships that this corpus's dependency set otherwise has no
// third-party replacement for, so it is used here rather than left
// uncompressed -- see DESIGN.md).
func Save(w io.Writer, tables *compiler.CompiledTables) error {
	img := image{
		Version:      compiler.Version,
		Filename:     tables.Filename,
		Strings:      tables.Strings,
		Objects:      tables.Objects,
		Names:        tables.Names,
		Toplevel:     toFuncImage(tables.Toplevel),
		TopLevelSets: tables.TopLevelSets,
	}
	img.Functions = make([]funcImage, len(tables.Functions))
	for i, fn := range tables.Functions {
		img.Functions[i] = toFuncImage(fn)
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if err := gob.NewEncoder(fw).Encode(&img); err != nil {
		return fmt.Errorf("loader: encode compiled unit: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Load reads an image written by Save and reconstructs the equivalent
// in-memory CompiledTables (spec.md §6: "The loader walks this image to
// construct equivalent in-memory structures"). Unlike the on-disk layout
// spec.md describes for the original bootstrap precompiler, no bytecode
// operand fixup against freshly-allocated symbol ids is needed here: LdX,
// StX, LdProp, StProp and Met* operands already index CompiledTables.Names
// (a table of strings, per compiler.go's internName), and lang/machine
// re-interns that name string on every access (loadGlobal/storeGlobal/
// getProperty in machine.go) rather than baking a symbol id into the
// bytecode -- so the Names table loads as plain strings and needs no
// further resolution step before Eval_Run can use it.
func Load(r io.Reader) (*compiler.CompiledTables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("loader: not a compiled-unit image")
	}

	var img image
	if err := gob.NewDecoder(flate.NewReader(bytes.NewReader(data[len(magic):]))).Decode(&img); err != nil {
		return nil, fmt.Errorf("loader: decode compiled unit: %w", err)
	}
	if img.Version != compiler.Version {
		return nil, fmt.Errorf("loader: compiled unit is version %d, runtime expects %d", img.Version, compiler.Version)
	}

	tables := &compiler.CompiledTables{
		Filename:     img.Filename,
		Strings:      img.Strings,
		Objects:      img.Objects,
		Names:        img.Names,
		TopLevelSets: img.TopLevelSets,
	}
	tables.Toplevel = img.Toplevel.toUserFunctionInfo()
	tables.Toplevel.Tables = tables
	for _, fi := range img.Functions {
		tables.AddFunction(fi.toUserFunctionInfo())
	}
	return tables, nil
}
