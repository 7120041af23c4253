package value

import (
	"math"
	"math/big"
	"strconv"
)

// Float32 and Float64 are IEEE-754 binary floating point kinds. Float128 has
// no native Go width, so it is emulated with math/big.Float at 113 bits of
// precision (the IEEE binary128 mantissa width). Cmp follows the teacher's
// lang/machine/float.go total order (NaN sorts greater than +Inf).
type Float32 float32
type Float64 float64

func (f Float32) Kind() Kind       { return KindFloat32 }
func (f Float32) ToBool() bool     { return f != 0 }
func (f Float32) ToString() string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }
func (f Float32) Hash() uint64     { return uint64(math.Float32bits(float32(f))) }
func (f Float32) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (f Float32) CompareEqual(other Object) bool {
	of, ok := other.(Float32)
	return ok && of == f
}

func (f Float32) Cmp(other Object) (int, bool) {
	of, ok := other.(Float32)
	if !ok {
		return 0, false
	}
	return floatCmp(float64(f), float64(of)), true
}

func (f Float64) Kind() Kind       { return KindFloat64 }
func (f Float64) ToBool() bool     { return f != 0 }
func (f Float64) ToString() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (f Float64) Hash() uint64     { return math.Float64bits(float64(f)) }
func (f Float64) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (f Float64) CompareEqual(other Object) bool {
	of, ok := other.(Float64)
	return ok && of == f
}

func (f Float64) Cmp(other Object) (int, bool) {
	of, ok := other.(Float64)
	if !ok {
		return 0, false
	}
	return floatCmp(float64(f), float64(of)), true
}

// floatCmp performs a three-valued comparison on floats, which are totally
// ordered with NaN sorting greater than +Inf (mirrors the teacher's
// lang/machine/float.go floatCmp).
func floatCmp(x, y float64) int {
	if x > y {
		return 1
	} else if x < y {
		return -1
	} else if x == y {
		return 0
	}
	if x == x {
		return -1
	} else if y == y {
		return 1
	}
	return 0
}

const float128Prec = 113

// Float128 emulates IEEE binary128 via a big.Float held at 113 bits of
// mantissa precision.
type Float128 struct {
	V *big.Float
}

func NewFloat128(v float64) Float128 {
	return Float128{V: new(big.Float).SetPrec(float128Prec).SetFloat64(v)}
}

func (f Float128) Kind() Kind       { return KindFloat128 }
func (f Float128) ToBool() bool     { return f.V.Sign() != 0 }
func (f Float128) ToString() string { return f.V.Text('g', -1) }
func (f Float128) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (f Float128) Hash() uint64 {
	v, _ := f.V.Float64()
	return math.Float64bits(v)
}

func (f Float128) CompareEqual(other Object) bool {
	of, ok := other.(Float128)
	return ok && f.V.Cmp(of.V) == 0
}

func (f Float128) Cmp(other Object) (int, bool) {
	of, ok := other.(Float128)
	if !ok {
		return 0, false
	}
	return f.V.Cmp(of.V), true
}

func (f Float128) Add(o Float128) Float128 {
	return Float128{V: new(big.Float).SetPrec(float128Prec).Add(f.V, o.V)}
}

func (f Float128) Sub(o Float128) Float128 {
	return Float128{V: new(big.Float).SetPrec(float128Prec).Sub(f.V, o.V)}
}

func (f Float128) Mul(o Float128) Float128 {
	return Float128{V: new(big.Float).SetPrec(float128Prec).Mul(f.V, o.V)}
}

func (f Float128) Quo(o Float128) Float128 {
	return Float128{V: new(big.Float).SetPrec(float128Prec).Quo(f.V, o.V)}
}

var (
	_ Equaler = Float32(0)
	_ Ordered = Float32(0)
	_ Equaler = Float64(0)
	_ Ordered = Float64(0)
	_ Equaler = Float128{}
	_ Ordered = Float128{}
)
