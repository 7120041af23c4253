package value

import (
	"math/big"
	"strconv"
	"strings"
)

// Real32, Real64 and Real128 are Smile's decimal floating point kinds,
// distinct from the binary Float32/64/128 family: a Real is a sign, a
// mantissa and a base-10 exponent (value = mantissa * 10^exponent), the
// representation financial/decimal code relies on to avoid binary rounding
// surprises. Real32/64 carry an int64 mantissa; Real128 widens the mantissa
// to math/big.Int for the extra precision the name promises.
type Real32 struct {
	Mantissa int64
	Exponent int32
}

type Real64 struct {
	Mantissa int64
	Exponent int32
}

type Real128 struct {
	Mantissa *big.Int
	Exponent int32
}

func NewReal64(mantissa int64, exponent int32) Real64 {
	return Real64{Mantissa: mantissa, Exponent: exponent}
}

func NewReal128(mantissa *big.Int, exponent int32) Real128 {
	return Real128{Mantissa: new(big.Int).Set(mantissa), Exponent: exponent}
}

func (r Real32) Kind() Kind       { return KindReal32 }
func (r Real32) ToBool() bool     { return r.Mantissa != 0 }
func (r Real32) Hash() uint64     { return uint64(r.Mantissa) ^ uint64(r.Exponent) }
func (r Real32) GetSourceLocation() SourceLocation { return SourceLocation{} }
func (r Real32) ToString() string { return realString(r.Mantissa, r.Exponent) }

func (r Real64) Kind() Kind       { return KindReal64 }
func (r Real64) ToBool() bool     { return r.Mantissa != 0 }
func (r Real64) Hash() uint64     { return uint64(r.Mantissa) ^ uint64(r.Exponent) }
func (r Real64) GetSourceLocation() SourceLocation { return SourceLocation{} }
func (r Real64) ToString() string { return realString(r.Mantissa, r.Exponent) }

// realString renders mantissa*10^exponent without resorting to binary
// float conversion, so decimal values print exactly.
func realString(mantissa int64, exponent int32) string {
	neg := mantissa < 0
	if neg {
		mantissa = -mantissa
	}
	digits := strconv.FormatInt(mantissa, 10)
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	switch {
	case exponent >= 0:
		sb.WriteString(digits)
		for i := int32(0); i < exponent; i++ {
			sb.WriteByte('0')
		}
	case int(-exponent) >= len(digits):
		sb.WriteString("0.")
		for i := 0; i < int(-exponent)-len(digits); i++ {
			sb.WriteByte('0')
		}
		sb.WriteString(digits)
	default:
		split := len(digits) + int(exponent)
		sb.WriteString(digits[:split])
		sb.WriteByte('.')
		sb.WriteString(digits[split:])
	}
	return sb.String()
}

func alignExp(am, bm int64, ae, be int32) (int64, int64, int32) {
	for ae > be {
		bm *= 10
		be++
	}
	for be > ae {
		am *= 10
		ae++
	}
	return am, bm, ae
}

func (r Real32) CompareEqual(other Object) bool {
	or, ok := other.(Real32)
	if !ok {
		return false
	}
	am, bm, _ := alignExp(r.Mantissa, or.Mantissa, r.Exponent, or.Exponent)
	return am == bm
}

func (r Real32) Cmp(other Object) (int, bool) {
	or, ok := other.(Real32)
	if !ok {
		return 0, false
	}
	am, bm, _ := alignExp(r.Mantissa, or.Mantissa, r.Exponent, or.Exponent)
	switch {
	case am < bm:
		return -1, true
	case am > bm:
		return 1, true
	default:
		return 0, true
	}
}

func (r Real64) CompareEqual(other Object) bool {
	or, ok := other.(Real64)
	if !ok {
		return false
	}
	am, bm, _ := alignExp(r.Mantissa, or.Mantissa, r.Exponent, or.Exponent)
	return am == bm
}

func (r Real64) Cmp(other Object) (int, bool) {
	or, ok := other.(Real64)
	if !ok {
		return 0, false
	}
	am, bm, _ := alignExp(r.Mantissa, or.Mantissa, r.Exponent, or.Exponent)
	switch {
	case am < bm:
		return -1, true
	case am > bm:
		return 1, true
	default:
		return 0, true
	}
}

func (r Real64) Add(o Real64) Real64 {
	am, bm, e := alignExp(r.Mantissa, o.Mantissa, r.Exponent, o.Exponent)
	return Real64{Mantissa: am + bm, Exponent: e}
}

func (r Real64) Sub(o Real64) Real64 {
	am, bm, e := alignExp(r.Mantissa, o.Mantissa, r.Exponent, o.Exponent)
	return Real64{Mantissa: am - bm, Exponent: e}
}

func (r Real64) Mul(o Real64) Real64 {
	return Real64{Mantissa: r.Mantissa * o.Mantissa, Exponent: r.Exponent + o.Exponent}
}

func (r Real128) Kind() Kind       { return KindReal128 }
func (r Real128) ToBool() bool     { return r.Mantissa.Sign() != 0 }
func (r Real128) Hash() uint64     { return r.Mantissa.Uint64() ^ uint64(r.Exponent) }
func (r Real128) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (r Real128) ToString() string {
	return r.Mantissa.String() + "e" + strconv.Itoa(int(r.Exponent))
}

func (r Real128) alignWith(o Real128) (*big.Int, *big.Int, int32) {
	am, bm := new(big.Int).Set(r.Mantissa), new(big.Int).Set(o.Mantissa)
	ae, be := r.Exponent, o.Exponent
	ten := big.NewInt(10)
	for ae > be {
		bm.Mul(bm, ten)
		be++
	}
	for be > ae {
		am.Mul(am, ten)
		ae++
	}
	return am, bm, ae
}

func (r Real128) CompareEqual(other Object) bool {
	or, ok := other.(Real128)
	if !ok {
		return false
	}
	am, bm, _ := r.alignWith(or)
	return am.Cmp(bm) == 0
}

func (r Real128) Cmp(other Object) (int, bool) {
	or, ok := other.(Real128)
	if !ok {
		return 0, false
	}
	am, bm, _ := r.alignWith(or)
	return am.Cmp(bm), true
}

func (r Real128) Add(o Real128) Real128 {
	am, bm, e := r.alignWith(o)
	return Real128{Mantissa: am.Add(am, bm), Exponent: e}
}

func (r Real128) Sub(o Real128) Real128 {
	am, bm, e := r.alignWith(o)
	return Real128{Mantissa: am.Sub(am, bm), Exponent: e}
}

func (r Real128) Mul(o Real128) Real128 {
	return Real128{
		Mantissa: new(big.Int).Mul(r.Mantissa, o.Mantissa),
		Exponent: r.Exponent + o.Exponent,
	}
}

var (
	_ Equaler = Real32{}
	_ Ordered = Real32{}
	_ Equaler = Real64{}
	_ Ordered = Real64{}
	_ Equaler = Real128{}
	_ Ordered = Real128{}
)
