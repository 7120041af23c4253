package value

import "math/big"

// BigInt, BigReal and BigFloat are Smile's arbitrary-precision kinds
// (spec.md §3): unlike the fixed-width Int128 and the decimal Real128, these
// have no bound on magnitude or precision, so they wrap math/big directly
// rather than emulating a fixed bit width.
type BigInt struct{ V *big.Int }

// BigReal is an arbitrary-precision decimal, the unbounded counterpart of
// Real64/Real128: value = Mantissa * 10^Exponent.
type BigReal struct {
	Mantissa *big.Int
	Exponent int64
}

// BigFloat is an arbitrary-precision binary float, wrapping math/big.Float.
type BigFloat struct{ V *big.Float }

func NewBigInt(v *big.Int) BigInt { return BigInt{V: new(big.Int).Set(v)} }

func (b BigInt) Kind() Kind       { return KindBigInt }
func (b BigInt) ToBool() bool     { return b.V.Sign() != 0 }
func (b BigInt) ToString() string { return b.V.String() }
func (b BigInt) Hash() uint64     { return b.V.Uint64() }
func (b BigInt) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (b BigInt) CompareEqual(other Object) bool {
	ob, ok := other.(BigInt)
	return ok && b.V.Cmp(ob.V) == 0
}

func (b BigInt) Cmp(other Object) (int, bool) {
	ob, ok := other.(BigInt)
	if !ok {
		return 0, false
	}
	return b.V.Cmp(ob.V), true
}

func (b BigInt) Add(o BigInt) BigInt { return BigInt{V: new(big.Int).Add(b.V, o.V)} }
func (b BigInt) Sub(o BigInt) BigInt { return BigInt{V: new(big.Int).Sub(b.V, o.V)} }
func (b BigInt) Mul(o BigInt) BigInt { return BigInt{V: new(big.Int).Mul(b.V, o.V)} }
func (b BigInt) Neg() BigInt         { return BigInt{V: new(big.Int).Neg(b.V)} }
func (b BigInt) Abs() BigInt         { return BigInt{V: new(big.Int).Abs(b.V)} }

// Div is Euclidean (floor) division; DivTrunc truncates toward zero (`div`).
func (b BigInt) Div(o BigInt) (BigInt, bool) {
	if o.V.Sign() == 0 {
		return BigInt{}, false
	}
	q, m := new(big.Int).QuoRem(b.V, o.V, new(big.Int))
	if m.Sign() != 0 && (m.Sign() < 0) != (o.V.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return BigInt{V: q}, true
}

func (b BigInt) DivTrunc(o BigInt) (BigInt, bool) {
	if o.V.Sign() == 0 {
		return BigInt{}, false
	}
	return BigInt{V: new(big.Int).Quo(b.V, o.V)}, true
}

func (b BigInt) Mod(o BigInt) (BigInt, bool) {
	if o.V.Sign() == 0 {
		return BigInt{}, false
	}
	m := new(big.Int).Mod(b.V, o.V)
	if m.Sign() != 0 && o.V.Sign() < 0 {
		m.Add(m, o.V)
	}
	return BigInt{V: m}, true
}

func (b BigInt) Rem(o BigInt) (BigInt, bool) {
	if o.V.Sign() == 0 {
		return BigInt{}, false
	}
	return BigInt{V: new(big.Int).Rem(b.V, o.V)}, true
}

func NewBigReal(mantissa *big.Int, exponent int64) BigReal {
	return BigReal{Mantissa: new(big.Int).Set(mantissa), Exponent: exponent}
}

func (b BigReal) Kind() Kind       { return KindBigReal }
func (b BigReal) ToBool() bool     { return b.Mantissa.Sign() != 0 }
func (b BigReal) Hash() uint64     { return b.Mantissa.Uint64() ^ uint64(b.Exponent) }
func (b BigReal) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (b BigReal) ToString() string {
	return b.Mantissa.String() + "e" + big.NewInt(b.Exponent).String()
}

func (b BigReal) align(o BigReal) (*big.Int, *big.Int, int64) {
	am, bm := new(big.Int).Set(b.Mantissa), new(big.Int).Set(o.Mantissa)
	ae, be := b.Exponent, o.Exponent
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

func (b BigReal) CompareEqual(other Object) bool {
	ob, ok := other.(BigReal)
	if !ok {
		return false
	}
	am, bm, _ := b.align(ob)
	return am.Cmp(bm) == 0
}

func (b BigReal) Cmp(other Object) (int, bool) {
	ob, ok := other.(BigReal)
	if !ok {
		return 0, false
	}
	am, bm, _ := b.align(ob)
	return am.Cmp(bm), true
}

func (b BigReal) Add(o BigReal) BigReal {
	am, bm, e := b.align(o)
	return BigReal{Mantissa: am.Add(am, bm), Exponent: e}
}

func (b BigReal) Sub(o BigReal) BigReal {
	am, bm, e := b.align(o)
	return BigReal{Mantissa: am.Sub(am, bm), Exponent: e}
}

func (b BigReal) Mul(o BigReal) BigReal {
	return BigReal{Mantissa: new(big.Int).Mul(b.Mantissa, o.Mantissa), Exponent: b.Exponent + o.Exponent}
}

func NewBigFloat(prec uint) BigFloat { return BigFloat{V: new(big.Float).SetPrec(prec)} }

func (b BigFloat) Kind() Kind       { return KindBigFloat }
func (b BigFloat) ToBool() bool     { return b.V.Sign() != 0 }
func (b BigFloat) ToString() string { return b.V.Text('g', -1) }
func (b BigFloat) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (b BigFloat) Hash() uint64 {
	f, _ := b.V.Float64()
	return uint64(int64(f))
}

func (b BigFloat) CompareEqual(other Object) bool {
	ob, ok := other.(BigFloat)
	return ok && b.V.Cmp(ob.V) == 0
}

func (b BigFloat) Cmp(other Object) (int, bool) {
	ob, ok := other.(BigFloat)
	if !ok {
		return 0, false
	}
	return b.V.Cmp(ob.V), true
}

func (b BigFloat) Add(o BigFloat) BigFloat {
	return BigFloat{V: new(big.Float).SetPrec(b.V.Prec()).Add(b.V, o.V)}
}

func (b BigFloat) Sub(o BigFloat) BigFloat {
	return BigFloat{V: new(big.Float).SetPrec(b.V.Prec()).Sub(b.V, o.V)}
}

func (b BigFloat) Mul(o BigFloat) BigFloat {
	return BigFloat{V: new(big.Float).SetPrec(b.V.Prec()).Mul(b.V, o.V)}
}

func (b BigFloat) Quo(o BigFloat) BigFloat {
	return BigFloat{V: new(big.Float).SetPrec(b.V.Prec()).Quo(b.V, o.V)}
}

var (
	_ Equaler = BigInt{}
	_ Ordered = BigInt{}
	_ Equaler = BigReal{}
	_ Ordered = BigReal{}
	_ Equaler = BigFloat{}
	_ Ordered = BigFloat{}
)
