package value

import (
	"math/big"
	"math/bits"
)

// Int128 is a 128-bit two's-complement integer, stored as (Hi, Lo) 64-bit
// words (spec.md §3). Unlike Byte/Int16/Int32/Int64 it is not part of the
// generic Int[U] family: Go has no native uint128 to parametrize over, so
// wide arithmetic goes through math/bits carry-propagating primitives, and
// division/modulo fall back to math/big for correctness.
type Int128 struct {
	Hi, Lo uint64
}

func NewInt128(hi, lo uint64) Int128 { return Int128{Hi: hi, Lo: lo} }

func (i Int128) Kind() Kind       { return KindInt128 }
func (i Int128) ToBool() bool     { return i.Hi != 0 || i.Lo != 0 }
func (i Int128) Hash() uint64     { return i.Hi ^ i.Lo }
func (i Int128) GetSourceLocation() SourceLocation { return SourceLocation{} }
func (i Int128) ToString() string { return i.big().String() }

func (i Int128) CompareEqual(other Object) bool {
	oi, ok := other.(Int128)
	return ok && oi.Hi == i.Hi && oi.Lo == i.Lo
}

func (i Int128) Cmp(other Object) (int, bool) {
	oi, ok := other.(Int128)
	if !ok {
		return 0, false
	}
	return i.big().Cmp(oi.big()), true
}

// negative reports whether the sign bit (bit 127) is set.
func (i Int128) negative() bool { return i.Hi&(1<<63) != 0 }

// big converts the receiver to a signed math/big.Int, interpreting the bit
// pattern as two's complement.
func (i Int128) big() *big.Int {
	u := new(big.Int).Lsh(new(big.Int).SetUint64(i.Hi), 64)
	u.Or(u, new(big.Int).SetUint64(i.Lo))
	if i.negative() {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		u.Sub(u, mod)
	}
	return u
}

// int128FromBig truncates a signed big.Int down to its low 128 bits, in
// two's complement.
func int128FromBig(b *big.Int) Int128 {
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	v := new(big.Int).Mod(b, mod)
	if v.Sign() < 0 {
		v.Add(v, mod)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)
	return Int128{Hi: hi.Uint64(), Lo: lo.Uint64()}
}

func (i Int128) Add(o Int128) Int128 {
	lo, carry := bits.Add64(i.Lo, o.Lo, 0)
	hi, _ := bits.Add64(i.Hi, o.Hi, carry)
	return Int128{Hi: hi, Lo: lo}
}

func (i Int128) Sub(o Int128) Int128 {
	lo, borrow := bits.Sub64(i.Lo, o.Lo, 0)
	hi, _ := bits.Sub64(i.Hi, o.Hi, borrow)
	return Int128{Hi: hi, Lo: lo}
}

func (i Int128) Mul(o Int128) Int128 {
	return int128FromBig(new(big.Int).Mul(i.big(), o.big()))
}

func (i Int128) Neg() Int128 { return int128FromBig(new(big.Int).Neg(i.big())) }

func (i Int128) Abs() Int128 {
	b := i.big()
	if b.Sign() < 0 {
		b.Neg(b)
	}
	return int128FromBig(b)
}

func (i Int128) Sign() int { return i.big().Sign() }

// Div implements Euclidean (floor) division; DivTrunc truncates toward
// zero, matching the `div` operator (spec.md §4.5).
func (i Int128) Div(o Int128) (Int128, bool) {
	ob := o.big()
	if ob.Sign() == 0 {
		return Int128{}, false
	}
	q, m := new(big.Int).QuoRem(i.big(), ob, new(big.Int))
	if m.Sign() != 0 && (m.Sign() < 0) != (ob.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return int128FromBig(q), true
}

func (i Int128) DivTrunc(o Int128) (Int128, bool) {
	ob := o.big()
	if ob.Sign() == 0 {
		return Int128{}, false
	}
	return int128FromBig(new(big.Int).Quo(i.big(), ob)), true
}

func (i Int128) Mod(o Int128) (Int128, bool) {
	ob := o.big()
	if ob.Sign() == 0 {
		return Int128{}, false
	}
	m := new(big.Int).Mod(i.big(), ob)
	if m.Sign() != 0 && ob.Sign() < 0 {
		m.Add(m, ob)
	}
	return int128FromBig(m), true
}

func (i Int128) Rem(o Int128) (Int128, bool) {
	ob := o.big()
	if ob.Sign() == 0 {
		return Int128{}, false
	}
	return int128FromBig(new(big.Int).Rem(i.big(), ob)), true
}

func (i Int128) Band(o Int128) Int128 { return Int128{Hi: i.Hi & o.Hi, Lo: i.Lo & o.Lo} }
func (i Int128) Bor(o Int128) Int128  { return Int128{Hi: i.Hi | o.Hi, Lo: i.Lo | o.Lo} }
func (i Int128) Bxor(o Int128) Int128 { return Int128{Hi: i.Hi ^ o.Hi, Lo: i.Lo ^ o.Lo} }
func (i Int128) Bnot() Int128         { return Int128{Hi: ^i.Hi, Lo: ^i.Lo} }

func (i Int128) Shl(n uint) Int128 {
	if n == 0 {
		return i
	}
	if n >= 128 {
		return Int128{}
	}
	if n >= 64 {
		return Int128{Hi: i.Lo << (n - 64), Lo: 0}
	}
	return Int128{Hi: (i.Hi << n) | (i.Lo >> (64 - n)), Lo: i.Lo << n}
}

func (i Int128) ShrLogical(n uint) Int128 {
	if n == 0 {
		return i
	}
	if n >= 128 {
		return Int128{}
	}
	if n >= 64 {
		return Int128{Hi: 0, Lo: i.Hi >> (n - 64)}
	}
	return Int128{Hi: i.Hi >> n, Lo: (i.Lo >> n) | (i.Hi << (64 - n))}
}

func (i Int128) CountOnes() int {
	return bits.OnesCount64(i.Hi) + bits.OnesCount64(i.Lo)
}

var (
	_ Equaler = Int128{}
	_ Ordered = Int128{}
)
