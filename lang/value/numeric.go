package value

import (
	"math/bits"
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Int is the generic boxed representation shared by Byte, Int16, Int32 and
// Int64 (spec.md §4.5): a fixed-width two's-complement bit pattern tagged
// with the Kind that selects its vtable and unboxed stack-slot width. Arith-
// metic that differs between the signed and unsigned readings of the same
// bits (div/mod/rem/compare/shift) is exposed as a pair of methods, mirroring
// the source's `~`-suffixed unsigned variants (spec.md §4.5).
type Int[U constraints.Unsigned] struct {
	V U
	K Kind
}

// Byte, Int16, Int32 and Int64 are the four fixed-width integer kinds; each
// instantiates the shared Int machinery over the unsigned Go type of the
// matching width.
type (
	Byte  = Int[uint8]
	Int16 = Int[uint16]
	Int32 = Int[uint32]
	Int64 = Int[uint64]
)

func NewByte(v uint8) Byte   { return Int[uint8]{V: v, K: KindByte} }
func NewInt16(v int16) Int16 { return Int[uint16]{V: uint16(v), K: KindInt16} }
func NewInt32(v int32) Int32 { return Int[uint32]{V: uint32(v), K: KindInt32} }
func NewInt64(v int64) Int64 { return Int[uint64]{V: uint64(v), K: KindInt64} }

func bitWidth[U constraints.Unsigned]() uint {
	var z U
	return uint(unsafe.Sizeof(z)) * 8
}

// Signed decodes the receiver's bit pattern as a two's-complement signed
// value, sign-extended into an int64.
func (i Int[U]) Signed() int64 {
	w := bitWidth[U]()
	uv := uint64(i.V)
	if w >= 64 {
		return int64(uv)
	}
	signBit := uint64(1) << (w - 1)
	if uv&signBit != 0 {
		return int64(uv) - int64(uint64(1)<<w)
	}
	return int64(uv)
}

// Unsigned returns the receiver's bit pattern as an unsigned 64-bit value.
func (i Int[U]) Unsigned() uint64 { return uint64(i.V) }

func fromSigned[U constraints.Unsigned](s int64) U { return U(uint64(s)) }

func (i Int[U]) Kind() Kind       { return i.K }
func (i Int[U]) ToBool() bool     { return i.V != 0 }
func (i Int[U]) Hash() uint64     { return uint64(i.V) }
func (i Int[U]) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (i Int[U]) ToString() string { return strconv.FormatInt(i.Signed(), 10) }

// ToStringBase renders the receiver's signed value in the given base
// (2..36), per spec.md §4.5.
func (i Int[U]) ToStringBase(base int) string { return strconv.FormatInt(i.Signed(), base) }

// ToStringBaseUnsigned renders the receiver's unsigned value in the given
// base (2..36).
func (i Int[U]) ToStringBaseUnsigned(base int) string {
	return strconv.FormatUint(i.Unsigned(), base)
}

func (i Int[U]) CompareEqual(other Object) bool {
	oi, ok := other.(Int[U])
	return ok && oi.V == i.V
}

// Cmp implements Ordered using the SIGNED interpretation of the bits.
func (i Int[U]) Cmp(other Object) (int, bool) {
	oi, ok := other.(Int[U])
	if !ok {
		return 0, false
	}
	a, b := i.Signed(), oi.Signed()
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}

// CmpUnsigned is the unsigned (`~`-suffixed) counterpart of Cmp.
func (i Int[U]) CmpUnsigned(other Int[U]) int {
	a, b := i.V, other.V
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (i Int[U]) mk(v uint64) Int[U] { return Int[U]{V: fromSigned[U](int64(v)), K: i.K} }

// Add, Sub and Mul wrap in two's complement identically for the signed and
// unsigned readings, so there is only one variant of each.
func (i Int[U]) Add(o Int[U]) Int[U] { return i.mk(uint64(i.V) + uint64(o.V)) }
func (i Int[U]) Sub(o Int[U]) Int[U] { return i.mk(uint64(i.V) - uint64(o.V)) }
func (i Int[U]) Mul(o Int[U]) Int[U] { return i.mk(uint64(i.V) * uint64(o.V)) }

// Neg returns the two's-complement negation.
func (i Int[U]) Neg() Int[U] { return i.mk(uint64(-i.Signed())) }

// Abs returns the absolute value of the signed interpretation.
func (i Int[U]) Abs() Int[U] {
	s := i.Signed()
	if s < 0 {
		s = -s
	}
	return i.mk(uint64(s))
}

// Sign returns -1, 0 or +1 for the signed interpretation.
func (i Int[U]) Sign() int {
	s := i.Signed()
	switch {
	case s < 0:
		return -1
	case s > 0:
		return 1
	default:
		return 0
	}
}

// Div is Euclidean signed division: rounds toward negative infinity
// (spec.md §4.5). DivTrunc rounds toward zero (the `div` operator).
func (i Int[U]) Div(o Int[U]) (Int[U], bool) {
	if o.V == 0 {
		return Int[U]{K: i.K}, false
	}
	a, b := i.Signed(), o.Signed()
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return i.mk(uint64(q)), true
}

// DivTrunc implements the `div` operator: truncating (toward zero) signed
// division.
func (i Int[U]) DivTrunc(o Int[U]) (Int[U], bool) {
	if o.V == 0 {
		return Int[U]{K: i.K}, false
	}
	return i.mk(uint64(i.Signed() / o.Signed())), true
}

// Mod has the sign of the divisor (spec.md §4.5, the Euclidean-adjacent
// floor-mod companion to Div).
func (i Int[U]) Mod(o Int[U]) (Int[U], bool) {
	if o.V == 0 {
		return Int[U]{K: i.K}, false
	}
	a, b := i.Signed(), o.Signed()
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return i.mk(uint64(m)), true
}

// Rem has the sign of the dividend (Go's native %).
func (i Int[U]) Rem(o Int[U]) (Int[U], bool) {
	if o.V == 0 {
		return Int[U]{K: i.K}, false
	}
	return i.mk(uint64(i.Signed() % o.Signed())), true
}

// DivUnsigned, ModUnsigned and RemUnsigned are the `~`-suffixed unsigned
// variants; for unsigned operands truncating and floor division coincide.
func (i Int[U]) DivUnsigned(o Int[U]) (Int[U], bool) {
	if o.V == 0 {
		return Int[U]{K: i.K}, false
	}
	return i.mk(uint64(i.V) / uint64(o.V)), true
}

func (i Int[U]) ModUnsigned(o Int[U]) (Int[U], bool) {
	if o.V == 0 {
		return Int[U]{K: i.K}, false
	}
	return i.mk(uint64(i.V) % uint64(o.V)), true
}

// Pow raises the receiver to a non-negative integer power.
func (i Int[U]) Pow(n int) Int[U] {
	result := int64(1)
	base := i.Signed()
	for n > 0 {
		if n&1 == 1 {
			result *= base
		}
		base *= base
		n >>= 1
	}
	return i.mk(uint64(result))
}

// Sqrt returns the integer square root (floor) of a non-negative receiver.
func (i Int[U]) Sqrt() Int[U] {
	n := i.Unsigned()
	if n == 0 {
		return i.mk(0)
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return i.mk(x)
}

// Clip clamps the receiver's signed value into [lo, hi].
func (i Int[U]) Clip(lo, hi Int[U]) Int[U] {
	s, l, h := i.Signed(), lo.Signed(), hi.Signed()
	if s < l {
		return lo
	}
	if s > h {
		return hi
	}
	return i
}

func (i Int[U]) Min(o Int[U]) Int[U] {
	if i.Signed() <= o.Signed() {
		return i
	}
	return o
}

func (i Int[U]) Max(o Int[U]) Int[U] {
	if i.Signed() >= o.Signed() {
		return i
	}
	return o
}

// IsPow2 reports whether the unsigned value is an exact power of two.
func (i Int[U]) IsPow2() bool { return i.V != 0 && i.V&(i.V-1) == 0 }

// NextPow2 returns the smallest power of two >= the unsigned value.
func (i Int[U]) NextPow2() Int[U] {
	n := i.Unsigned()
	if n <= 1 {
		return i.mk(1)
	}
	return i.mk(1 << uint(bits.Len64(n-1)))
}

// IntLg returns floor(log2(n)) for a positive unsigned value.
func (i Int[U]) IntLg() int {
	n := i.Unsigned()
	if n == 0 {
		return -1
	}
	return bits.Len64(n) - 1
}

func (i Int[U]) Band(o Int[U]) Int[U] { return i.mk(uint64(i.V) & uint64(o.V)) }
func (i Int[U]) Bor(o Int[U]) Int[U]  { return i.mk(uint64(i.V) | uint64(o.V)) }
func (i Int[U]) Bxor(o Int[U]) Int[U] { return i.mk(uint64(i.V) ^ uint64(o.V)) }
func (i Int[U]) Bnot() Int[U]         { return i.mk(^uint64(i.V) & widthMask(bitWidth[U]())) }

func widthMask(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// Shl, ShrArith and ShrLogical implement << and the signed and unsigned
// >>; there are no saturating-shift methods.
func (i Int[U]) Shl(n uint) Int[U] { return i.mk((uint64(i.V) << n) & widthMask(bitWidth[U]())) }

func (i Int[U]) ShrArith(n uint) Int[U] {
	return i.mk(uint64(i.Signed() >> n))
}

func (i Int[U]) ShrLogical(n uint) Int[U] { return i.mk(uint64(i.V) >> n) }

func (i Int[U]) Rotl(n uint) Int[U] {
	w := bitWidth[U]()
	n %= w
	v := uint64(i.V) & widthMask(w)
	return i.mk(((v << n) | (v >> (w - n))) & widthMask(w))
}

func (i Int[U]) Rotr(n uint) Int[U] {
	w := bitWidth[U]()
	n %= w
	v := uint64(i.V) & widthMask(w)
	return i.mk(((v >> n) | (v << (w - n))) & widthMask(w))
}

func (i Int[U]) CountOnes() int  { return bits.OnesCount64(uint64(i.V)) }
func (i Int[U]) CountZeros() int { return int(bitWidth[U]()) - bits.OnesCount64(uint64(i.V)) }

// Parity returns 1 if CountOnes is odd, 0 otherwise.
func (i Int[U]) Parity() int { return i.CountOnes() & 1 }

func (i Int[U]) ReverseBits() Int[U] {
	w := bitWidth[U]()
	return i.mk(bits.Reverse64(uint64(i.V)) >> (64 - w))
}

func (i Int[U]) ReverseBytes() Int[U] {
	switch bitWidth[U]() {
	case 8:
		return i
	case 16:
		return i.mk(uint64(bits.ReverseBytes16(uint16(i.V))))
	case 32:
		return i.mk(uint64(bits.ReverseBytes32(uint32(i.V))))
	default:
		return i.mk(bits.ReverseBytes64(uint64(i.V)))
	}
}

func (i Int[U]) CountRightZeros() int {
	if i.V == 0 {
		return int(bitWidth[U]())
	}
	return bits.TrailingZeros64(uint64(i.V))
}

func (i Int[U]) CountRightOnes() int { return i.Bnot().CountRightZeros() }

func (i Int[U]) CountLeftZeros() int {
	w := int(bitWidth[U]())
	if i.V == 0 {
		return w
	}
	return bits.LeadingZeros64(uint64(i.V)) - (64 - w)
}

func (i Int[U]) CountLeftOnes() int { return i.Bnot().CountLeftZeros() }

// Parse parses s in the given base (0 lets strconv detect a prefix) as a
// signed value of the receiver's width.
func Parse[U constraints.Unsigned](s string, base int, kind Kind) (Int[U], error) {
	n, err := strconv.ParseInt(s, base, int(bitWidth[U]()))
	if err != nil {
		return Int[U]{K: kind}, err
	}
	return Int[U]{V: fromSigned[U](n), K: kind}, nil
}

var (
	_ Equaler = Int[uint8]{}
	_ Ordered = Int[uint8]{}
)
