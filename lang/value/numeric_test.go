package value_test

import (
	"testing"

	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func TestIntDivModRemSignLaws(t *testing.T) {
	cases := []struct {
		a, b                 int64
		wantDiv, wantMod     int64
		wantDivTrunc, wantRem int64
	}{
		// both positive: every variant agrees
		{7, 2, 3, 1, 3, 1},
		// negative dividend: Div floors toward -inf, DivTrunc toward 0;
		// Mod takes the divisor's sign, Rem takes the dividend's sign
		{-7, 2, -4, 1, -3, -1},
		{7, -2, -4, -1, -3, 1},
		{-7, -2, 3, -1, 3, -1},
		// exact division: all four variants agree, no adjustment needed
		{8, 2, 4, 0, 4, 0},
		{-8, 2, -4, 0, -4, 0},
	}

	for _, c := range cases {
		a, b := value.NewInt64(c.a), value.NewInt64(c.b)

		div, ok := a.Div(b)
		require.True(t, ok)
		require.Equal(t, c.wantDiv, div.Signed(), "Div(%d, %d)", c.a, c.b)

		mod, ok := a.Mod(b)
		require.True(t, ok)
		require.Equal(t, c.wantMod, mod.Signed(), "Mod(%d, %d)", c.a, c.b)

		divTrunc, ok := a.DivTrunc(b)
		require.True(t, ok)
		require.Equal(t, c.wantDivTrunc, divTrunc.Signed(), "DivTrunc(%d, %d)", c.a, c.b)

		rem, ok := a.Rem(b)
		require.True(t, ok)
		require.Equal(t, c.wantRem, rem.Signed(), "Rem(%d, %d)", c.a, c.b)

		// Mod's sign always matches the divisor's (or is zero); Rem's sign
		// always matches the dividend's (or is zero) -- the defining
		// distinction between the two (spec.md §4.5).
		if mod.Signed() != 0 {
			require.Equal(t, c.b < 0, mod.Signed() < 0)
		}
		if rem.Signed() != 0 {
			require.Equal(t, c.a < 0, rem.Signed() < 0)
		}
	}
}

func TestIntDivModRemByZero(t *testing.T) {
	a, zero := value.NewInt64(5), value.NewInt64(0)

	_, ok := a.Div(zero)
	require.False(t, ok)
	_, ok = a.Mod(zero)
	require.False(t, ok)
	_, ok = a.Rem(zero)
	require.False(t, ok)
	_, ok = a.DivTrunc(zero)
	require.False(t, ok)
}

func TestIntUnsignedDivModCoincide(t *testing.T) {
	// for unsigned operands, truncating and floor division coincide, so
	// DivUnsigned/ModUnsigned need only one pair of sign conventions.
	a := value.NewByte(200)
	b := value.NewByte(7)

	div, ok := a.DivUnsigned(b)
	require.True(t, ok)
	require.Equal(t, uint64(28), div.Unsigned())

	mod, ok := a.ModUnsigned(b)
	require.True(t, ok)
	require.Equal(t, uint64(4), mod.Unsigned())
}

func TestIntAddSubMulWrap(t *testing.T) {
	// Byte is 8 bits wide: 255 + 1 wraps to 0 in two's complement.
	max := value.NewByte(255)
	one := value.NewByte(1)
	require.Equal(t, uint64(0), max.Add(one).Unsigned())
	require.Equal(t, uint64(255), value.NewByte(0).Sub(one).Unsigned())
}

func TestIntCmpUsesSignedInterpretation(t *testing.T) {
	// Byte(255) is -1 when read as signed, so it compares less than 1.
	neg1 := value.NewByte(255)
	one := value.NewByte(1)
	cmp, ok := neg1.Cmp(one)
	require.True(t, ok)
	require.Equal(t, -1, cmp)

	// but the unsigned comparison reverses the order.
	require.Equal(t, 1, neg1.CmpUnsigned(one))
}
