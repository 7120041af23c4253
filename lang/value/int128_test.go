package value_test

import (
	"testing"

	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func TestInt128MulCarriesAcrossWords(t *testing.T) {
	// 2^64 * 2 = 2^65, which does not fit in the low word: the product must
	// carry entirely into Hi.
	twoTo64 := value.NewInt128(1, 0)
	two := value.NewInt128(0, 2)

	got := twoTo64.Mul(two)
	require.Equal(t, value.NewInt128(2, 0), got)
}

func TestInt128MulNegative(t *testing.T) {
	negOne := value.NewInt128(^uint64(0), ^uint64(0)) // -1 in two's complement
	five := value.NewInt128(0, 5)

	got := negOne.Mul(five)
	require.Equal(t, "-5", got.ToString())
}

func TestInt128DivAndModFloor(t *testing.T) {
	negSeven := value.NewInt128(0, 7).Neg()
	two := value.NewInt128(0, 2)

	div, ok := negSeven.Div(two)
	require.True(t, ok)
	require.Equal(t, "-4", div.ToString())

	mod, ok := negSeven.Mod(two)
	require.True(t, ok)
	require.Equal(t, "1", mod.ToString())
}

func TestInt128DivByZero(t *testing.T) {
	seven := value.NewInt128(0, 7)
	zero := value.NewInt128(0, 0)

	_, ok := seven.Div(zero)
	require.False(t, ok)
	_, ok = seven.Mod(zero)
	require.False(t, ok)
	_, ok = seven.Rem(zero)
	require.False(t, ok)
}

func TestInt128AddSubRoundTrip(t *testing.T) {
	a := value.NewInt128(0, 1<<63)
	b := value.NewInt128(0, 1<<63)

	sum := a.Add(b)
	require.Equal(t, value.NewInt128(1, 0), sum)
	require.Equal(t, a, sum.Sub(b))
}

