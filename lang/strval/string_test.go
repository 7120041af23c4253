package strval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteAtMatchesBytes(t *testing.T) {
	s := New("hello")
	for i := 0; i < s.Len(); i++ {
		require.Equal(t, s.Bytes()[i], s.ByteAt(i))
	}
	require.Equal(t, byte(0), s.b[s.Len()])
}

func TestReverseRoundTrip(t *testing.T) {
	cases := []string{"", "a", "hello world", "racecar"}
	for _, c := range cases {
		s := New(c)
		require.Equal(t, s.Go(), Reverse(Reverse(s)).Go())
	}
}

func TestReverseUTF8RoundTrip(t *testing.T) {
	cases := []string{"héllo", "日本語", "a🙂b"}
	for _, c := range cases {
		s := New(c)
		require.Equal(t, s.Go(), ReverseUTF8(ReverseUTF8(s)).Go())
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	pairs := [][2]string{{"a", "b"}, {"abc", "abd"}, {"x", "x"}, {"", "a"}}
	for _, p := range pairs {
		s, t2 := New(p[0]), New(p[1])
		require.Equal(t, Compare(s, t2), -Compare(t2, s))
	}
	require.Equal(t, 0, Compare(New("same"), New("same")))
}

func TestConcatAndSubstring(t *testing.T) {
	s := Concat(New("foo"), New("bar"))
	require.Equal(t, "foobar", s.Go())
	require.Equal(t, "oob", Substring(s, 1, 3).Go())
}

func TestWildcardMatch(t *testing.T) {
	require.True(t, Match(New("*.go"), New("main.go"), WildcardOptions{}))
	require.False(t, Match(New("*.go"), New("main.py"), WildcardOptions{}))
	require.True(t, Match(New("a?c"), New("abc"), WildcardOptions{}))
	require.True(t, Match(New("A*"), New("abc"), WildcardOptions{CaseSensitive: false}))
	require.False(t, Match(New("A*"), New("abc"), WildcardOptions{CaseSensitive: true}))
}

func TestJoinEnglishList(t *testing.T) {
	require.Equal(t, "a", Join([]String{New("a")}, "and").Go())
	require.Equal(t, "a and b", Join([]String{New("a"), New("b")}, "and").Go())
	require.Equal(t, "a, b, and c", Join([]String{New("a"), New("b"), New("c")}, "and").Go())
}

func TestFormat(t *testing.T) {
	out, err := Format(New("%s is %d"), []any{"x", 3})
	require.NoError(t, err)
	require.Equal(t, "x is 3", out.Go())
}

func TestCEscapeRoundTrip(t *testing.T) {
	s := New("a\nb\tc\"d")
	esc := CEscapeAdd(s)
	back, err := CEscapeStrip(esc)
	require.NoError(t, err)
	require.Equal(t, s.Go(), back.Go())
}
