package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d", tok)
	}
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestLookupKw(t *testing.T) {
	cases := []struct {
		lit  string
		want Token
	}{
		{"and", AND},
		{"or", OR},
		{"not", NOT},
		{"is", IS},
		{"new", NEW},
		{"null", NULLKW},
		{"true", TRUEKW},
		{"false", FALSEKW},
		{"var", VAR},
		{"syntax", SYNTAX},
		{"frobnicate", IDENT},
		{"+", IDENT},
	}
	for _, c := range cases {
		require.Equal(t, c.want, LookupKw(c.lit), c.lit)
	}
}

func TestIsCmp(t *testing.T) {
	for _, tok := range []Token{LT, GT, GE, LE, EQEQ, NEQ, SUPEREQ, SUPERNE, IS} {
		require.True(t, tok.IsCmp(), tok.String())
	}
	require.False(t, PLUS.IsCmp())
}

func TestIsOpEquals(t *testing.T) {
	base, ok := PLUS_EQ.IsOpEquals()
	require.True(t, ok)
	require.Equal(t, PLUS, base)

	_, ok = PLUS.IsOpEquals()
	require.False(t, ok)
}
