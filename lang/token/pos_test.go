package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(12, 34)
	line, col := p.LineCol()
	require.Equal(t, 12, line)
	require.Equal(t, 34, col)
	require.False(t, p.Unknown())
}

func TestPosUnknown(t *testing.T) {
	require.True(t, Pos(0).Unknown())
	require.True(t, MakePos(0, 1).Unknown())
	require.True(t, MakePos(1, 0).Unknown())
	require.False(t, MakePos(1, 1).Unknown())
}

func TestFilePosition(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("test.sm", -1, 10)
	// source: "ab\ncd\nef\n" (offsets of '\n' are 2, 5, 8)
	f.AddLine(2)
	f.AddLine(5)
	f.AddLine(8)

	cases := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
	}
	for _, c := range cases {
		pos := f.Pos(c.offset)
		got := f.Position(pos)
		require.Equal(t, Position{Filename: "test.sm", Line: c.wantLine, Col: c.wantCol}, got)
	}
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "-", Position{}.String())
	require.Equal(t, "a.sm", Position{Filename: "a.sm"}.String())
	require.Equal(t, "a.sm:3:4", Position{Filename: "a.sm", Line: 3, Col: 4}.String())
}
