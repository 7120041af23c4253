package scanner_test

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/smile/internal/filetest"
	"github.com/mna/smile/internal/maincmd"
	"github.com/mna/smile/lang/scanner"
	"github.com/mna/smile/lang/token"
	"github.com/stretchr/testify/require"
)

var testUpdateScannerTests = flag.Bool("test.update-scanner-tests", false, "If set, replace expected scanner golden-file results with actual results.")

func scanAll(t *testing.T, src string) ([]token.Token, []token.Value, scanner.ErrorList) {
	t.Helper()

	var s scanner.Scanner
	var errs scanner.ErrorList
	fs := token.NewFileSet()
	f := fs.AddFile("test.sm", -1, len(src))
	s.Init(f, []byte(src), errs.Add)

	var toks []token.Token
	var vals []token.Value
	for {
		var v token.Value
		tok := s.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	return toks, vals, errs
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, _, errs := scanAll(t, `+ - * / <= >= == != === !== << >> : .. ##`)
	require.Empty(t, errs)
	want := []token.Token{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.LE, token.GE,
		token.EQEQ, token.NEQ, token.SUPEREQ, token.SUPERNE, token.LTLT, token.GTGT,
		token.COLON, token.DOTDOT, token.HASHHASH, token.EOF,
	}
	require.Equal(t, want, toks)
}

func TestScanOpEquals(t *testing.T) {
	toks, _, errs := scanAll(t, `+= -= *= /= %= &= |= ^= <<= >>=`)
	require.Empty(t, errs)
	want := []token.Token{
		token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ,
		token.AMP_EQ, token.PIPE_EQ, token.CIRCUMFLEX_EQ, token.LTLT_EQ, token.GTGT_EQ,
		token.EOF,
	}
	require.Equal(t, want, toks)
}

func TestScanIdentsAndKeywords(t *testing.T) {
	toks, vals, errs := scanAll(t, `foo and or not is new bar?`)
	require.Empty(t, errs)
	want := []token.Token{
		token.IDENT, token.AND, token.OR, token.NOT, token.IS, token.NEW, token.IDENT, token.QUESTION, token.EOF,
	}
	require.Equal(t, want, toks)
	require.Equal(t, "foo", vals[0].Raw)
	require.Equal(t, "bar", vals[6].Raw)
}

func TestScanIntAndFloat(t *testing.T) {
	toks, vals, errs := scanAll(t, `123 1.5e2`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.INT, token.FLOAT, token.EOF}, toks)
	require.Equal(t, int64(123), vals[0].Int)
	require.Equal(t, 150.0, vals[1].Float)
}

func TestScanShortString(t *testing.T) {
	toks, vals, errs := scanAll(t, `"hello"`)
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.STRING, token.EOF}, toks)
	require.Equal(t, "hello", vals[0].String)
}

func TestScanCommentSkipsToEndOfLine(t *testing.T) {
	toks, vals, errs := scanAll(t, "-- a comment\n123")
	require.Empty(t, errs)
	require.Equal(t, []token.Token{token.COMMENT, token.INT, token.EOF}, toks)
	require.Equal(t, " a comment", vals[0].String)
}

func TestScanIllegalBang(t *testing.T) {
	// bare '!' (not followed by '=') is not a valid Smile token.
	_, _, errs := scanAll(t, `!x`)
	require.NotEmpty(t, errs)
}

// TestScanGolden tokenizes every file in testdata/in and diffs the rendered
// token stream against the matching golden file in testdata/out, the same
// source/result layout the teacher's scanner tests use (modeled on
// go/scanner's own golden-file corpus).
func TestScanGolden(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".sm") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			// error is ignored, we just want it to be printed to ebuf
			_ = maincmd.TokenizeFiles(ctx, stdio, token.PosShort, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateScannerTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateScannerTests)
		})
	}
}

func TestScanNestedRawListBrackets(t *testing.T) {
	// '[' always opens a raw-list term (spec.md §4.2); it never starts a
	// long-bracket string, so two adjacent openers tokenize as two LBRACKs
	// rather than one STRING.
	toks, _, errs := scanAll(t, `[[1 2] 3]`)
	require.Empty(t, errs)
	want := []token.Token{
		token.LBRACK, token.LBRACK, token.INT, token.INT, token.RBRACK,
		token.INT, token.RBRACK, token.EOF,
	}
	require.Equal(t, want, toks)
}
