package parser_test

import (
	"context"
	"testing"

	"github.com/mna/smile/lang/parser"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

// sexpr converts a parsed value.Object tree into plain Go values (strings
// for symbols prefixed with '#', the decoded literal for numbers/strings/
// booleans/null, and []any for lists/pairs) so test expectations read like
// the tree shapes spec.md §4.2 documents instead of requiring bespoke
// Object comparisons.
func sexpr(o value.Object) any {
	switch v := o.(type) {
	case value.Symbol:
		return "#" + v.Name()
	case value.Int64:
		return v.Signed()
	case value.Float64:
		return float64(v)
	case value.String:
		return v.ToString()
	case value.Bool:
		return bool(v)
	case *value.Pair:
		return []any{sexpr(v.Left), ".", sexpr(v.Right)}
	case *value.List:
		var out []any
		var cur value.Object = v
		for {
			lst, ok := cur.(*value.List)
			if !ok {
				break
			}
			out = append(out, sexpr(lst.Head))
			cur = lst.Tail
		}
		return out
	default:
		if value.IsNull(o) {
			return nil
		}
		return o
	}
}

func parseOneForm(t *testing.T, src string) value.Object {
	t.Helper()
	fs := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), 0, fs, "test.sm", []byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Forms, 1)
	return ch.Forms[0]
}

func TestParseDecl(t *testing.T) {
	form := parseOneForm(t, "var x = 1")
	require.Equal(t, []any{"#$set", "#x", int64(1)}, sexpr(form))
}

func TestParseDeclNoInitializer(t *testing.T) {
	form := parseOneForm(t, "var x")
	require.Equal(t, []any{"#$set", "#x", nil}, sexpr(form))
}

func TestParseAssign(t *testing.T) {
	form := parseOneForm(t, "x = 1")
	require.Equal(t, []any{"#$set", "#x", int64(1)}, sexpr(form))
}

func TestParseOpEquals(t *testing.T) {
	form := parseOneForm(t, "x += 1")
	require.Equal(t, []any{
		"#$set", "#x",
		[]any{[]any{"#$dot", "#x", "#+"}, int64(1)},
	}, sexpr(form))
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// "1 + 2 * 3" => [[$dot 1 +] [[$dot 2 *] 3]], '*' binds tighter than '+'.
	form := parseOneForm(t, "1 + 2 * 3")
	require.Equal(t, []any{
		[]any{"#$dot", int64(1), "#+"},
		[]any{[]any{"#$dot", int64(2), "#*"}, int64(3)},
	}, sexpr(form))
}

func TestParseComparison(t *testing.T) {
	form := parseOneForm(t, "a < b")
	require.Equal(t, []any{"#<", "#a", "#b"}, sexpr(form))
}

func TestParseIs(t *testing.T) {
	form := parseOneForm(t, "a is b")
	require.Equal(t, []any{"#is", "#a", "#b"}, sexpr(form))
}

func TestParseAndOrPrecedence(t *testing.T) {
	// "and" binds tighter than "or": "a and b or c" => [or [and a b] c]
	form := parseOneForm(t, "a and b or c")
	require.Equal(t, []any{
		"#or",
		[]any{"#and", "#a", "#b"},
		"#c",
	}, sexpr(form))
}

func TestParseNot(t *testing.T) {
	form := parseOneForm(t, "not not a")
	require.Equal(t, []any{"#not", []any{"#not", "#a"}}, sexpr(form))
}

func TestParseDot(t *testing.T) {
	form := parseOneForm(t, "a.b")
	require.Equal(t, []any{"#$dot", "#a", "#b"}, sexpr(form))
}

func TestParseDotCall(t *testing.T) {
	form := parseOneForm(t, "a.b(c)")
	require.Equal(t, []any{
		[]any{"#$dot", "#a", "#b"},
		"#c",
	}, sexpr(form))
}

func TestParseCall(t *testing.T) {
	form := parseOneForm(t, "f(a, b)")
	require.Equal(t, []any{"#f", "#a", "#b"}, sexpr(form))
}

func TestParseKeywordMessage(t *testing.T) {
	// "a foo b, c" is Smalltalk-style keyword messaging: a.foo(b, c).
	form := parseOneForm(t, "a foo b, c")
	require.Equal(t, []any{
		[]any{"#$dot", "#a", "#foo"},
		"#b", "#c",
	}, sexpr(form))
}

func TestParseUnaryMinus(t *testing.T) {
	form := parseOneForm(t, "-a")
	require.Equal(t, []any{[]any{"#$dot", "#a", "#neg"}}, sexpr(form))
}

func TestParseNew(t *testing.T) {
	form := parseOneForm(t, "new Point { x: 1 y: 2 }")
	require.Equal(t, []any{
		"#$new", "#Point",
		[]any{
			[]any{"#x", int64(1)},
			[]any{"#y", int64(2)},
		},
	}, sexpr(form))
}

func TestParseScope(t *testing.T) {
	form := parseOneForm(t, "{ var x = 1 x }")
	require.Equal(t, []any{
		"#$progn",
		[]any{"#$set", "#x", int64(1)},
		"#x",
	}, sexpr(form))
}

func TestParseRawList(t *testing.T) {
	form := parseOneForm(t, "[a b c]")
	require.Equal(t, []any{"#a", "#b", "#c"}, sexpr(form))
}

func TestParseRawListNested(t *testing.T) {
	// a raw list immediately followed by another '[' must open a nested
	// raw-list term, not a long-bracket string: '[' has no meaning in
	// this grammar other than the raw-list delimiter (spec.md §4.2).
	form := parseOneForm(t, "[[1 2] 3]")
	require.Equal(t, []any{
		[]any{int64(1), int64(2)},
		int64(3),
	}, sexpr(form))
}

func TestParseRange(t *testing.T) {
	form := parseOneForm(t, "1 .. 10")
	require.Equal(t, []any{
		[]any{"#$dot", int64(1), "#to"},
		int64(10),
	}, sexpr(form))
}

func TestParseErrorRecoversAtBrace(t *testing.T) {
	fs := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), 0, fs, "test.sm", []byte("{ var } x = 1"))
	require.Error(t, err)
	// the malformed scope is dropped, but parsing resumes after its '}' and
	// recovers the following top-level form.
	require.Len(t, ch.Forms, 1)
	require.Equal(t, []any{"#$set", "#x", int64(1)}, sexpr(ch.Forms[0]))
}

func TestParseComments(t *testing.T) {
	fs := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), parser.Comments, fs, "test.sm", []byte("-- leading\nx = 1\n-- trailing"))
	require.NoError(t, err)
	require.Len(t, ch.Forms, 1)
	require.Len(t, ch.Comments, 2)
	require.Equal(t, " leading", ch.Comments[0].Val)
	require.Equal(t, 0, ch.Comments[0].FormIndex)
	require.Equal(t, " trailing", ch.Comments[1].Val)
	require.Equal(t, 1, ch.Comments[1].FormIndex)
}

func TestParseSymbolLiteral(t *testing.T) {
	form := parseOneForm(t, "#foo")
	require.Equal(t, "#foo", sexpr(form))
}

func TestParseCustomSyntaxStmt(t *testing.T) {
	fs := token.NewFileSet()
	src := "#syntax STMT: [myif [EXPR c] then [STMT t] else [STMT e]] => [$if c t e]\n" +
		"myif x then 1 else 2"
	ch, err := parser.ParseChunk(context.Background(), 0, fs, "test.sm", []byte(src))
	require.NoError(t, err)
	require.Len(t, ch.Forms, 2)
	require.Equal(t, []any{"#$if", "#x", int64(1), int64(2)}, sexpr(ch.Forms[1]))
}

func TestParseCustomSyntaxScopeIsolation(t *testing.T) {
	fs := token.NewFileSet()
	src := "{ #syntax STMT: [myif [EXPR c] then [STMT t] else [STMT e]] => [$if c t e] }\n" +
		"{ myif x then 1 else 2 }"
	_, err := parser.ParseChunk(context.Background(), 0, fs, "test.sm", []byte(src))
	require.Error(t, err)
}

func TestParseCustomSyntaxReturnsSyntaxObject(t *testing.T) {
	form := parseOneForm(t, "#syntax STMT: [myif [EXPR c]] => [$quote c]")
	s, ok := form.(*value.Syntax)
	require.True(t, ok, "expected *value.Syntax, got %T", form)
	require.Equal(t, "_stmt", s.Class.String())
}
