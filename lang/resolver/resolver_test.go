package resolver_test

import (
	"context"
	"testing"

	"github.com/mna/smile/lang/ast"
	"github.com/mna/smile/lang/parser"
	"github.com/mna/smile/lang/resolver"
	"github.com/mna/smile/lang/symbol"
	"github.com/mna/smile/lang/token"
	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func parseChunk(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(context.Background(), 0, fset, "test.smile", []byte(src))
	require.NoError(t, err)
	return ch
}

func TestResolveFilesValidProgram(t *testing.T) {
	ch := parseChunk(t, `
var x = 1
{
	var y = x + 1
	print(y)
}
print(x)
`)
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, 0,
		nil, func(name string) bool { return name == "print" })
	require.NoError(t, err)
}

func TestResolveFilesUnresolvedGlobalIsNotAnError(t *testing.T) {
	// unlike Starlark, a plain reference to a name nothing in scope ever
	// bound is a valid (dynamically resolved) global, not a resolve error.
	ch := parseChunk(t, `print(totallyUndeclaredName)`)
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, 0, nil, nil)
	require.NoError(t, err)
}

func TestResolveFilesClosureCapturesEnclosingLocal(t *testing.T) {
	ch := parseChunk(t, `
var counter = 0
var inc = [$fn [] counter]
`)
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, 0, nil, nil)
	require.NoError(t, err)
}

func TestResolveFilesFnParamsAreLocal(t *testing.T) {
	ch := parseChunk(t, `var add = [$fn [x y] x]`)
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, 0, nil, nil)
	require.NoError(t, err)
}

func TestResolveFilesFnRequiresParamList(t *testing.T) {
	fn := value.OfSlice(value.Symbol(symbol.Fn))
	ch := &ast.Chunk{Forms: []value.Object{fn}}
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, 0, nil, nil)
	require.Error(t, err)
}

func TestResolveFilesNoErrorOnEmptyChunkList(t *testing.T) {
	require.NoError(t, resolver.ResolveFiles(context.Background(), nil, nil, 0, nil, nil))
}

func TestResolveFilesPredeclaredAndUniversalNamesAreAccepted(t *testing.T) {
	ch := parseChunk(t, `
predeclaredFn()
universalFn()
`)
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, 0,
		func(name string) bool { return name == "predeclaredFn" },
		func(name string) bool { return name == "universalFn" })
	require.NoError(t, err)
}

func TestResolveFilesNameBlocksModeDoesNotPanic(t *testing.T) {
	ch := parseChunk(t, `
var x = 1
{
	var y = x
}
`)
	err := resolver.ResolveFiles(context.Background(), nil, []*ast.Chunk{ch}, resolver.NameBlocks, nil, nil)
	require.NoError(t, err)
}
