package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/smile/internal/maincmd"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.sm")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunFilesPrintsResultValue(t *testing.T) {
	path := writeSource(t, `"hello"`)

	var out, errBuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errBuf}
	err := maincmd.RunFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", out.String())
	require.Empty(t, errBuf.String())
}

func TestRunFilesReportsCompileError(t *testing.T) {
	// "[$if true]" is a malformed $if: requires (cond then else), only one
	// operand given.
	path := writeSource(t, `[$if true]`)

	var out, errBuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errBuf}
	err := maincmd.RunFiles(context.Background(), stdio, path)
	require.Error(t, err)
	require.NotEmpty(t, errBuf.String())
}
