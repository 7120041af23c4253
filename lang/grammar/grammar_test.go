package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestEBNF checks that grammar.ebnf -- the reference rendering of Smile's
// precedence ladder (spec.md §4.2) -- is well-formed and every production
// is reachable from Chunk. lang/parser is hand-written recursive descent,
// not generated from this file; this only guards the documentation
// against drifting out of sync with itself.
func TestEBNF(t *testing.T) {
	f, err := os.Open("grammar.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("grammar.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Chunk"); err != nil {
		t.Fatal(err)
	}
}
