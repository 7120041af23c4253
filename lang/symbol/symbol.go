// Package symbol implements the process-wide intern table that maps
// strings to 32-bit symbol ids, as used throughout the parser and the
// virtual machine. Comparing symbols is comparing integers; interning is
// monotonic, symbols are never removed (spec.md §5, "Shared resources").
package symbol

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"
)

// ID is an interned symbol's 32-bit identifier. The zero value is Invalid and
// is never returned by Intern.
type ID uint32

// Invalid is the reserved id meaning "no symbol".
const Invalid ID = 0

func (id ID) String() string {
	if name, ok := Lookup(id); ok {
		return name
	}
	return fmt.Sprintf("symbol#%d", uint32(id))
}

// table is the single global intern table: a swiss map from string to id for
// fast interning, plus a growable slice for the reverse id-to-name mapping.
// All mutation happens on the interpreter's single fiber, but Intern is
// guarded defensively since embedders may intern symbols (e.g. from a
// loader, §6) before or between VM runs.
type table struct {
	mu    sync.Mutex
	ids   *swiss.Map[string, ID]
	names []string // names[0] is unused (Invalid has no name)
}

var global = &table{
	ids:   swiss.NewMap[string, ID](256),
	names: []string{""},
}

// Intern returns the symbol id for s, allocating a new one if s has not been
// seen before. The same string always yields the same id for the lifetime of
// the process.
func Intern(s string) ID {
	global.mu.Lock()
	defer global.mu.Unlock()

	if id, ok := global.ids.Get(s); ok {
		return id
	}
	id := ID(len(global.names))
	global.names = append(global.names, s)
	global.ids.Put(s, id)
	return id
}

// Lookup returns the name interned under id, or false if id is Invalid or
// has not been allocated.
func Lookup(id ID) (string, bool) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if id == Invalid || int(id) >= len(global.names) {
		return "", false
	}
	return global.names[id], true
}

// Count returns the number of interned symbols, including Invalid's unused
// slot. Mostly useful for tests and diagnostics.
func Count() int {
	global.mu.Lock()
	defer global.mu.Unlock()
	return len(global.names)
}
