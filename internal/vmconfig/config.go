// Package vmconfig loads the virtual machine's environment-tunable knobs
// from the process environment via github.com/caarlos0/env/v6 -- a
// dependency the teacher pulls in only transitively (through
// github.com/mna/mainer) and never wires directly itself. cmd/smile and any
// other embedder construct their machine.Machine through this package
// instead of machine.NewMachine directly, so the three knobs below are
// always honored the same way regardless of entry point.
package vmconfig

import (
	"fmt"
	"runtime/debug"

	"github.com/caarlos0/env/v6"
	"github.com/mna/smile/lang/machine"
)

// Config holds the VM tunables spec.md §5's resource model leaves to the
// embedder ("a host embedding the VM may inject...", "the GC is assumed to
// be stop-the-world and cooperative"): how far a single run is allowed to
// execute, how deep its call-frame stack is preallocated, and how
// aggressively the Go garbage collector this reimplementation relies on
// (rather than a bespoke one) is paced.
type Config struct {
	// MaxSteps bounds the number of bytecode instructions a single Eval_Run/
	// Eval_Continue drives before the program aborts with a FatalError
	// (machine.Machine.MaxSteps). Zero, the default, means unlimited.
	MaxSteps uint64 `env:"SMILE_MAX_STEPS" envDefault:"0"`

	// StackSize preallocates machine.Machine's call-frame stack to this
	// depth, avoiding repeated slice growth for deeply recursive programs.
	StackSize int `env:"SMILE_STACK_SIZE" envDefault:"64"`

	// GCThreshold is passed straight to runtime/debug.SetGCPercent: the
	// stand-in for spec.md §5's "stop-the-world and cooperative" GC
	// assumption, since this implementation has no bespoke collector of its
	// own to pace -- it leans entirely on the Go runtime's.
	GCThreshold int `env:"SMILE_GC_THRESHOLD" envDefault:"100"`
}

// Load reads Config from the environment, falling back to the defaults
// above for any variable left unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("vmconfig: %w", err)
	}
	return cfg, nil
}

// NewMachine builds a machine.Machine preconfigured from cfg: MaxSteps
// wired straight through, StackSize used to preallocate the call-frame
// stack, and GCThreshold applied process-wide before returning.
func (cfg Config) NewMachine() *machine.Machine {
	debug.SetGCPercent(cfg.GCThreshold)
	m := machine.NewMachine()
	m.MaxSteps = cfg.MaxSteps
	m.PreallocateFrames(cfg.StackSize)
	return m
}
