package vmconfig_test

import (
	"testing"

	"github.com/mna/smile/internal/vmconfig"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := vmconfig.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(0), cfg.MaxSteps)
	require.Equal(t, 64, cfg.StackSize)
	require.Equal(t, 100, cfg.GCThreshold)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SMILE_MAX_STEPS", "1000")
	t.Setenv("SMILE_STACK_SIZE", "256")
	t.Setenv("SMILE_GC_THRESHOLD", "200")

	cfg, err := vmconfig.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(1000), cfg.MaxSteps)
	require.Equal(t, 256, cfg.StackSize)
	require.Equal(t, 200, cfg.GCThreshold)
}

func TestNewMachineAppliesConfig(t *testing.T) {
	cfg := vmconfig.Config{MaxSteps: 42, StackSize: 8, GCThreshold: 100}
	m := cfg.NewMachine()
	require.NotNil(t, m)
	require.Equal(t, uint64(42), m.MaxSteps)
}
