package core_test

import (
	"testing"

	"github.com/momentics/corearbiter/core"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	r := core.NewProcessRegistry()
	p1 := r.GetOrCreate(42)
	p2 := r.GetOrCreate(42)
	require.Same(t, p1, p2)
	require.Equal(t, 1, r.Len())
}

func TestRemoveDropsProcess(t *testing.T) {
	r := core.NewProcessRegistry()
	r.GetOrCreate(1)
	r.Remove(1)
	require.Nil(t, r.Get(1))
	require.Equal(t, 0, r.Len())
}

func TestAllReturnsEveryProcess(t *testing.T) {
	r := core.NewProcessRegistry()
	r.GetOrCreate(1)
	r.GetOrCreate(2)
	require.Len(t, r.All(), 2)
}
