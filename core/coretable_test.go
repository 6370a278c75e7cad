package core_test

import (
	"testing"

	"github.com/momentics/corearbiter/core"
	"github.com/stretchr/testify/require"
)

func TestNewCoreTableIdleByDefault(t *testing.T) {
	tbl := core.NewCoreTable([]core.CoreID{0, 1, 2})
	require.Len(t, tbl.Managed, 3)
	require.Equal(t, 3, tbl.NumIdle())
	require.Equal(t, 0, tbl.NumOwned())
	require.Len(t, tbl.IdleCores(), 3)
}

func TestGrantAndRelease(t *testing.T) {
	tbl := core.NewCoreTable([]core.CoreID{0, 1})
	s := &core.Session{ThreadID: 1}
	c := tbl.ByID[0]

	tbl.Grant(c, s)
	require.Equal(t, s, c.ExclusiveThread)
	require.Equal(t, 1, tbl.NumOwned())
	require.Equal(t, 1, tbl.NumIdle())

	tbl.Release(c)
	require.Nil(t, c.ExclusiveThread)
	require.Equal(t, 2, tbl.NumIdle())
}

func TestUnmanagedCoreHasNoCoreID(t *testing.T) {
	tbl := core.NewCoreTable([]core.CoreID{0})
	require.Equal(t, core.NoCore, tbl.Unmanaged.ID)
}
