package core_test

import (
	"testing"

	"github.com/momentics/corearbiter/core"
	"github.com/stretchr/testify/require"
)

func TestCheckCoreSessionLinkOK(t *testing.T) {
	tbl := core.NewCoreTable([]core.CoreID{0})
	c := tbl.ByID[0]
	s := &core.Session{ThreadID: 1, Core: c}
	tbl.Grant(c, s)

	require.NotPanics(t, func() { core.CheckCoreSessionLink(c) })
}

func TestCheckCoreSessionLinkIdleIsNoOp(t *testing.T) {
	tbl := core.NewCoreTable([]core.CoreID{0})
	require.NotPanics(t, func() { core.CheckCoreSessionLink(tbl.ByID[0]) })
}
