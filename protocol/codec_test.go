package protocol_test

import (
	"bytes"
	"testing"

	"github.com/momentics/corearbiter/protocol"
	"github.com/stretchr/testify/require"
)

func TestThreadRegisterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := protocol.ThreadRegisterRequest{ProcessID: 123, ThreadID: 456}
	require.NoError(t, protocol.WriteThreadRegister(&buf, want))

	kind, err := protocol.ReadKind(&buf)
	require.NoError(t, err)
	require.Equal(t, protocol.ThreadRegister, kind)

	got, err := protocol.ReadThreadRegister(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCoresRequestedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	var want protocol.CoresRequestedRequest
	want.Desired[0] = 2
	want.Desired[7] = 9
	require.NoError(t, protocol.WriteCoresRequested(&buf, want))

	kind, err := protocol.ReadKind(&buf)
	require.NoError(t, err)
	require.Equal(t, protocol.CoresRequested, kind)

	got, err := protocol.ReadCoresRequested(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestWriteUint32AndWakeup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, protocol.WriteUint32(&buf, 7))
	require.Equal(t, []byte{7, 0, 0, 0}, buf.Bytes())

	buf.Reset()
	require.NoError(t, protocol.WriteWakeup(&buf))
	require.Equal(t, []byte{protocol.WakeupByte}, buf.Bytes())
}

func TestMessageKindString(t *testing.T) {
	require.Equal(t, "THREAD_REGISTER", protocol.ThreadRegister.String())
	require.Equal(t, "UNKNOWN", protocol.MessageKind(99).String())
}
