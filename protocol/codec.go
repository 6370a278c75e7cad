// File: protocol/codec.go
// Author: momentics <momentics@gmail.com>
//
// Binary codec helpers, little-endian, matching the fixed-width field
// style of the teacher's frame_codec.go.

package protocol

import (
	"encoding/binary"
	"io"
)

// ReadKind reads the one-byte message kind tag that begins every
// client-to-server message.
func ReadKind(r io.Reader) (MessageKind, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return MessageKind(b[0]), nil
}

// ReadThreadRegister decodes a THREAD_REGISTER payload.
func ReadThreadRegister(r io.Reader) (ThreadRegisterRequest, error) {
	var req ThreadRegisterRequest
	err := binary.Read(r, binary.LittleEndian, &req)
	return req, err
}

// ReadCoresRequested decodes a CORES_REQUESTED payload.
func ReadCoresRequested(r io.Reader) (CoresRequestedRequest, error) {
	var req CoresRequestedRequest
	err := binary.Read(r, binary.LittleEndian, &req)
	return req, err
}

// WriteUint32 writes a little-endian uint32 reply, used for
// COUNT_BLOCKED_THREADS and TOTAL_AVAILABLE_CORES.
func WriteUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteWakeup sends the single wakeup byte that releases a thread
// parked in THREAD_BLOCK once its cpuset membership has changed.
func WriteWakeup(w io.Writer) error {
	_, err := w.Write([]byte{WakeupByte})
	return err
}

// WriteThreadRegister encodes a THREAD_REGISTER message including its
// leading kind byte. Used by the test client harness, not the server.
func WriteThreadRegister(w io.Writer, req ThreadRegisterRequest) error {
	if _, err := w.Write([]byte{byte(ThreadRegister)}); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, req)
}

// WriteCoresRequested encodes a CORES_REQUESTED message including its
// leading kind byte. Used by the test client harness, not the server.
func WriteCoresRequested(w io.Writer, req CoresRequestedRequest) error {
	if _, err := w.Write([]byte{byte(CoresRequested)}); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, req)
}

// WriteBareKind encodes a kind-only message (THREAD_BLOCK,
// COUNT_BLOCKED_THREADS, TOTAL_AVAILABLE_CORES). Used by the test
// client harness, not the server.
func WriteBareKind(w io.Writer, kind MessageKind) error {
	_, err := w.Write([]byte{byte(kind)})
	return err
}
