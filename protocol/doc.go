// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Wire protocol between arbiter clients and the server: little-endian,
// fixed-width fields, no framing beyond the widths themselves. Every
// client-to-server message begins with a one-byte MessageKind tag.
// Adapted from this module's teacher's hand-rolled binary frame codec
// (frame_codec.go) and handshake serializer, generalized from a
// WebSocket frame format to the arbiter's much smaller fixed-field
// message set.
package protocol
