// Package protocol implements the Arctic Spa wire protocol.
//
// Spa controllers listen on TCP port 65534 and exchange framed binary
// messages. Every frame is a fixed 20-byte big-endian header followed by an
// optional protobuf payload. Clients request state by sending zero-payload
// frames naming the message types they want; the controller answers with
// (and also spontaneously pushes) framed messages of those types.
//
// # Frame Format
//
// All multi-byte fields are big-endian:
//
//	[0-3]   preamble       0xABAD1D3A
//	[4-7]   checksum       CRC-32 over the whole frame (checksum field zeroed)
//	[8-11]  sequence       Sender's frame counter
//	[12-15] reserved       Always zero
//	[16-17] message type   See the MsgType constants
//	[18-19] payload length Number of payload bytes that follow
//	[20+]   payload        Protobuf-encoded message body
//
// # Checksum
//
// The encoder computes an IEEE CRC-32 (the zlib polynomial) over the entire
// frame with the checksum field zeroed, then patches the result into bytes
// 4..8. The decoder does not verify it; controllers accept frames without
// checking, and real controllers have been observed sending frames whose
// checksums only validate against ChecksumMagic rather than Preamble. See
// the note on ChecksumMagic for the full story.
//
// # Stream Decoding
//
// A TCP read can carry several frames, or end mid-frame. Decoder consumes
// as many complete frames as the input holds and hands back the unconsumed
// tail, so callers keep a pending buffer and prepend it to the next read:
//
//	msgs, rest, err := dec.Decode(append(pending, chunk...))
//	pending = rest
//
// Heartbeat frames and frames whose type has no registered body decoder are
// consumed silently and never surfaced.
//
// # Usage Example
//
//	reg := protocol.NewRegistry()
//	reg.Register(protocol.MsgTypeLive, decodeLive)
//	dec := protocol.NewDecoder(reg)
//
//	frame, err := protocol.EncodeFrame(protocol.MsgTypeLive, seq, nil)
//	// write frame to the controller, read the reply into buf
//	msgs, rest, err := dec.Decode(buf)
package protocol
