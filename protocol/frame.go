package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Protocol frame constants
const (
	// Preamble opens every frame on the wire. Both the encoder and the
	// decoder use this value.
	Preamble uint32 = 0xABAD1D3A

	// ChecksumMagic is the preamble substituted by VerifyChecksum when it
	// rebuilds a frame to recompute the CRC. It differs from Preamble in the
	// low byte (0xEA vs 0x3A), which the shipped controller firmware and its
	// reference client both carry, so a checksum computed at encode time
	// never validates through VerifyChecksum. Kept verbatim rather than
	// unified; unifying it would reject traffic from real controllers that
	// depend on the mismatch.
	ChecksumMagic uint32 = 0xABAD1DEA

	// HeaderSize is the fixed frame header length in bytes.
	HeaderSize = 20

	// MaxPayload is the largest payload a frame can carry (the length field
	// is 16 bits).
	MaxPayload = 0xFFFF

	// Port is the TCP port spa controllers listen on.
	Port = 65534
)

// Frame decode errors. ErrShortFrame and ErrTruncatedFrame mean the input
// ends mid-frame and more bytes may complete it; ErrBadPreamble means the
// stream is corrupt or misaligned and reading further will not help.
var (
	ErrShortFrame      = errors.New("frame shorter than header")
	ErrTruncatedFrame  = errors.New("frame payload truncated")
	ErrBadPreamble     = errors.New("bad frame preamble")
	ErrPayloadTooLarge = errors.New("frame payload too large")
)

// IsIncomplete reports whether err indicates a frame split across reads,
// as opposed to a corrupt stream. Callers seeing an incomplete error should
// buffer the unconsumed bytes and retry once more data arrives.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrShortFrame) || errors.Is(err, ErrTruncatedFrame)
}

// Frame is a single wire frame.
type Frame struct {
	Type     MessageType
	Sequence uint32
	Checksum [4]byte // checksum bytes as received; not verified on decode
	Payload  []byte
}

// EncodeFrame builds the wire bytes for one frame:
//
//	[0-3]   Preamble
//	[4-7]   CRC-32 (IEEE) over the whole frame with this field zeroed
//	[8-11]  sequence
//	[12-15] reserved, zero
//	[16-17] message type
//	[18-19] payload length
//	[20+]   payload
//
// A request frame is simply an EncodeFrame call with a nil payload.
func EncodeFrame(typ MessageType, seq uint32, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayload)
	}

	buf := NewBuffer()
	buf.PutUint32(Preamble)
	buf.PutUint32(0) // checksum, patched below
	buf.PutUint32(seq)
	buf.PutUint32(0) // reserved
	buf.PutUint16(uint16(typ))
	buf.PutUint16(uint16(len(payload)))
	buf.PutBytes(payload)

	sum := crc32.ChecksumIEEE(buf.Bytes())
	if err := buf.SetUint32(4, sum); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeFrame parses the first frame in data and returns it together with
// the unconsumed remainder. The checksum field is captured but not checked.
// On error the full input is returned as rest so the caller can retry after
// reading more bytes (see IsIncomplete).
func DecodeFrame(data []byte) (*Frame, []byte, error) {
	if len(data) < HeaderSize {
		return nil, data, fmt.Errorf("%w: have %d bytes, need %d", ErrShortFrame, len(data), HeaderSize)
	}

	if preamble := binary.BigEndian.Uint32(data[0:4]); preamble != Preamble {
		return nil, data, fmt.Errorf("%w: 0x%08X (expected 0x%08X)", ErrBadPreamble, preamble, Preamble)
	}

	frame := &Frame{
		Sequence: binary.BigEndian.Uint32(data[8:12]),
		Type:     MessageType(binary.BigEndian.Uint16(data[16:18])),
	}
	copy(frame.Checksum[:], data[4:8])

	length := int(binary.BigEndian.Uint16(data[18:20]))
	end := HeaderSize + length
	if len(data) < end {
		return nil, data, fmt.Errorf("%w: declared %d payload bytes, have %d", ErrTruncatedFrame, length, len(data)-HeaderSize)
	}

	// Copy the payload so decoded frames stay valid when the caller reuses
	// its read buffer.
	frame.Payload = make([]byte, length)
	copy(frame.Payload, data[HeaderSize:end])

	return frame, data[end:], nil
}

// VerifyChecksum recomputes the CRC of an encoded frame and compares it to
// the embedded checksum field. The recomputation substitutes ChecksumMagic
// for the preamble, mirroring the controller's own validation routine.
// Because ChecksumMagic differs from Preamble, frames produced by
// EncodeFrame never pass this check; it validates frames from firmware that
// hashes with the alternate magic.
func VerifyChecksum(frame []byte) bool {
	if len(frame) < HeaderSize {
		return false
	}

	buf := NewBuffer()
	buf.PutUint32(ChecksumMagic)
	buf.PutUint32(0)
	buf.PutBytes(frame[8:])

	return crc32.ChecksumIEEE(buf.Bytes()) == binary.BigEndian.Uint32(frame[4:8])
}

// String returns a debug representation of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{type=%s, seq=%d, checksum=%02X%02X%02X%02X, len=%d}",
		f.Type, f.Sequence, f.Checksum[0], f.Checksum[1], f.Checksum[2], f.Checksum[3], len(f.Payload))
}
