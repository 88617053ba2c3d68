package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	payload := []byte{0x08, 0x66, 0x10, 0x68}
	data, err := EncodeFrame(MsgTypeLive, 7, payload)
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}

	if len(data) != HeaderSize+len(payload) {
		t.Fatalf("frame length = %d, want %d", len(data), HeaderSize+len(payload))
	}

	if got := binary.BigEndian.Uint32(data[0:4]); got != Preamble {
		t.Errorf("preamble = 0x%08X, want 0x%08X", got, Preamble)
	}
	if got := binary.BigEndian.Uint32(data[8:12]); got != 7 {
		t.Errorf("sequence = %d, want 7", got)
	}
	if got := binary.BigEndian.Uint32(data[12:16]); got != 0 {
		t.Errorf("reserved = %d, want 0", got)
	}
	if got := MessageType(binary.BigEndian.Uint16(data[16:18])); got != MsgTypeLive {
		t.Errorf("type = %s, want %s", got, MsgTypeLive)
	}
	if got := binary.BigEndian.Uint16(data[18:20]); got != uint16(len(payload)) {
		t.Errorf("length = %d, want %d", got, len(payload))
	}
	if !bytes.Equal(data[HeaderSize:], payload) {
		t.Errorf("payload = % X, want % X", data[HeaderSize:], payload)
	}

	// The checksum covers the whole frame with the checksum field zeroed.
	zeroed := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(zeroed[4:8], 0)
	want := crc32.ChecksumIEEE(zeroed)
	if got := binary.BigEndian.Uint32(data[4:8]); got != want {
		t.Errorf("checksum = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeFrameEmptyPayload(t *testing.T) {
	data, err := EncodeFrame(MsgTypeSettings, 0, nil)
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if len(data) != HeaderSize {
		t.Errorf("request frame length = %d, want %d", len(data), HeaderSize)
	}
	if got := binary.BigEndian.Uint16(data[18:20]); got != 0 {
		t.Errorf("length field = %d, want 0", got)
	}
}

func TestEncodeFramePayloadTooLarge(t *testing.T) {
	_, err := EncodeFrame(MsgTypeLive, 0, make([]byte, MaxPayload+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("EncodeFrame() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecodeFrame(t *testing.T) {
	valid, err := EncodeFrame(MsgTypeOnzenLive, 42, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}

	tests := []struct {
		name           string
		data           []byte
		wantErr        error
		wantIncomplete bool
		verify         func(t *testing.T, f *Frame, rest []byte)
	}{
		{
			name: "valid frame",
			data: valid,
			verify: func(t *testing.T, f *Frame, rest []byte) {
				if f.Type != MsgTypeOnzenLive {
					t.Errorf("type = %s, want OnzenLive", f.Type)
				}
				if f.Sequence != 42 {
					t.Errorf("sequence = %d, want 42", f.Sequence)
				}
				if !bytes.Equal(f.Payload, []byte{1, 2, 3}) {
					t.Errorf("payload = % X, want 01 02 03", f.Payload)
				}
				if len(rest) != 0 {
					t.Errorf("rest = %d bytes, want 0", len(rest))
				}
				if !bytes.Equal(f.Checksum[:], valid[4:8]) {
					t.Errorf("checksum = % X, want % X", f.Checksum, valid[4:8])
				}
			},
		},
		{
			name:           "shorter than header",
			data:           valid[:HeaderSize-1],
			wantErr:        ErrShortFrame,
			wantIncomplete: true,
		},
		{
			name:           "payload truncated",
			data:           valid[:HeaderSize+1],
			wantErr:        ErrTruncatedFrame,
			wantIncomplete: true,
		},
		{
			name: "bad preamble",
			data: func() []byte {
				d := append([]byte(nil), valid...)
				d[0] = 0xFF
				return d
			}(),
			wantErr: ErrBadPreamble,
		},
		{
			name:           "empty input",
			data:           nil,
			wantErr:        ErrShortFrame,
			wantIncomplete: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, rest, err := DecodeFrame(tt.data)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeFrame() error = %v, want %v", err, tt.wantErr)
				}
				if IsIncomplete(err) != tt.wantIncomplete {
					t.Errorf("IsIncomplete(%v) = %v, want %v", err, IsIncomplete(err), tt.wantIncomplete)
				}
				// Errors must hand the full input back for retry.
				if !bytes.Equal(rest, tt.data) {
					t.Errorf("rest after error = %d bytes, want full input (%d)", len(rest), len(tt.data))
				}
				return
			}

			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if tt.verify != nil {
				tt.verify(t, f, rest)
			}
		})
	}
}

func TestDecodeFrameConcatenated(t *testing.T) {
	first, err := EncodeFrame(MsgTypeLive, 1, []byte{0xAA})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	second, err := EncodeFrame(MsgTypeSettings, 2, nil)
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}

	stream := append(append([]byte(nil), first...), second...)

	f1, rest, err := DecodeFrame(stream)
	if err != nil {
		t.Fatalf("first DecodeFrame() error = %v", err)
	}
	if f1.Type != MsgTypeLive || f1.Sequence != 1 {
		t.Errorf("first frame = %s, want Live seq 1", f1)
	}
	if len(rest) != len(second) {
		t.Fatalf("rest = %d bytes, want %d", len(rest), len(second))
	}

	f2, rest, err := DecodeFrame(rest)
	if err != nil {
		t.Fatalf("second DecodeFrame() error = %v", err)
	}
	if f2.Type != MsgTypeSettings || f2.Sequence != 2 {
		t.Errorf("second frame = %s, want Settings seq 2", f2)
	}
	if len(rest) != 0 {
		t.Errorf("rest after second frame = %d bytes, want 0", len(rest))
	}
}

func TestDecodeFramePayloadIsCopied(t *testing.T) {
	data, err := EncodeFrame(MsgTypeLive, 0, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}

	f, _, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}

	// Clobber the read buffer; the decoded payload must survive.
	for i := range data {
		data[i] = 0xFF
	}
	if !bytes.Equal(f.Payload, []byte{1, 2, 3, 4}) {
		t.Errorf("payload after buffer reuse = % X, want 01 02 03 04", f.Payload)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		typ     MessageType
		seq     uint32
		payload []byte
	}{
		{"empty payload", MsgTypeInformation, 0, nil},
		{"small payload", MsgTypeLive, 1, []byte{0x08, 0x66}},
		{"max sequence", MsgTypeConfiguration, 0xFFFFFFFF, []byte{0}},
		{"large payload", MsgTypeOnzenLive, 12345, bytes.Repeat([]byte{0x5A}, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeFrame(tt.typ, tt.seq, tt.payload)
			if err != nil {
				t.Fatalf("EncodeFrame() error = %v", err)
			}

			f, rest, err := DecodeFrame(data)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if f.Type != tt.typ {
				t.Errorf("type = %s, want %s", f.Type, tt.typ)
			}
			if f.Sequence != tt.seq {
				t.Errorf("sequence = %d, want %d", f.Sequence, tt.seq)
			}
			if !bytes.Equal(f.Payload, tt.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(f.Payload), len(tt.payload))
			}
			if len(rest) != 0 {
				t.Errorf("rest = %d bytes, want 0", len(rest))
			}
		})
	}
}

// The controller's checksum validation hashes with a magic that differs from
// the frame preamble in the low byte. These tests pin that mismatch so nobody
// "fixes" one side without noticing the other.
func TestChecksumMagicDiffersFromPreamble(t *testing.T) {
	if Preamble == ChecksumMagic {
		t.Fatal("Preamble and ChecksumMagic must stay distinct; the firmware uses both")
	}
	if Preamble&0xFFFFFF00 != ChecksumMagic&0xFFFFFF00 {
		t.Errorf("Preamble 0x%08X and ChecksumMagic 0x%08X should differ only in the low byte", Preamble, ChecksumMagic)
	}
}

func TestVerifyChecksumRejectsEncoderOutput(t *testing.T) {
	data, err := EncodeFrame(MsgTypeLive, 3, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if VerifyChecksum(data) {
		t.Error("VerifyChecksum() accepted an EncodeFrame frame; the magic mismatch should reject it")
	}
}

func TestVerifyChecksumAcceptsMagicHashedFrame(t *testing.T) {
	// Build a frame whose checksum was computed with ChecksumMagic in the
	// preamble slot, the way the controller's validator expects.
	data, err := EncodeFrame(MsgTypeLive, 3, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}

	hashed := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(hashed[0:4], ChecksumMagic)
	binary.BigEndian.PutUint32(hashed[4:8], 0)
	sum := crc32.ChecksumIEEE(hashed)
	binary.BigEndian.PutUint32(data[4:8], sum)

	if !VerifyChecksum(data) {
		t.Error("VerifyChecksum() rejected a frame hashed with ChecksumMagic")
	}
}

func TestVerifyChecksumShortInput(t *testing.T) {
	if VerifyChecksum(make([]byte, HeaderSize-1)) {
		t.Error("VerifyChecksum() accepted input shorter than a header")
	}
}
