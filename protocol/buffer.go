package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBufferExhausted is returned when a read asks for more bytes than the
// buffer holds.
var ErrBufferExhausted = errors.New("buffer exhausted")

// Buffer is a cursor-based big-endian binary buffer. Writes append at the
// end; reads advance an independent read cursor. The zero value is not
// usable, construct with NewBuffer or NewBufferFrom.
type Buffer struct {
	data []byte
	pos  int // read cursor
}

// NewBuffer returns an empty buffer ready for writing.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFrom wraps data for reading. The buffer takes ownership of the
// slice; further writes append to it.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{data: data}
}

// PutUint8 appends a single byte.
func (b *Buffer) PutUint8(v uint8) {
	b.data = append(b.data, v)
}

// PutUint16 appends v as two big-endian bytes.
func (b *Buffer) PutUint16(v uint16) {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
}

// PutUint32 appends v as four big-endian bytes.
func (b *Buffer) PutUint32(v uint32) {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
}

// PutBytes appends p verbatim.
func (b *Buffer) PutBytes(p []byte) {
	b.data = append(b.data, p...)
}

// SetUint32 overwrites four bytes at offset without moving either cursor.
// Used to patch the checksum field after the frame body is complete.
func (b *Buffer) SetUint32(offset int, v uint32) error {
	if offset < 0 || offset+4 > len(b.data) {
		return fmt.Errorf("set uint32 at %d: out of range (len %d)", offset, len(b.data))
	}
	binary.BigEndian.PutUint32(b.data[offset:], v)
	return nil
}

// SetUint16 overwrites two bytes at offset without moving either cursor.
func (b *Buffer) SetUint16(offset int, v uint16) error {
	if offset < 0 || offset+2 > len(b.data) {
		return fmt.Errorf("set uint16 at %d: out of range (len %d)", offset, len(b.data))
	}
	binary.BigEndian.PutUint16(b.data[offset:], v)
	return nil
}

// Uint8 reads one byte.
func (b *Buffer) Uint8() (uint8, error) {
	p, err := b.Next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// Uint16 reads two big-endian bytes.
func (b *Buffer) Uint16() (uint16, error) {
	p, err := b.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// Uint32 reads four big-endian bytes.
func (b *Buffer) Uint32() (uint32, error) {
	p, err := b.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// Next reads the next n bytes and advances the read cursor. The returned
// slice aliases the buffer's storage.
func (b *Buffer) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read %d bytes: negative count", n)
	}
	if remaining := len(b.data) - b.pos; remaining < n {
		return nil, fmt.Errorf("read %d bytes: %w (%d remaining)", n, ErrBufferExhausted, remaining)
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// Bytes returns the full contents written so far.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.pos
}
