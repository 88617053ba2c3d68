package payload

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

// Command is the write-side message. The controller applies whichever
// fields are present in the payload, so Command tracks which fields were
// explicitly set; the usual write carries exactly one. Field numbers follow
// the writable-property declaration order, 1 (temperature setpoint) through
// 23 (yess); the client package's CommandType values map onto them
// directly.
type Command struct {
	values map[protowire.Number]uint64
}

// NewCommand returns an empty command.
func NewCommand() *Command {
	return &Command{values: make(map[protowire.Number]uint64)}
}

// MessageType implements protocol.Body.
func (*Command) MessageType() protocol.MessageType { return protocol.MsgTypeCommand }

// Set records field num with a numeric value.
func (c *Command) Set(num int, v uint64) {
	c.values[protowire.Number(num)] = v
}

// SetBool records field num with a bool value.
func (c *Command) SetBool(num int, v bool) {
	var raw uint64
	if v {
		raw = 1
	}
	c.Set(num, raw)
}

// Value returns the value recorded for field num and whether it was set.
func (c *Command) Value(num int) (uint64, bool) {
	v, ok := c.values[protowire.Number(num)]
	return v, ok
}

// Bool returns the value recorded for field num as a bool.
func (c *Command) Bool(num int) (bool, bool) {
	v, ok := c.values[protowire.Number(num)]
	return v != 0, ok
}

// Fields returns the set field numbers in ascending order.
func (c *Command) Fields() []int {
	nums := make([]int, 0, len(c.values))
	for num := range c.values {
		nums = append(nums, int(num))
	}
	sort.Ints(nums)
	return nums
}

// Len returns the number of set fields.
func (c *Command) Len() int {
	return len(c.values)
}

// Encode serializes the set fields in ascending field order. Zero values
// are encoded, unlike the readable messages: "set pump to off" has to make
// it onto the wire.
func (c *Command) Encode() []byte {
	var b []byte
	for _, num := range c.Fields() {
		b = protowire.AppendTag(b, protowire.Number(num), protowire.VarintType)
		b = protowire.AppendVarint(b, c.values[protowire.Number(num)])
	}
	return b
}

// DecodeCommand parses a Command payload. Every varint field present in the
// input is recorded as set.
func DecodeCommand(data []byte) (*Command, error) {
	c := NewCommand()
	err := unmarshal(data, func(num protowire.Number, typ protowire.Type, v uint64, _ []byte) {
		if typ == protowire.VarintType {
			c.values[num] = v
		}
	})
	if err != nil {
		return nil, fmt.Errorf("command: %w", err)
	}
	return c, nil
}
