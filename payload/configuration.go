package payload

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

// Configuration describes the hardware installed in the pack: which pumps,
// blowers, and accessories exist and how the pack is wired. Values are the
// controller's own configuration codes (0 generally means "not installed").
type Configuration struct {
	Pump1       uint32
	Pump2       uint32
	Pump3       uint32
	Pump4       uint32
	Pump5       uint32
	Blower1     uint32
	Blower2     uint32
	Lights      uint32
	Stereo      uint32
	Heater1     uint32
	Heater2     uint32
	Filter      uint32
	Onzen       uint32
	OzonePeak1  uint32
	OzonePeak2  uint32
	ExhaustFan  uint32
	Powerlines  uint32
	BreakerSize uint32
	SmartOnzen  uint32
	Fogger      uint32
	SDS         uint32
	YESS        uint32
}

// MessageType implements protocol.Body.
func (*Configuration) MessageType() protocol.MessageType { return protocol.MsgTypeConfiguration }

// DecodeConfiguration parses a Configuration payload.
func DecodeConfiguration(data []byte) (*Configuration, error) {
	m := &Configuration{}
	fields := []*uint32{
		&m.Pump1, &m.Pump2, &m.Pump3, &m.Pump4, &m.Pump5,
		&m.Blower1, &m.Blower2, &m.Lights, &m.Stereo,
		&m.Heater1, &m.Heater2, &m.Filter, &m.Onzen,
		&m.OzonePeak1, &m.OzonePeak2, &m.ExhaustFan,
		&m.Powerlines, &m.BreakerSize, &m.SmartOnzen,
		&m.Fogger, &m.SDS, &m.YESS,
	}
	err := unmarshal(data, func(num protowire.Number, typ protowire.Type, v uint64, _ []byte) {
		if typ != protowire.VarintType {
			return
		}
		if i := int(num) - 1; i >= 0 && i < len(fields) {
			*fields[i] = uint32(v)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return m, nil
}

// Encode serializes the message in protobuf wire format.
func (m *Configuration) Encode() []byte {
	fields := []uint32{
		m.Pump1, m.Pump2, m.Pump3, m.Pump4, m.Pump5,
		m.Blower1, m.Blower2, m.Lights, m.Stereo,
		m.Heater1, m.Heater2, m.Filter, m.Onzen,
		m.OzonePeak1, m.OzonePeak2, m.ExhaustFan,
		m.Powerlines, m.BreakerSize, m.SmartOnzen,
		m.Fogger, m.SDS, m.YESS,
	}
	var b []byte
	for i, v := range fields {
		b = appendVarint(b, protowire.Number(i+1), uint64(v))
	}
	return b
}
