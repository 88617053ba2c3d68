package payload

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

// Live is the controller's realtime status report: water temperature,
// pump and blower speeds, and the on/off state of every peripheral. It is
// the message most clients poll continuously.
type Live struct {
	TemperatureFahrenheit         uint32
	TemperatureSetpointFahrenheit uint32
	Pump1                         PumpState
	Pump2                         PumpState
	Pump3                         PumpState
	Pump4                         PumpState
	Pump5                         PumpState
	Blower1                       PumpState
	Blower2                       PumpState
	Lights                        bool
	Stereo                        bool
	Heater1                       uint32
	Heater2                       uint32
	Filter                        uint32
	Onzen                         bool
	Ozone                         uint32
	ExhaustFan                    bool
	Sauna                         SaunaState
	HeaterADC                     uint32
	Economy                       bool
	CurrentADC                    uint32
	AllOn                         bool
	Fogger                        bool
}

// MessageType implements protocol.Body.
func (*Live) MessageType() protocol.MessageType { return protocol.MsgTypeLive }

// DecodeLive parses a Live payload.
func DecodeLive(data []byte) (*Live, error) {
	m := &Live{}
	err := unmarshal(data, func(num protowire.Number, typ protowire.Type, v uint64, _ []byte) {
		if typ != protowire.VarintType {
			return
		}
		switch num {
		case 1:
			m.TemperatureFahrenheit = uint32(v)
		case 2:
			m.TemperatureSetpointFahrenheit = uint32(v)
		case 3:
			m.Pump1 = PumpState(v)
		case 4:
			m.Pump2 = PumpState(v)
		case 5:
			m.Pump3 = PumpState(v)
		case 6:
			m.Pump4 = PumpState(v)
		case 7:
			m.Pump5 = PumpState(v)
		case 8:
			m.Blower1 = PumpState(v)
		case 9:
			m.Blower2 = PumpState(v)
		case 10:
			m.Lights = asBool(v)
		case 11:
			m.Stereo = asBool(v)
		case 12:
			m.Heater1 = uint32(v)
		case 13:
			m.Heater2 = uint32(v)
		case 14:
			m.Filter = uint32(v)
		case 15:
			m.Onzen = asBool(v)
		case 16:
			m.Ozone = uint32(v)
		case 17:
			m.ExhaustFan = asBool(v)
		case 18:
			m.Sauna = SaunaState(v)
		case 19:
			m.HeaterADC = uint32(v)
		case 20:
			m.Economy = asBool(v)
		case 21:
			m.CurrentADC = uint32(v)
		case 22:
			m.AllOn = asBool(v)
		case 23:
			m.Fogger = asBool(v)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("live: %w", err)
	}
	return m, nil
}

// Encode serializes the message in protobuf wire format.
func (m *Live) Encode() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.TemperatureFahrenheit))
	b = appendVarint(b, 2, uint64(m.TemperatureSetpointFahrenheit))
	b = appendVarint(b, 3, uint64(m.Pump1))
	b = appendVarint(b, 4, uint64(m.Pump2))
	b = appendVarint(b, 5, uint64(m.Pump3))
	b = appendVarint(b, 6, uint64(m.Pump4))
	b = appendVarint(b, 7, uint64(m.Pump5))
	b = appendVarint(b, 8, uint64(m.Blower1))
	b = appendVarint(b, 9, uint64(m.Blower2))
	b = appendBool(b, 10, m.Lights)
	b = appendBool(b, 11, m.Stereo)
	b = appendVarint(b, 12, uint64(m.Heater1))
	b = appendVarint(b, 13, uint64(m.Heater2))
	b = appendVarint(b, 14, uint64(m.Filter))
	b = appendBool(b, 15, m.Onzen)
	b = appendVarint(b, 16, uint64(m.Ozone))
	b = appendBool(b, 17, m.ExhaustFan)
	b = appendVarint(b, 18, uint64(m.Sauna))
	b = appendVarint(b, 19, uint64(m.HeaterADC))
	b = appendBool(b, 20, m.Economy)
	b = appendVarint(b, 21, uint64(m.CurrentADC))
	b = appendBool(b, 22, m.AllOn)
	b = appendBool(b, 23, m.Fogger)
	return b
}
