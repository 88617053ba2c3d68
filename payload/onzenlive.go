package payload

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

// OnzenLive is the realtime water chemistry report from the Onzen salt
// water system: pH and ORP readings, electrode drive levels, and wear
// diagnostics. PHColor and ORPColor are the controller's own traffic-light
// assessment of each reading; the raw values are exposed as-is.
type OnzenLive struct {
	Guid                  string
	ORP                   int32
	PH100                 int32 // pH reading multiplied by 100
	Current               int32
	Voltage               int32
	CurrentSetpoint       int32
	VoltageSetpoint       int32
	Pump1                 uint32
	Pump2                 uint32
	ORPStateMachine       uint32
	ElectrodeStateMachine uint32
	ElectrodeID           uint32
	ElectrodePolarity     uint32
	Electrode1Resistance1 int32
	Electrode1Resistance2 int32
	Electrode2Resistance1 int32
	Electrode2Resistance2 int32
	CommandMode           uint32
	ElectrodeMAH          int32
	PHColor               uint32
	ORPColor              uint32
	ElectrodeWear         uint32
}

// MessageType implements protocol.Body.
func (*OnzenLive) MessageType() protocol.MessageType { return protocol.MsgTypeOnzenLive }

// PH returns the pH reading as a float (PH100 is stored as pH * 100).
func (m *OnzenLive) PH() float64 {
	return float64(m.PH100) / 100
}

// DecodeOnzenLive parses an OnzenLive payload.
func DecodeOnzenLive(data []byte) (*OnzenLive, error) {
	m := &OnzenLive{}
	err := unmarshal(data, func(num protowire.Number, typ protowire.Type, v uint64, raw []byte) {
		if num == 1 {
			if typ == protowire.BytesType {
				m.Guid = string(raw)
			}
			return
		}
		if typ != protowire.VarintType {
			return
		}
		switch num {
		case 2:
			m.ORP = asInt32(v)
		case 3:
			m.PH100 = asInt32(v)
		case 4:
			m.Current = asInt32(v)
		case 5:
			m.Voltage = asInt32(v)
		case 6:
			m.CurrentSetpoint = asInt32(v)
		case 7:
			m.VoltageSetpoint = asInt32(v)
		case 8:
			m.Pump1 = uint32(v)
		case 9:
			m.Pump2 = uint32(v)
		case 10:
			m.ORPStateMachine = uint32(v)
		case 11:
			m.ElectrodeStateMachine = uint32(v)
		case 12:
			m.ElectrodeID = uint32(v)
		case 13:
			m.ElectrodePolarity = uint32(v)
		case 14:
			m.Electrode1Resistance1 = asInt32(v)
		case 15:
			m.Electrode1Resistance2 = asInt32(v)
		case 16:
			m.Electrode2Resistance1 = asInt32(v)
		case 17:
			m.Electrode2Resistance2 = asInt32(v)
		case 18:
			m.CommandMode = uint32(v)
		case 19:
			m.ElectrodeMAH = asInt32(v)
		case 20:
			m.PHColor = uint32(v)
		case 21:
			m.ORPColor = uint32(v)
		case 22:
			m.ElectrodeWear = uint32(v)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("onzen live: %w", err)
	}
	return m, nil
}

// Encode serializes the message in protobuf wire format.
func (m *OnzenLive) Encode() []byte {
	var b []byte
	b = appendString(b, 1, m.Guid)
	b = appendInt32(b, 2, m.ORP)
	b = appendInt32(b, 3, m.PH100)
	b = appendInt32(b, 4, m.Current)
	b = appendInt32(b, 5, m.Voltage)
	b = appendInt32(b, 6, m.CurrentSetpoint)
	b = appendInt32(b, 7, m.VoltageSetpoint)
	b = appendVarint(b, 8, uint64(m.Pump1))
	b = appendVarint(b, 9, uint64(m.Pump2))
	b = appendVarint(b, 10, uint64(m.ORPStateMachine))
	b = appendVarint(b, 11, uint64(m.ElectrodeStateMachine))
	b = appendVarint(b, 12, uint64(m.ElectrodeID))
	b = appendVarint(b, 13, uint64(m.ElectrodePolarity))
	b = appendInt32(b, 14, m.Electrode1Resistance1)
	b = appendInt32(b, 15, m.Electrode1Resistance2)
	b = appendInt32(b, 16, m.Electrode2Resistance1)
	b = appendInt32(b, 17, m.Electrode2Resistance2)
	b = appendVarint(b, 18, uint64(m.CommandMode))
	b = appendInt32(b, 19, m.ElectrodeMAH)
	b = appendVarint(b, 20, uint64(m.PHColor))
	b = appendVarint(b, 21, uint64(m.ORPColor))
	b = appendVarint(b, 22, uint64(m.ElectrodeWear))
	return b
}
