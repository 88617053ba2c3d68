package payload

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

// Settings carries the pack's persistent user settings together with the
// allowed range for each one (the Min/Max pairs), so a client can render
// adjustment controls without hardcoding limits.
type Settings struct {
	MaxFiltrationFrequency uint32
	MinFiltrationFrequency uint32
	FiltrationFrequency    uint32
	MaxFiltrationDuration  uint32
	MinFiltrationDuration  uint32
	FiltrationDuration     uint32
	MaxOnzenHours          uint32
	MinOnzenHours          uint32
	OnzenHours             uint32
	MaxOnzenCycles         uint32
	MinOnzenCycles         uint32
	OnzenCycles            uint32
	MaxOzoneHours          uint32
	MinOzoneHours          uint32
	OzoneHours             uint32
	MaxOzoneCycles         uint32
	MinOzoneCycles         uint32
	OzoneCycles            uint32
	FilterSuspension       bool
	FlashLightsOnError     bool
	TemperatureOffset      int32
	SaunaDuration          uint32
	MinTemperature         uint32
	MaxTemperature         uint32
	FiltrationOffset       uint32
	SpaboyHours            uint32
}

// MessageType implements protocol.Body.
func (*Settings) MessageType() protocol.MessageType { return protocol.MsgTypeSettings }

// DecodeSettings parses a Settings payload.
func DecodeSettings(data []byte) (*Settings, error) {
	m := &Settings{}
	err := unmarshal(data, func(num protowire.Number, typ protowire.Type, v uint64, _ []byte) {
		if typ != protowire.VarintType {
			return
		}
		switch num {
		case 1:
			m.MaxFiltrationFrequency = uint32(v)
		case 2:
			m.MinFiltrationFrequency = uint32(v)
		case 3:
			m.FiltrationFrequency = uint32(v)
		case 4:
			m.MaxFiltrationDuration = uint32(v)
		case 5:
			m.MinFiltrationDuration = uint32(v)
		case 6:
			m.FiltrationDuration = uint32(v)
		case 7:
			m.MaxOnzenHours = uint32(v)
		case 8:
			m.MinOnzenHours = uint32(v)
		case 9:
			m.OnzenHours = uint32(v)
		case 10:
			m.MaxOnzenCycles = uint32(v)
		case 11:
			m.MinOnzenCycles = uint32(v)
		case 12:
			m.OnzenCycles = uint32(v)
		case 13:
			m.MaxOzoneHours = uint32(v)
		case 14:
			m.MinOzoneHours = uint32(v)
		case 15:
			m.OzoneHours = uint32(v)
		case 16:
			m.MaxOzoneCycles = uint32(v)
		case 17:
			m.MinOzoneCycles = uint32(v)
		case 18:
			m.OzoneCycles = uint32(v)
		case 19:
			m.FilterSuspension = asBool(v)
		case 20:
			m.FlashLightsOnError = asBool(v)
		case 21:
			m.TemperatureOffset = asInt32(v)
		case 22:
			m.SaunaDuration = uint32(v)
		case 23:
			m.MinTemperature = uint32(v)
		case 24:
			m.MaxTemperature = uint32(v)
		case 25:
			m.FiltrationOffset = uint32(v)
		case 26:
			m.SpaboyHours = uint32(v)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return m, nil
}

// Encode serializes the message in protobuf wire format.
func (m *Settings) Encode() []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(m.MaxFiltrationFrequency))
	b = appendVarint(b, 2, uint64(m.MinFiltrationFrequency))
	b = appendVarint(b, 3, uint64(m.FiltrationFrequency))
	b = appendVarint(b, 4, uint64(m.MaxFiltrationDuration))
	b = appendVarint(b, 5, uint64(m.MinFiltrationDuration))
	b = appendVarint(b, 6, uint64(m.FiltrationDuration))
	b = appendVarint(b, 7, uint64(m.MaxOnzenHours))
	b = appendVarint(b, 8, uint64(m.MinOnzenHours))
	b = appendVarint(b, 9, uint64(m.OnzenHours))
	b = appendVarint(b, 10, uint64(m.MaxOnzenCycles))
	b = appendVarint(b, 11, uint64(m.MinOnzenCycles))
	b = appendVarint(b, 12, uint64(m.OnzenCycles))
	b = appendVarint(b, 13, uint64(m.MaxOzoneHours))
	b = appendVarint(b, 14, uint64(m.MinOzoneHours))
	b = appendVarint(b, 15, uint64(m.OzoneHours))
	b = appendVarint(b, 16, uint64(m.MaxOzoneCycles))
	b = appendVarint(b, 17, uint64(m.MinOzoneCycles))
	b = appendVarint(b, 18, uint64(m.OzoneCycles))
	b = appendBool(b, 19, m.FilterSuspension)
	b = appendBool(b, 20, m.FlashLightsOnError)
	b = appendInt32(b, 21, m.TemperatureOffset)
	b = appendVarint(b, 22, uint64(m.SaunaDuration))
	b = appendVarint(b, 23, uint64(m.MinTemperature))
	b = appendVarint(b, 24, uint64(m.MaxTemperature))
	b = appendVarint(b, 25, uint64(m.FiltrationOffset))
	b = appendVarint(b, 26, uint64(m.SpaboyHours))
	return b
}
