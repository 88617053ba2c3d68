package protocol

import (
	"fmt"
	"sync"
)

// MessageType identifies the payload schema carried by a frame.
type MessageType uint16

// Message type constants. The values come from the controller firmware; the
// Lpc family belongs to the newer "low power controller" packs and the
// Mobile family to the phone provisioning flow. Only a subset has payload
// schemas implemented, the rest are enumerated so frames carrying them can
// be named in logs and skipped cleanly.
const (
	MsgTypeLive          MessageType = 0
	MsgTypeCommand       MessageType = 1
	MsgTypeSettings      MessageType = 2
	MsgTypeConfiguration MessageType = 3
	MsgTypePeak          MessageType = 4
	MsgTypeClock         MessageType = 5
	MsgTypeInformation   MessageType = 6
	MsgTypeError         MessageType = 7
	MsgTypeFirmware      MessageType = 8
	MsgTypeRouter        MessageType = 9
	MsgTypeHeartbeat     MessageType = 10
	MsgTypeFilters       MessageType = 13
	MsgTypePeripheral    MessageType = 16

	MsgTypeOnzenLive     MessageType = 48
	MsgTypeOnzenCommand  MessageType = 49
	MsgTypeOnzenSettings MessageType = 50

	MsgTypeMobileAuthenticate    MessageType = 80
	MsgTypeMobileDeviceInfo      MessageType = 81
	MsgTypeMobileAvailableSpas   MessageType = 82
	MsgTypeMobilePairSpa         MessageType = 83
	MsgTypeMobileSpaRegistration MessageType = 84
	MsgTypeMobileWifiDetails     MessageType = 85

	MsgTypeLpcLive              MessageType = 112
	MsgTypeLpcCommand           MessageType = 113
	MsgTypeLpcInfo              MessageType = 114
	MsgTypeLpcConfig            MessageType = 115
	MsgTypeLpcPreferences       MessageType = 116
	MsgTypeLpcLights            MessageType = 117
	MsgTypeLpcSchedule          MessageType = 118
	MsgTypeLpcPeakDevices       MessageType = 119
	MsgTypeLpcClock             MessageType = 120
	MsgTypeLpcError             MessageType = 121
	MsgTypeLpcMeasurements      MessageType = 122
	MsgTypeLpcDiagnosticCommand MessageType = 123
	MsgTypeLpcPower             MessageType = 124
	MsgTypeLpcEnabledDevices    MessageType = 125

	MsgTypeReset MessageType = 127

	MsgTypeLpcAndroidTopsideInfo MessageType = 144

	MsgTypeFirmwareSuccess MessageType = 194
	MsgTypeFirmwareFailure MessageType = 195
	MsgTypeFirmwareStarted MessageType = 196
)

var messageTypeNames = map[MessageType]string{
	MsgTypeLive:                  "Live",
	MsgTypeCommand:               "Command",
	MsgTypeSettings:              "Settings",
	MsgTypeConfiguration:         "Configuration",
	MsgTypePeak:                  "Peak",
	MsgTypeClock:                 "Clock",
	MsgTypeInformation:           "Information",
	MsgTypeError:                 "Error",
	MsgTypeFirmware:              "Firmware",
	MsgTypeRouter:                "Router",
	MsgTypeHeartbeat:             "Heartbeat",
	MsgTypeFilters:               "Filters",
	MsgTypePeripheral:            "Peripheral",
	MsgTypeOnzenLive:             "OnzenLive",
	MsgTypeOnzenCommand:          "OnzenCommand",
	MsgTypeOnzenSettings:         "OnzenSettings",
	MsgTypeMobileAuthenticate:    "MobileAuthenticate",
	MsgTypeMobileDeviceInfo:      "MobileDeviceInfo",
	MsgTypeMobileAvailableSpas:   "MobileAvailableSpas",
	MsgTypeMobilePairSpa:         "MobilePairSpa",
	MsgTypeMobileSpaRegistration: "MobileSpaRegistration",
	MsgTypeMobileWifiDetails:     "MobileWifiDetails",
	MsgTypeLpcLive:               "LpcLive",
	MsgTypeLpcCommand:            "LpcCommand",
	MsgTypeLpcInfo:               "LpcInfo",
	MsgTypeLpcConfig:             "LpcConfig",
	MsgTypeLpcPreferences:        "LpcPreferences",
	MsgTypeLpcLights:             "LpcLights",
	MsgTypeLpcSchedule:           "LpcSchedule",
	MsgTypeLpcPeakDevices:        "LpcPeakDevices",
	MsgTypeLpcClock:              "LpcClock",
	MsgTypeLpcError:              "LpcError",
	MsgTypeLpcMeasurements:       "LpcMeasurements",
	MsgTypeLpcDiagnosticCommand:  "LpcDiagnosticCommand",
	MsgTypeLpcPower:              "LpcPower",
	MsgTypeLpcEnabledDevices:     "LpcEnabledDevices",
	MsgTypeReset:                 "Reset",
	MsgTypeLpcAndroidTopsideInfo: "LpcAndroidTopsideInfo",
	MsgTypeFirmwareSuccess:       "FirmwareSuccess",
	MsgTypeFirmwareFailure:       "FirmwareFailure",
	MsgTypeFirmwareStarted:       "FirmwareStarted",
}

// String returns the message type name, or Unknown(N) for values the
// protocol does not define.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// Body is a decoded message payload. Concrete body types live in the
// payload package.
type Body interface {
	MessageType() MessageType
}

// DecodeFunc parses a frame payload into a typed body.
type DecodeFunc func(payload []byte) (Body, error)

// Registry maps message types to payload decoders. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[MessageType]DecodeFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[MessageType]DecodeFunc)}
}

// Register installs fn as the decoder for message type t, replacing any
// previous registration. Registering a decoder for MsgTypeHeartbeat is
// allowed but has no effect on stream decoding; heartbeats are always
// dropped before the registry is consulted.
func (r *Registry) Register(t MessageType, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[t] = fn
}

// Lookup returns the decoder registered for t.
func (r *Registry) Lookup(t MessageType) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[t]
	return fn, ok
}

// Types returns the message types with registered decoders, in no
// particular order.
func (r *Registry) Types() []MessageType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]MessageType, 0, len(r.decoders))
	for t := range r.decoders {
		types = append(types, t)
	}
	return types
}

// Message is a fully decoded wire message: the frame fields plus the typed
// body produced by the registered decoder.
type Message struct {
	Type     MessageType
	Sequence uint32
	Checksum [4]byte
	Payload  []byte
	Body     Body
}

// String returns a debug representation of the message.
func (m *Message) String() string {
	return fmt.Sprintf("Message{type=%s, seq=%d, checksum=%02X%02X%02X%02X, payload=%d bytes}",
		m.Type, m.Sequence, m.Checksum[0], m.Checksum[1], m.Checksum[2], m.Checksum[3], len(m.Payload))
}

// Decoder demultiplexes a raw byte stream into typed messages using a
// registry of payload decoders.
type Decoder struct {
	registry *Registry
}

// NewDecoder returns a decoder backed by reg. A nil reg behaves like an
// empty registry: every frame is consumed and dropped.
func NewDecoder(reg *Registry) *Decoder {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Decoder{registry: reg}
}

// Registry returns the decoder's registry.
func (d *Decoder) Registry() *Registry {
	return d.registry
}

// Decode consumes as many complete frames from data as possible and returns
// the decoded messages plus the unconsumed tail. A frame split across reads
// is not an error: decoding stops and the partial bytes come back as rest,
// to be prepended to the next read. Heartbeat frames and frames without a
// registered decoder are consumed and dropped. A corrupt stream (bad
// preamble) or a payload the registered decoder rejects aborts with an
// error alongside whatever decoded cleanly first.
func (d *Decoder) Decode(data []byte) (msgs []*Message, rest []byte, err error) {
	rest = data

	for len(rest) > 0 {
		frame, next, err := DecodeFrame(rest)
		if err != nil {
			if IsIncomplete(err) {
				return msgs, rest, nil
			}
			return msgs, rest, err
		}
		rest = next

		if frame.Type == MsgTypeHeartbeat {
			continue
		}

		fn, ok := d.registry.Lookup(frame.Type)
		if !ok {
			continue
		}

		body, err := fn(frame.Payload)
		if err != nil {
			return msgs, rest, fmt.Errorf("decode %s payload: %w", frame.Type, err)
		}

		msgs = append(msgs, &Message{
			Type:     frame.Type,
			Sequence: frame.Sequence,
			Checksum: frame.Checksum,
			Payload:  frame.Payload,
			Body:     body,
		})
	}

	return msgs, rest, nil
}
