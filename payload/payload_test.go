package payload

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/poolhouse/arcticspa/protocol"
)

func TestLiveRoundTrip(t *testing.T) {
	want := &Live{
		TemperatureFahrenheit:         97,
		TemperatureSetpointFahrenheit: 102,
		Pump1:                         PumpHigh,
		Pump2:                         PumpLow,
		Blower1:                       PumpLow,
		Lights:                        true,
		Heater1:                       1,
		Filter:                        2,
		Onzen:                         true,
		Ozone:                         1,
		Sauna:                         SaunaTimer,
		HeaterADC:                     512,
		Economy:                       true,
		CurrentADC:                    330,
		Fogger:                        true,
	}

	got, err := DecodeLive(want.Encode())
	if err != nil {
		t.Fatalf("DecodeLive() error = %v", err)
	}
	if *got != *want {
		t.Errorf("DecodeLive() = %+v, want %+v", got, want)
	}
}

func TestDecodeLiveEmpty(t *testing.T) {
	got, err := DecodeLive(nil)
	if err != nil {
		t.Fatalf("DecodeLive() error = %v", err)
	}
	if *got != (Live{}) {
		t.Errorf("DecodeLive(nil) = %+v, want zero value", got)
	}
}

func TestDecodeLiveSkipsUnknownFields(t *testing.T) {
	src := &Live{TemperatureFahrenheit: 99, Pump1: PumpHigh}
	b := src.Encode()

	// Controllers running newer firmware may append fields this schema
	// does not know about.
	b = protowire.AppendTag(b, 200, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)
	b = protowire.AppendTag(b, 201, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	got, err := DecodeLive(b)
	if err != nil {
		t.Fatalf("DecodeLive() error = %v", err)
	}
	if got.TemperatureFahrenheit != 99 || got.Pump1 != PumpHigh {
		t.Errorf("DecodeLive() = %+v, want known fields preserved", got)
	}
}

func TestOnzenLiveRoundTrip(t *testing.T) {
	want := &OnzenLive{
		Guid:                  "a1b2c3d4",
		ORP:                   712,
		PH100:                 728,
		Current:               -40,
		Voltage:               12,
		CurrentSetpoint:       100,
		Pump1:                 1,
		ORPStateMachine:       3,
		ElectrodeStateMachine: 2,
		ElectrodeID:           7,
		Electrode1Resistance1: 930,
		Electrode2Resistance2: -1,
		CommandMode:           1,
		ElectrodeMAH:          4500,
		PHColor:               2,
		ORPColor:              1,
		ElectrodeWear:         15,
	}

	got, err := DecodeOnzenLive(want.Encode())
	if err != nil {
		t.Fatalf("DecodeOnzenLive() error = %v", err)
	}
	if *got != *want {
		t.Errorf("DecodeOnzenLive() = %+v, want %+v", got, want)
	}
}

func TestOnzenLivePH(t *testing.T) {
	o := &OnzenLive{PH100: 728}
	if got := o.PH(); got != 7.28 {
		t.Errorf("PH() = %v, want 7.28", got)
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	want := &Configuration{
		Pump1:       2,
		Pump2:       2,
		Blower1:     1,
		Lights:      1,
		Onzen:       1,
		OzonePeak1:  1,
		Heater1:     1,
		Powerlines:  2,
		BreakerSize: 60,
		SmartOnzen:  1,
		SDS:         1,
	}

	got, err := DecodeConfiguration(want.Encode())
	if err != nil {
		t.Fatalf("DecodeConfiguration() error = %v", err)
	}
	if *got != *want {
		t.Errorf("DecodeConfiguration() = %+v, want %+v", got, want)
	}
}

func TestInformationRoundTrip(t *testing.T) {
	want := &Information{
		PackBoardID:            "100047",
		PackFirmwareVersion:    "v12.34",
		SpaboyFirmwareVersion:  "v2.01",
		SpaType:                4,
		PackSerialNumber:       "AS-5521-0042",
		TopsideSoftwareVersion: "v5.10",
		WebsiteRegistration:    "yes",
		Guid:                   "0f9e8d7c",
	}

	got, err := DecodeInformation(want.Encode())
	if err != nil {
		t.Fatalf("DecodeInformation() error = %v", err)
	}
	if *got != *want {
		t.Errorf("DecodeInformation() = %+v, want %+v", got, want)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	want := &Settings{
		MinTemperature:      59,
		MaxTemperature:      104,
		FiltrationDuration:  2,
		FiltrationFrequency: 4,
		FilterSuspension:    true,
		FlashLightsOnError:  true,
		TemperatureOffset:   -2,
	}

	got, err := DecodeSettings(want.Encode())
	if err != nil {
		t.Fatalf("DecodeSettings() error = %v", err)
	}
	if *got != *want {
		t.Errorf("DecodeSettings() = %+v, want %+v", got, want)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	bad := []byte{0x08, 0x80} // field 1, truncated varint

	if _, err := DecodeLive(bad); err == nil {
		t.Error("DecodeLive() error = nil, want parse error")
	}
	if _, err := DecodeSettings(bad); err == nil {
		t.Error("DecodeSettings() error = nil, want parse error")
	}
	if _, err := DecodeCommand(bad); err == nil {
		t.Error("DecodeCommand() error = nil, want parse error")
	}
}

func TestDefaultRegistryDispatch(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		typ     protocol.MessageType
		payload []byte
		verify  func(t *testing.T, body protocol.Body)
	}{
		{
			typ:     protocol.MsgTypeLive,
			payload: (&Live{TemperatureFahrenheit: 100}).Encode(),
			verify: func(t *testing.T, body protocol.Body) {
				live, ok := body.(*Live)
				if !ok {
					t.Fatalf("body = %T, want *Live", body)
				}
				if live.TemperatureFahrenheit != 100 {
					t.Errorf("TemperatureFahrenheit = %d, want 100", live.TemperatureFahrenheit)
				}
			},
		},
		{
			typ:     protocol.MsgTypeOnzenLive,
			payload: (&OnzenLive{Guid: "beef"}).Encode(),
			verify: func(t *testing.T, body protocol.Body) {
				o, ok := body.(*OnzenLive)
				if !ok {
					t.Fatalf("body = %T, want *OnzenLive", body)
				}
				if o.Guid != "beef" {
					t.Errorf("Guid = %q, want \"beef\"", o.Guid)
				}
			},
		},
		{
			typ:     protocol.MsgTypeSettings,
			payload: (&Settings{MaxTemperature: 104}).Encode(),
			verify: func(t *testing.T, body protocol.Body) {
				if _, ok := body.(*Settings); !ok {
					t.Fatalf("body = %T, want *Settings", body)
				}
			},
		},
		{
			typ:     protocol.MsgTypeConfiguration,
			payload: (&Configuration{Pump1: 2}).Encode(),
			verify: func(t *testing.T, body protocol.Body) {
				if _, ok := body.(*Configuration); !ok {
					t.Fatalf("body = %T, want *Configuration", body)
				}
			},
		},
		{
			typ:     protocol.MsgTypeInformation,
			payload: (&Information{PackSerialNumber: "X"}).Encode(),
			verify: func(t *testing.T, body protocol.Body) {
				if _, ok := body.(*Information); !ok {
					t.Fatalf("body = %T, want *Information", body)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			decode, ok := reg.Lookup(tt.typ)
			if !ok {
				t.Fatalf("Lookup(%s) = false, want registered decoder", tt.typ)
			}
			body, err := decode(tt.payload)
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if body.MessageType() != tt.typ {
				t.Errorf("MessageType() = %s, want %s", body.MessageType(), tt.typ)
			}
			tt.verify(t, body)
		})
	}
}

func TestDefaultRegistryUnregisteredTypes(t *testing.T) {
	reg := DefaultRegistry()

	for _, typ := range []protocol.MessageType{
		protocol.MsgTypePeak,
		protocol.MsgTypeClock,
		protocol.MsgTypeHeartbeat,
		protocol.MsgTypeRouter,
	} {
		if _, ok := reg.Lookup(typ); ok {
			t.Errorf("Lookup(%s) = true, want unregistered", typ)
		}
	}
}

func TestPumpStateString(t *testing.T) {
	tests := []struct {
		state PumpState
		want  string
	}{
		{PumpOff, "Off"},
		{PumpLow, "Low"},
		{PumpHigh, "High"},
		{PumpState(9), "PumpState(9)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("PumpState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSaunaStateString(t *testing.T) {
	tests := []struct {
		state SaunaState
		want  string
	}{
		{SaunaIdle, "Idle"},
		{SaunaTimer, "Timer"},
		{SaunaPresetA, "PresetA"},
		{SaunaPresetB, "PresetB"},
		{SaunaPresetC, "PresetC"},
		{SaunaState(7), "SaunaState(7)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("SaunaState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
