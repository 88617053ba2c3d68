package client

import (
	"errors"
	"testing"

	"github.com/poolhouse/arcticspa/payload"
)

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CommandType
		value   any
		wantErr error
	}{
		{"temperature in range", CmdTemperatureSetpoint, 102, nil},
		{"temperature at min", CmdTemperatureSetpoint, MinTemperature, nil},
		{"temperature at max", CmdTemperatureSetpoint, MaxTemperature, nil},
		{"temperature int32", CmdTemperatureSetpoint, int32(80), nil},
		{"temperature below min", CmdTemperatureSetpoint, MinTemperature - 1, ErrValueOutOfRange},
		{"temperature above max", CmdTemperatureSetpoint, MaxTemperature + 1, ErrValueOutOfRange},
		{"temperature as string", CmdTemperatureSetpoint, "102", ErrValueType},
		{"temperature as bool", CmdTemperatureSetpoint, true, ErrValueType},
		{"temperature as float", CmdTemperatureSetpoint, 102.0, ErrValueType},

		{"pump with state", CmdPump1, payload.PumpHigh, nil},
		{"pump off", CmdPump3, payload.PumpOff, nil},
		{"pump with bool", CmdPump1, true, ErrValueType},
		{"pump with int", CmdPump1, 2, ErrValueType},
		{"blower with state", CmdBlower2, payload.PumpLow, nil},
		{"blower with int", CmdBlower1, 1, ErrValueType},

		{"sauna state", CmdSaunaState, payload.SaunaPresetA, nil},
		{"sauna state as pump state", CmdSaunaState, payload.PumpLow, ErrValueType},
		{"sauna state as int", CmdSaunaState, 2, ErrValueType},
		{"sauna time left", CmdSaunaTimeLeft, 30, nil},
		{"sauna time left as bool", CmdSaunaTimeLeft, true, ErrValueType},

		{"lights on", CmdLights, true, nil},
		{"lights with int", CmdLights, 1, ErrValueType},
		{"fogger off", CmdFogger, false, nil},
		{"pack reset", CmdPackReset, true, nil},
		{"yess with string", CmdYess, "on", ErrValueType},

		{"unknown command", CommandType(99), true, ErrUnknownCommand},
		{"negative command", CommandType(-1), 1, ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommand(tt.cmd, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCommand(%v, %v) error = %v, want %v", tt.cmd, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		cmd  CommandType
		want string
	}{
		{CmdTemperatureSetpoint, "set_temperature_setpoint_fahrenheit"},
		{CmdPump1, "set_pump_1"},
		{CmdPump5, "set_pump_5"},
		{CmdBlower2, "set_blower_2"},
		{CmdSaunaTimeLeft, "set_sauna_time_left"},
		{CmdSpaboyBoost, "set_spaboy_boost"},
		{CmdSDS, "set_sds"},
		{CmdYess, "set_yess"},
		{CommandType(99), "CommandType(99)"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("CommandType(%d).String() = %q, want %q", int(tt.cmd), got, tt.want)
		}
	}
}

// TestCommandFieldNumbers pins every command to its Command message field.
// The numbers are wire protocol; reordering the enum must not change them.
func TestCommandFieldNumbers(t *testing.T) {
	for cmd := CmdTemperatureSetpoint; cmd <= CmdYess; cmd++ {
		spec, ok := commandSpecs[cmd]
		if !ok {
			t.Errorf("CommandType(%d) has no spec", int(cmd))
			continue
		}
		if want := int(cmd) + 1; spec.field != want {
			t.Errorf("%s field = %d, want %d", spec.name, spec.field, want)
		}
	}
	if len(commandSpecs) != int(CmdYess)+1 {
		t.Errorf("commandSpecs has %d entries, want %d", len(commandSpecs), int(CmdYess)+1)
	}
}

func TestCommandFieldValues(t *testing.T) {
	tests := []struct {
		name      string
		cmd       CommandType
		value     any
		wantField int
		wantRaw   uint64
	}{
		{"temperature", CmdTemperatureSetpoint, 104, 1, 104},
		{"pump high", CmdPump2, payload.PumpHigh, 3, 2},
		{"blower low", CmdBlower1, payload.PumpLow, 7, 1},
		{"lights on", CmdLights, true, 9, 1},
		{"lights off", CmdLights, false, 9, 0},
		{"sauna preset", CmdSaunaState, payload.SaunaPresetC, 15, 4},
		{"sauna minutes", CmdSaunaTimeLeft, 45, 16, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, raw, err := commandField(tt.cmd, tt.value)
			if err != nil {
				t.Fatalf("commandField() error = %v", err)
			}
			if field != tt.wantField || raw != tt.wantRaw {
				t.Errorf("commandField() = (%d, %d), want (%d, %d)", field, raw, tt.wantField, tt.wantRaw)
			}
		})
	}
}
