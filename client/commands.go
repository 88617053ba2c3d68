package client

import (
	"fmt"

	"github.com/poolhouse/arcticspa/payload"
)

// Temperature setpoint bounds in degrees Fahrenheit. The controller rejects
// values outside this range, so the client refuses to send them.
const (
	MinTemperature = 59
	MaxTemperature = 104
)

// CommandType identifies a writable controller property.
type CommandType int

// The writable properties, in the controller's Command message field order.
const (
	CmdTemperatureSetpoint CommandType = iota
	CmdPump1
	CmdPump2
	CmdPump3
	CmdPump4
	CmdPump5
	CmdBlower1
	CmdBlower2
	CmdLights
	CmdStereo
	CmdFilter
	CmdOnzen
	CmdOzone
	CmdExhaustFan
	CmdSaunaState
	CmdSaunaTimeLeft
	CmdAllOn
	CmdFogger
	CmdSpaboyBoost
	CmdPackReset
	CmdLogDump
	CmdSDS
	CmdYess
)

// valueKind is the validation class of a command's value.
type valueKind int

const (
	kindTemperature valueKind = iota // int, MinTemperature..MaxTemperature
	kindPump                         // payload.PumpState
	kindSauna                        // payload.SaunaState
	kindMinutes                      // int, no range check
	kindBool                         // bool
)

type commandSpec struct {
	name  string // protocol property name
	field int    // Command message field number
	kind  valueKind
}

var commandSpecs = map[CommandType]commandSpec{
	CmdTemperatureSetpoint: {"set_temperature_setpoint_fahrenheit", 1, kindTemperature},
	CmdPump1:               {"set_pump_1", 2, kindPump},
	CmdPump2:               {"set_pump_2", 3, kindPump},
	CmdPump3:               {"set_pump_3", 4, kindPump},
	CmdPump4:               {"set_pump_4", 5, kindPump},
	CmdPump5:               {"set_pump_5", 6, kindPump},
	CmdBlower1:             {"set_blower_1", 7, kindPump},
	CmdBlower2:             {"set_blower_2", 8, kindPump},
	CmdLights:              {"set_lights", 9, kindBool},
	CmdStereo:              {"set_stereo", 10, kindBool},
	CmdFilter:              {"set_filter", 11, kindBool},
	CmdOnzen:               {"set_onzen", 12, kindBool},
	CmdOzone:               {"set_ozone", 13, kindBool},
	CmdExhaustFan:          {"set_exhaust_fan", 14, kindBool},
	CmdSaunaState:          {"set_sauna_state", 15, kindSauna},
	CmdSaunaTimeLeft:       {"set_sauna_time_left", 16, kindMinutes},
	CmdAllOn:               {"set_all_on", 17, kindBool},
	CmdFogger:              {"set_fogger", 18, kindBool},
	CmdSpaboyBoost:         {"set_spaboy_boost", 19, kindBool},
	CmdPackReset:           {"set_pack_reset", 20, kindBool},
	CmdLogDump:             {"set_log_dump", 21, kindBool},
	CmdSDS:                 {"set_sds", 22, kindBool},
	CmdYess:                {"set_yess", 23, kindBool},
}

// String returns the protocol property name for the command.
func (c CommandType) String() string {
	if spec, ok := commandSpecs[c]; ok {
		return spec.name
	}
	return fmt.Sprintf("CommandType(%d)", int(c))
}

// ValidateCommand checks that value has the right type and range for cmd.
// It performs no I/O; Command calls it before touching the wire.
func ValidateCommand(cmd CommandType, value any) error {
	_, _, err := commandField(cmd, value)
	return err
}

// commandField validates value against cmd's spec and converts it to the
// Command message field number plus the raw varint it encodes as.
func commandField(cmd CommandType, value any) (field int, raw uint64, err error) {
	spec, ok := commandSpecs[cmd]
	if !ok {
		return 0, 0, fmt.Errorf("%w: CommandType(%d)", ErrUnknownCommand, int(cmd))
	}

	switch spec.kind {
	case kindTemperature:
		v, ok := intValue(value)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s wants an int, got %T", ErrValueType, spec.name, value)
		}
		if v < MinTemperature || v > MaxTemperature {
			return 0, 0, fmt.Errorf("%w: %s must be %d..%d, got %d",
				ErrValueOutOfRange, spec.name, MinTemperature, MaxTemperature, v)
		}
		return spec.field, uint64(v), nil

	case kindPump:
		v, ok := value.(payload.PumpState)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s wants a payload.PumpState, got %T", ErrValueType, spec.name, value)
		}
		return spec.field, uint64(v), nil

	case kindSauna:
		v, ok := value.(payload.SaunaState)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s wants a payload.SaunaState, got %T", ErrValueType, spec.name, value)
		}
		return spec.field, uint64(v), nil

	case kindMinutes:
		v, ok := intValue(value)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s wants an int, got %T", ErrValueType, spec.name, value)
		}
		return spec.field, uint64(v), nil

	case kindBool:
		v, ok := value.(bool)
		if !ok {
			return 0, 0, fmt.Errorf("%w: %s wants a bool, got %T", ErrValueType, spec.name, value)
		}
		var raw uint64
		if v {
			raw = 1
		}
		return spec.field, raw, nil
	}

	return 0, 0, fmt.Errorf("%w: CommandType(%d)", ErrUnknownCommand, int(cmd))
}

// intValue coerces the signed integer widths a command accepts. Unsigned
// and floating values are rejected so a caller passing the wrong unit or a
// stray PumpState-as-int gets a type error, not a silent conversion.
func intValue(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}
