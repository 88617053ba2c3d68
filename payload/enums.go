package payload

import "fmt"

// PumpState is the speed of a pump or blower.
type PumpState uint32

const (
	PumpOff  PumpState = 0
	PumpLow  PumpState = 1
	PumpHigh PumpState = 2
)

// String returns the state name, or Unknown(N) for undefined values.
func (s PumpState) String() string {
	switch s {
	case PumpOff:
		return "Off"
	case PumpLow:
		return "Low"
	case PumpHigh:
		return "High"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}

// SaunaState is the sauna program selector.
type SaunaState uint32

const (
	SaunaIdle    SaunaState = 0
	SaunaTimer   SaunaState = 1
	SaunaPresetA SaunaState = 2
	SaunaPresetB SaunaState = 3
	SaunaPresetC SaunaState = 4
)

// String returns the state name, or Unknown(N) for undefined values.
func (s SaunaState) String() string {
	switch s {
	case SaunaIdle:
		return "Idle"
	case SaunaTimer:
		return "Timer"
	case SaunaPresetA:
		return "PresetA"
	case SaunaPresetB:
		return "PresetB"
	case SaunaPresetC:
		return "PresetC"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}
