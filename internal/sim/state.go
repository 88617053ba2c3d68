package sim

import (
	"sync"

	"github.com/poolhouse/arcticspa/payload"
)

// Defaults for the simulated pack identity.
const (
	DefaultSerial = "SIM00001"
	DefaultGuid   = "73696d2d70616368"
)

// state is the simulator's mutable controller state. All access goes
// through the mutex; snapshots encode under the lock so a concurrent
// command never produces a torn payload.
type state struct {
	mu       sync.Mutex
	live     payload.Live
	onzen    payload.OnzenLive
	config   payload.Configuration
	info     payload.Information
	settings payload.Settings
}

// newState seeds the simulator with a plausible running spa: water a
// couple of degrees below a 102°F setpoint, filtration running, Onzen
// chemistry in the green.
func newState() *state {
	s := &state{}

	s.live = payload.Live{
		TemperatureFahrenheit:         100,
		TemperatureSetpointFahrenheit: 102,
		Pump1:                         payload.PumpLow,
		Heater1:                       1,
		Filter:                        1,
		Onzen:                         true,
		Ozone:                         1,
		HeaterADC:                     512,
		CurrentADC:                    96,
	}

	s.onzen = payload.OnzenLive{
		Guid:                  DefaultGuid,
		ORP:                   650,
		PH100:                 720,
		Current:               1200,
		Voltage:               12,
		CurrentSetpoint:       1500,
		VoltageSetpoint:       12,
		ElectrodeID:           1,
		Electrode1Resistance1: 180,
		Electrode1Resistance2: 185,
		Electrode2Resistance1: 190,
		Electrode2Resistance2: 188,
		ElectrodeMAH:          4200,
		PHColor:               1,
		ORPColor:              1,
		ElectrodeWear:         12,
	}

	s.config = payload.Configuration{
		Pump1:       1,
		Pump2:       1,
		Blower1:     1,
		Lights:      1,
		Heater1:     1,
		Filter:      1,
		Onzen:       1,
		OzonePeak1:  1,
		Powerlines:  2,
		BreakerSize: 50,
	}

	s.info = payload.Information{
		PackSerialNumber:       DefaultSerial,
		PackFirmwareVersion:    "11.06",
		PackHardwareVersion:    "2.06",
		PackProductID:          "EPC-2001",
		PackBoardID:            "800",
		TopsideProductID:       "TSC-2005",
		TopsideSoftwareVersion: "4.11",
		Guid:                   DefaultGuid,
		SpaType:                2,
		MacAddress:             "00:15:27:aa:bb:cc",
		FirmwareVersion:        "11.06",
		ProductCode:            "ARCTIC",
	}

	s.settings = payload.Settings{
		MaxFiltrationFrequency: 4,
		MinFiltrationFrequency: 1,
		FiltrationFrequency:    2,
		MaxFiltrationDuration:  8,
		MinFiltrationDuration:  1,
		FiltrationDuration:     2,
		MaxOnzenHours:          24,
		MinOnzenHours:          1,
		OnzenHours:             6,
		MaxOnzenCycles:         8,
		MinOnzenCycles:         1,
		OnzenCycles:            2,
		MaxOzoneHours:          24,
		MinOzoneHours:          1,
		OzoneHours:             8,
		MaxOzoneCycles:         8,
		MinOzoneCycles:         1,
		OzoneCycles:            2,
		SaunaDuration:          30,
		MinTemperature:         59,
		MaxTemperature:         104,
		SpaboyHours:            12,
	}

	return s
}

// serial returns the simulated pack serial number.
func (s *state) serial() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.PackSerialNumber
}

func (s *state) snapshotLive() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live.Encode()
}

func (s *state) snapshotOnzenLive() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onzen.Encode()
}

func (s *state) snapshotConfiguration() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Encode()
}

func (s *state) snapshotInformation() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.Encode()
}

func (s *state) snapshotSettings() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Encode()
}

// apply folds a command payload into the state. Command field numbers
// follow the writable-property order, 1 (temperature setpoint) through 23
// (yess). Fields the simulated hardware has no counterpart for are
// ignored, like a real pack ignoring commands for uninstalled equipment.
// Returns true when the command asks for a pack reset.
func (s *state) apply(cmd *payload.Command) (reset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, num := range cmd.Fields() {
		v, _ := cmd.Value(num)
		switch num {
		case 1:
			s.live.TemperatureSetpointFahrenheit = uint32(v)
		case 2:
			s.live.Pump1 = payload.PumpState(v)
		case 3:
			s.live.Pump2 = payload.PumpState(v)
		case 4:
			s.live.Pump3 = payload.PumpState(v)
		case 5:
			s.live.Pump4 = payload.PumpState(v)
		case 6:
			s.live.Pump5 = payload.PumpState(v)
		case 7:
			s.live.Blower1 = payload.PumpState(v)
		case 8:
			s.live.Blower2 = payload.PumpState(v)
		case 9:
			s.live.Lights = v != 0
		case 10:
			s.live.Stereo = v != 0
		case 11:
			if v != 0 {
				s.live.Filter = 1
			} else {
				s.live.Filter = 0
			}
		case 12:
			s.live.Onzen = v != 0
		case 13:
			if v != 0 {
				s.live.Ozone = 1
			} else {
				s.live.Ozone = 0
			}
		case 14:
			s.live.ExhaustFan = v != 0
		case 15:
			s.live.Sauna = payload.SaunaState(v)
		case 16:
			s.settings.SaunaDuration = uint32(v)
		case 17:
			s.live.AllOn = v != 0
		case 18:
			s.live.Fogger = v != 0
		case 20:
			if v != 0 {
				reset = true
			}
		}
	}

	return reset
}
