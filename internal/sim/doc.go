// Package sim implements an Arctic Spa pack controller simulator.
//
// The simulator speaks the controller's LAN protocol well enough to
// develop and test clients without a physical spa: a TCP listener on a
// configurable port accepts frame-protocol sessions, and an optional UDP
// responder answers discovery probes with the standard identity string.
//
// # Behavior
//
// Per connection, the simulator:
//  1. Decodes the incoming byte stream frame by frame, tolerating frames
//     split across reads
//  2. Answers zero-payload requests for Live, OnzenLive, Configuration,
//     Information, and Settings from its mutable state
//  3. Applies Command frames to the state and echoes a fresh Live frame
//  4. Emits Heartbeat frames every PushInterval
//
// A pack-reset command drops the connection, mirroring the reboot a real
// pack performs. State is seeded with a plausible running spa (102°F
// setpoint, filtration on, healthy water chemistry) and is shared across
// connections, so one client observes another's commands.
//
// # Usage Example
//
//	s, err := sim.New(&sim.Config{
//	    Host:         "",
//	    Port:         65534,
//	    LogLevel:     "info",
//	    PushInterval: time.Second,
//	    Discovery:    true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run blocks until shutdown signal or error
//	if err := s.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use Start instead of Run: Port 0 binds an ephemeral port and
// Addr reports it.
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: the listener and responder close, active
// connections drop, and Shutdown waits (bounded by its context and a 10
// second cap) for connection goroutines to finish.
package sim
