// Package payload defines the typed message bodies carried by Arctic Spa
// protocol frames.
//
// Controller payloads are protobuf messages. This package reads and writes
// them directly with google.golang.org/protobuf/encoding/protowire rather
// than generated code; the schemas are small, flat, and fixed, and the
// controller tolerates unknown fields in both directions. Field numbers
// follow the upstream message declaration order.
//
// Implemented schemas:
//
//   - Live: temperatures, pump/blower/heater states, lights, filter, sauna
//   - OnzenLive: water chemistry (pH, ORP, electrode diagnostics)
//   - Configuration: installed-hardware description
//   - Information: serial numbers and firmware/hardware versions
//   - Settings: filtration, onzen, ozone, and temperature settings
//   - Command: the write-side message, one field per writable property
//
// DefaultRegistry wires the readable schemas into a protocol.Registry for
// stream decoding:
//
//	dec := protocol.NewDecoder(payload.DefaultRegistry())
//
// The remaining message types (Peak, Clock, Router, the Lpc and Mobile
// families) are enumerated in the protocol package but ship without
// schemas; frames carrying them decode at the frame level and are skipped
// by the stream decoder.
package payload
