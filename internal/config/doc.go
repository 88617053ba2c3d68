// Package config provides user configuration management for the arcticspa CLI.
//
// This package manages a YAML-based configuration file that stores named spa
// controllers (host, serial, last-seen time) and application preferences such
// as the default spa and discovery subnet. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/arcticspa/config.yaml or $HOME/.config/arcticspa/config.yaml
//   - macOS: $HOME/.config/arcticspa/config.yaml
//   - Windows: %LOCALAPPDATA%\arcticspa\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save a controller found by discovery
//	spa := registry.AddSpa("backyard", "192.168.1.42")
//	spa.Serial = "A123456"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
