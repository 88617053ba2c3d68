package config

import (
	"fmt"
	"time"
)

// Registry represents the entire user configuration file.
// This stores named spa controllers and application preferences.
type Registry struct {
	Version     int             `yaml:"version"`
	Spas        map[string]*Spa `yaml:"spas,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences    `yaml:"preferences,omitempty"`
}

// Spa represents one saved controller.
type Spa struct {
	Nickname string    `yaml:"nickname,omitempty"`  // Display name (defaults to the registry key)
	Host     string    `yaml:"host"`                // Controller address
	Port     int       `yaml:"port,omitempty"`      // TCP port when not the protocol default
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
	Serial   string    `yaml:"serial,omitempty"`    // Pack serial number from discovery
	Guid     string    `yaml:"guid,omitempty"`      // Controller GUID from Information
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultSpa      string `yaml:"default_spa,omitempty"` // Spa commands talk to when none is named
	Subnet          string `yaml:"subnet,omitempty"`      // Default discovery subnet (CIDR)
	DiscoverTimeout int    `yaml:"discover_timeout"`      // Discovery scan budget in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Spas:    make(map[string]*Spa),
		Preferences: &Preferences{
			DiscoverTimeout: 10,
		},
	}
}

// AddSpa saves a controller under name, updating the entry when it already
// exists. The first spa added becomes the default.
func (r *Registry) AddSpa(name, host string) *Spa {
	if r.Spas == nil {
		r.Spas = make(map[string]*Spa)
	}

	spa, exists := r.Spas[name]
	if !exists {
		spa = &Spa{Nickname: name}
		r.Spas[name] = spa
	}
	spa.Host = host
	spa.LastSeen = time.Now()

	if r.Preferences == nil {
		r.Preferences = &Preferences{DiscoverTimeout: 10}
	}
	if r.Preferences.DefaultSpa == "" {
		r.Preferences.DefaultSpa = name
	}

	return spa
}

// RemoveSpa deletes the named spa and reports whether it existed. A default
// pointing at the removed entry is cleared.
func (r *Registry) RemoveSpa(name string) bool {
	if _, exists := r.Spas[name]; !exists {
		return false
	}
	delete(r.Spas, name)

	if r.Preferences != nil && r.Preferences.DefaultSpa == name {
		r.Preferences.DefaultSpa = ""
	}
	return true
}

// FindSpa looks a spa up by registry name, host address, or serial number,
// in that order. Returns nil when nothing matches.
func (r *Registry) FindSpa(key string) *Spa {
	if spa, exists := r.Spas[key]; exists {
		return spa
	}
	for _, spa := range r.Spas {
		if spa.Host == key {
			return spa
		}
	}
	for _, spa := range r.Spas {
		if spa.Serial != "" && spa.Serial == key {
			return spa
		}
	}
	return nil
}

// SetDefault marks the named spa as the one commands use when no host is
// given explicitly.
func (r *Registry) SetDefault(name string) error {
	if _, exists := r.Spas[name]; !exists {
		return fmt.Errorf("no spa named %q in the registry", name)
	}
	if r.Preferences == nil {
		r.Preferences = &Preferences{DiscoverTimeout: 10}
	}
	r.Preferences.DefaultSpa = name
	return nil
}

// DefaultSpa returns the default spa entry, or nil when none is configured.
func (r *Registry) DefaultSpa() *Spa {
	if r.Preferences == nil || r.Preferences.DefaultSpa == "" {
		return nil
	}
	return r.Spas[r.Preferences.DefaultSpa]
}
