package ir

import "sort"

// Dependencies lists the services an engine wants, or the services a host is
// willing to expose to one engine. The same grammar serves both sides.
type Dependencies struct {
	Services []ServiceEntry `json:"services,omitempty" yaml:"services,omitempty"`
}

// ServiceList returns the declared services, tolerating a nil receiver.
func (d *Dependencies) ServiceList() []ServiceEntry {
	if d == nil {
		return nil
	}
	return d.Services
}

// Clone returns a deep copy. Cloning nil yields nil.
func (d *Dependencies) Clone() *Dependencies {
	if d == nil {
		return nil
	}
	out := &Dependencies{}
	if d.Services != nil {
		out.Services = make([]ServiceEntry, len(d.Services))
		copy(out.Services, d.Services)
	}
	return out
}

// HostEngineConfig is one entry of a host's engines map: the grants a host
// makes to the engine registered under the entry's key.
type HostEngineConfig struct {
	Dependencies *Dependencies `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// EngineDefinition is the declarative half of an engine: its canonical name,
// the services it expects from its host, and the grants it makes to engines
// nested inside it.
type EngineDefinition struct {
	// Name is the canonical kebab-case name; the registration key is
	// "engine:" + Name.
	Name string `json:"name" yaml:"name"`

	// Dependencies holds the services this engine expects its host to share.
	// Engine-side entries are bare names; aliasing is declared by the host.
	Dependencies *Dependencies `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Engines holds grants for engines nested inside this one.
	Engines map[string]HostEngineConfig `json:"engines,omitempty" yaml:"engines,omitempty"`
}

// Clone returns a deep copy of the definition.
func (d EngineDefinition) Clone() EngineDefinition {
	return EngineDefinition{
		Name:         d.Name,
		Dependencies: d.Dependencies.Clone(),
		Engines:      cloneEngines(d.Engines),
	}
}

// HostConfig is the host application's side of the protocol.
type HostConfig struct {
	Name string `json:"name" yaml:"name"`

	// Services lists the host-owned service names.
	Services []string `json:"services,omitempty" yaml:"services,omitempty"`

	// Engines maps engine names to grants. A nil map is valid and means no
	// engine receives any service.
	Engines map[string]HostEngineConfig `json:"engines,omitempty" yaml:"engines,omitempty"`
}

// Clone returns a deep copy of the host configuration.
func (h HostConfig) Clone() HostConfig {
	out := HostConfig{Name: h.Name, Engines: cloneEngines(h.Engines)}
	if h.Services != nil {
		out.Services = append([]string(nil), h.Services...)
	}
	return out
}

// ServiceGrant is one resolved permission for a child instance to reach a
// host-owned service.
type ServiceGrant struct {
	// External is the name the engine looks the service up under.
	External string `json:"external"`

	// Internal is the name the service is registered under in the host.
	Internal string `json:"internal,omitempty"`

	// Satisfied reports whether the host granted the service.
	Satisfied bool `json:"satisfied"`
}

// EngineNames returns the keys of an engines map in sorted order.
func EngineNames(engines map[string]HostEngineConfig) []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneEngines(in map[string]HostEngineConfig) map[string]HostEngineConfig {
	if in == nil {
		return nil
	}
	out := make(map[string]HostEngineConfig, len(in))
	for name, cfg := range in {
		out[name] = HostEngineConfig{Dependencies: cfg.Dependencies.Clone()}
	}
	return out
}
