package ir

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceEntry is one element of a dependencies.services list.
//
// Two forms exist:
//   - a bare name, "store": the service is shared under the same name
//   - an alias pair, {"data-store": "store"}: the engine asks for
//     "data-store" and the host serves its own "store"
type ServiceEntry struct {
	External string
	Internal string
	Aliased  bool
}

// Service returns a bare service entry.
func Service(name string) ServiceEntry {
	return ServiceEntry{External: name, Internal: name}
}

// Alias returns an alias pair mapping the external name to the internal one.
func Alias(external, internal string) ServiceEntry {
	return ServiceEntry{External: external, Internal: internal, Aliased: true}
}

// Services builds a Dependencies value of bare names.
func Services(names ...string) *Dependencies {
	deps := &Dependencies{Services: make([]ServiceEntry, 0, len(names))}
	for _, name := range names {
		deps.Services = append(deps.Services, Service(name))
	}
	return deps
}

// String renders the entry in its source grammar.
func (e ServiceEntry) String() string {
	if e.Aliased {
		return fmt.Sprintf("{%s: %s}", e.External, e.Internal)
	}
	return e.External
}

// MarshalJSON encodes a bare entry as a string and an alias as a single-key object.
func (e ServiceEntry) MarshalJSON() ([]byte, error) {
	if e.Aliased {
		return json.Marshal(map[string]string{e.External: e.Internal})
	}
	return json.Marshal(e.External)
}

// UnmarshalJSON accepts a string or an object with exactly one key.
func (e *ServiceEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return e.setBare(name)
	}
	var pair map[string]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("service entry must be a string or a single-key object: %w", err)
	}
	return e.setPair(pair)
}

// UnmarshalYAML accepts a scalar or a mapping with exactly one key.
func (e *ServiceEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return e.setBare(node.Value)
	case yaml.MappingNode:
		var pair map[string]string
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: service alias: %w", node.Line, err)
		}
		if err := e.setPair(pair); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		return nil
	default:
		return fmt.Errorf("line %d: service entry must be a string or a single-key mapping", node.Line)
	}
}

// ParseAliasPair builds an alias entry from a decoded single-key object.
func ParseAliasPair(pair map[string]string) (ServiceEntry, error) {
	var e ServiceEntry
	err := e.setPair(pair)
	return e, err
}

func (e *ServiceEntry) setBare(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("service name must be non-empty")
	}
	*e = Service(name)
	return nil
}

func (e *ServiceEntry) setPair(pair map[string]string) error {
	if len(pair) != 1 {
		return fmt.Errorf("service alias must have exactly one key, got %d", len(pair))
	}
	for external, internal := range pair {
		external = strings.TrimSpace(external)
		internal = strings.TrimSpace(internal)
		if external == "" || internal == "" {
			return fmt.Errorf("service alias names must be non-empty")
		}
		*e = Alias(external, internal)
	}
	return nil
}
