package engine

import (
	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/naming"
)

// Registry is the part of a container the normalizer needs.
type Registry interface {
	Has(key string) bool
}

// Normalizer maps a requested engine name to the canonical kebab-case name
// it is registered under.
type Normalizer struct {
	Sink diag.Sink
}

// Resolve returns the canonical name for requested.
//
// An exact registration always wins and never warns. Otherwise the
// kebab-case form is tried and, if registered, a camelized-name deprecation
// is emitted. Anything else is DEFINITION_NOT_FOUND.
func (n Normalizer) Resolve(reg Registry, requested string) (string, error) {
	if requested == "" {
		return "", definitionNotFound(requested)
	}
	if reg.Has(container.EngineKey(requested)) {
		return requested, nil
	}

	kebab := naming.Dasherize(requested)
	if kebab != requested && reg.Has(container.EngineKey(kebab)) {
		n.sink().Deprecate(diag.CamelizedEngineName(kebab, requested))
		return kebab, nil
	}
	return "", definitionNotFound(requested)
}

// HostConfig returns the grants a host's engines map makes to the engine
// registered as canonical.
//
// A kebab-case key wins silently. Hosts that still key the map by the
// camelCase form get their entry back along with a deprecation. A missing
// entry yields the zero config, which grants nothing.
func (n Normalizer) HostConfig(engines map[string]ir.HostEngineConfig, canonical string) ir.HostEngineConfig {
	if cfg, ok := engines[canonical]; ok {
		return cfg
	}
	camel := naming.Camelize(canonical)
	if camel != canonical {
		if cfg, ok := engines[camel]; ok {
			n.sink().Deprecate(diag.CamelizedEngineName(canonical, camel))
			return cfg
		}
	}
	return ir.HostEngineConfig{}
}

func (n Normalizer) sink() diag.Sink {
	if n.Sink == nil {
		return diag.Discard
	}
	return n.Sink
}
