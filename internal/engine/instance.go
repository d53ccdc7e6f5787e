package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/naming"
)

// Instance is a live host or engine instance: an isolated container plus
// its lifecycle state and the children it has built.
//
// A host is the root Instance (Parent() == nil). Children hold a non-owning
// pointer to their parent; the parent owns its children and destroys them
// before itself.
//
// Thread-safety: all methods are safe for concurrent use.
type Instance struct {
	id        string
	name      string
	parent    *Instance
	builder   *Builder
	container *container.Container

	// def is nil for a host.
	def *Definition
	// setup holds a host's boot steps; engines use def instead.
	setup []Initializer

	// engines holds the grants this instance makes to its own children.
	engines map[string]ir.HostEngineConfig
	grants  []ir.ServiceGrant

	mu       sync.Mutex
	state    State
	bootDone chan struct{}
	bootErr  error
	children []*Instance
}

// ID returns the instance ID used in the journal.
func (i *Instance) ID() string { return i.id }

// Name returns the canonical engine name, or the host name for a host.
func (i *Instance) Name() string { return i.name }

// Parent returns the instance that built this one, or nil for a host.
func (i *Instance) Parent() *Instance { return i.parent }

// IsHost reports whether this is a root instance.
func (i *Instance) IsHost() bool { return i.parent == nil }

// Container returns the instance's own container. Use it to register host
// services and engine definitions.
func (i *Instance) Container() *container.Container { return i.container }

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Definition returns a copy of the engine's declarative definition.
// The zero value is returned for a host.
func (i *Instance) Definition() ir.EngineDefinition {
	if i.def == nil {
		return ir.EngineDefinition{}
	}
	return i.def.EngineDefinition.Clone()
}

// Grants returns the resolved service map, in the engine's declaration order.
func (i *Instance) Grants() []ir.ServiceGrant {
	if i.grants == nil {
		return nil
	}
	out := make([]ir.ServiceGrant, len(i.grants))
	copy(out, i.grants)
	return out
}

// Children returns the live children in build order.
func (i *Instance) Children() []*Instance {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]*Instance, len(i.children))
	copy(out, i.children)
	return out
}

// RegisterEngine registers an engine definition in this instance's container
// so it can be built as a child.
func (i *Instance) RegisterEngine(def Definition) error {
	if i.State() == StateDestroyed {
		return destroyedInstance(i.name, "register an engine on")
	}
	return RegisterDefinition(i.container, def)
}

// RegisterService registers a service value under "service:<name>".
func (i *Instance) RegisterService(name string, value any) error {
	if i.State() == StateDestroyed {
		return destroyedInstance(i.name, "register a service on")
	}
	return i.container.RegisterValue(container.ServiceKey(name), value)
}

// BuildChildEngineInstance builds a child of i for the engine requested.
// The child is returned in state Built; call Boot to run its setup.
func (i *Instance) BuildChildEngineInstance(ctx context.Context, requested string) (*Instance, error) {
	return i.builder.Build(ctx, i, requested)
}

// Lookup resolves key in this instance's container.
//
// Granted services resolve to the parent's value for the aliased internal
// name. Declared services the host did not grant fail with
// UNSATISFIED_DEPENDENCY.
func (i *Instance) Lookup(key string) (any, error) {
	if i.State() == StateDestroyed {
		return nil, destroyedInstance(i.name, "look up "+key+" on")
	}

	value, err := i.container.Lookup(key)
	if err == nil {
		return value, nil
	}

	switch {
	case errors.Is(err, container.ErrDestroyed):
		return nil, destroyedInstance(i.name, "look up "+key+" on")
	case errors.Is(err, container.ErrNotFound):
		if kind, name, perr := container.ParseKey(key); perr == nil && kind == container.KindService {
			for _, g := range i.grants {
				if g.External == name && !g.Satisfied {
					return nil, unsatisfiedDependency(i.name, name)
				}
			}
		}
	}
	return nil, err
}

// EngineConfig returns the grants this instance makes to the child engine
// registered as name. Like Build it falls back to the camelCase key, but it
// never reports a deprecation.
func (i *Instance) EngineConfig(name string) (ir.HostEngineConfig, bool) {
	if cfg, ok := i.engines[name]; ok {
		return cfg, true
	}
	if camel := naming.Camelize(name); camel != name {
		cfg, ok := i.engines[camel]
		return cfg, ok
	}
	return ir.HostEngineConfig{}, false
}

func (i *Instance) definition(canonical string) (*Definition, error) {
	value, err := i.container.Lookup(container.EngineKey(canonical))
	if err != nil {
		if errors.Is(err, container.ErrNotFound) {
			return nil, definitionNotFound(canonical)
		}
		if errors.Is(err, container.ErrDestroyed) {
			return nil, destroyedInstance(i.name, "build a child engine of")
		}
		return nil, err
	}
	def, ok := value.(*Definition)
	if !ok {
		return nil, invalidDefinition(canonical, fmt.Sprintf("%s holds %T, not an engine definition", container.EngineKey(canonical), value))
	}
	return def, nil
}

// adopt records child as owned by i, unless i was destroyed meanwhile.
func (i *Instance) adopt(child *Instance) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateDestroyed {
		return destroyedInstance(i.name, "build a child engine of")
	}
	i.children = append(i.children, child)
	return nil
}

// release drops child from i's children after child was destroyed.
func (i *Instance) release(child *Instance) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx, c := range i.children {
		if c == child {
			i.children = append(i.children[:idx], i.children[idx+1:]...)
			return
		}
	}
}

func (i *Instance) setupSteps() (SetupFunc, []Initializer) {
	if i.def == nil {
		return nil, i.setup
	}
	return i.def.Routes, i.def.Initializers
}
