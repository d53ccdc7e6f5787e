package harness

import (
	"context"
	"fmt"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/naming"
	"github.com/roach88/enginehost/internal/testutil"
)

// DefaultHostName names hosts whose configuration leaves the name empty.
const DefaultHostName = "app"

// Fixture is a host whose services are stubs.
type Fixture struct {
	Host     *engine.Instance
	Services map[string]*testutil.StubService
}

// Assemble creates a host for cfg with a stub for every service it lists,
// and registers defs on it.
//
// A definition whose engines map names another definition in defs also
// registers that definition in each instance built from it, so nested
// engines can be built from the child.
func Assemble(cfg ir.HostConfig, defs []engine.Definition, opts ...engine.Option) (*Fixture, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultHostName
	}
	host, err := engine.NewHost(cfg, opts...)
	if err != nil {
		return nil, err
	}

	f := &Fixture{Host: host, Services: make(map[string]*testutil.StubService, len(cfg.Services))}
	for _, name := range cfg.Services {
		stub := testutil.NewStubService(name)
		if err := host.RegisterService(name, stub); err != nil {
			return nil, fmt.Errorf("register service %q: %w", name, err)
		}
		f.Services[name] = stub
	}

	for _, def := range withNested(defs) {
		if err := host.RegisterEngine(def); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// withNested returns defs with Register hooks that install the definitions
// each one's engines map refers to.
func withNested(defs []engine.Definition) []engine.Definition {
	out := make([]engine.Definition, len(defs))
	copy(out, defs)

	index := make(map[string]engine.Definition, len(out))
	for i := range out {
		names := ir.EngineNames(out[i].Engines)
		if len(names) == 0 {
			continue
		}
		own := out[i].Register
		out[i].Register = func(c *container.Container) error {
			if own != nil {
				if err := own(c); err != nil {
					return err
				}
			}
			for _, name := range names {
				nested, ok := index[naming.Dasherize(name)]
				if !ok || c.Has(container.EngineKey(nested.Name)) {
					continue
				}
				if err := engine.RegisterDefinition(c, nested); err != nil {
					return err
				}
			}
			return nil
		}
	}
	for _, def := range out {
		index[def.Name] = def
	}
	return out
}


// Definition turns an EngineSpec into a runtime definition. The route hook
// resolves each of spec.Lookups; initializers succeed except the one named
// by spec.Fail.
func (spec EngineSpec) Definition() engine.Definition {
	def := engine.Definition{EngineDefinition: spec.EngineDefinition}
	if len(spec.Lookups) > 0 {
		keys := append([]string(nil), spec.Lookups...)
		def.Routes = func(_ context.Context, inst *engine.Instance) error {
			for _, key := range keys {
				if _, err := inst.Lookup(key); err != nil {
					return err
				}
			}
			return nil
		}
	}
	for _, name := range spec.Initializers {
		init := engine.Initializer{Name: name, Run: func(context.Context, *engine.Instance) error { return nil }}
		if name == spec.Fail {
			init.Run = func(context.Context, *engine.Instance) error {
				return fmt.Errorf("initializer %s failed", name)
			}
		}
		def.Initializers = append(def.Initializers, init)
	}
	return def
}
