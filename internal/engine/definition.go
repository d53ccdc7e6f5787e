package engine

import (
	"context"
	"fmt"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/naming"
)

// SetupFunc is one step of an instance's boot setup.
type SetupFunc func(ctx context.Context, inst *Instance) error

// Initializer is a named setup step run during boot, after the route hook.
type Initializer struct {
	Name string
	Run  SetupFunc
}

// Definition is an engine as registered in a container under
// "engine:<name>": the declarative ir.EngineDefinition plus the behavior
// that runs when an instance is built and booted.
type Definition struct {
	ir.EngineDefinition

	// Routes is the route map hook, run first during boot. Optional.
	Routes SetupFunc

	// Initializers run in order after Routes.
	Initializers []Initializer

	// Register adds engine-owned registrations (private services, nested
	// engine definitions) to a freshly built instance's container. It runs
	// after the granted services are delegated.
	Register func(c *container.Container) error

	hash string
}

// Hash returns the definition fingerprint computed at registration.
// Empty for definitions that were never registered.
func (d *Definition) Hash() string {
	return d.hash
}

// Validate checks the declarative part of the definition.
//
// Engine-side service entries must be bare, non-empty and unique; aliasing is
// declared by the host. The name must already be kebab-case, since it is the
// canonical form lookups normalize to.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return invalidDefinition("", "engine name is required")
	}
	if !naming.IsKebab(d.Name) {
		return invalidDefinition(d.Name, fmt.Sprintf("engine name %q must be kebab-case (did you mean %q?)", d.Name, naming.Dasherize(d.Name)))
	}

	seen := make(map[string]bool)
	for _, entry := range d.Dependencies.ServiceList() {
		if entry.Aliased {
			return invalidDefinition(d.Name, fmt.Sprintf("service alias %s is only allowed on the host side", entry))
		}
		if entry.External == "" {
			return invalidDefinition(d.Name, "service name is required")
		}
		if seen[entry.External] {
			return invalidDefinition(d.Name, fmt.Sprintf("service %q declared twice", entry.External))
		}
		seen[entry.External] = true
	}

	for _, name := range ir.EngineNames(d.Engines) {
		if name == "" {
			return invalidDefinition(d.Name, "nested engine grant with empty name")
		}
	}
	return nil
}

// freeze returns a validated deep copy so later edits to the caller's value
// cannot reach a registered definition.
func (d Definition) freeze() (*Definition, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	frozen := &Definition{
		EngineDefinition: d.EngineDefinition.Clone(),
		Routes:           d.Routes,
		Register:         d.Register,
	}
	if d.Initializers != nil {
		frozen.Initializers = make([]Initializer, len(d.Initializers))
		copy(frozen.Initializers, d.Initializers)
	}

	hash, err := ir.DefinitionHash(frozen.EngineDefinition)
	if err != nil {
		return nil, &Error{Code: CodeInvalidDefinition, Message: "cannot fingerprint definition", Engine: d.Name, Err: err}
	}
	frozen.hash = hash
	return frozen, nil
}

// RegisterDefinition validates def, freezes a copy and registers it under
// "engine:<name>" in c.
func RegisterDefinition(c *container.Container, def Definition) error {
	frozen, err := def.freeze()
	if err != nil {
		return err
	}
	if err := c.RegisterValue(container.EngineKey(frozen.Name), frozen); err != nil {
		return &Error{Code: CodeInvalidDefinition, Message: "cannot register definition", Engine: frozen.Name, Key: container.EngineKey(frozen.Name), Err: err}
	}
	return nil
}
