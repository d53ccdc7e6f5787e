package compiler

import (
	"fmt"
	"sort"
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/enginehost/internal/ir"
)

// CompileEngine parses a CUE value into an EngineDefinition.
// The engine name is the value's struct label:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`engine: "super-blog": dependencies: services: ["store"]`)
//	def, err := CompileEngine(v.LookupPath(cue.ParsePath(`engine."super-blog"`)))
func CompileEngine(v cue.Value) (*ir.EngineDefinition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{Field: "engine", Message: "engine must be a struct", Pos: v.Pos()}
	}

	def := &ir.EngineDefinition{Name: lastLabel(v)}

	deps, err := parseDependencies(v)
	if err != nil {
		return nil, err
	}
	def.Dependencies = deps

	engines, err := parseEngines(v)
	if err != nil {
		return nil, err
	}
	def.Engines = engines

	return def, nil
}

// CompileHost parses a CUE value into a HostConfig.
//
//	host: {
//	    name: "app"
//	    services: ["store", "router"]
//	    engines: blog: dependencies: services: ["store", {"data-store": "store"}]
//	}
func CompileHost(v cue.Value) (*ir.HostConfig, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	host := &ir.HostConfig{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{Field: "name", Message: "host name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	host.Name = name

	servicesVal := v.LookupPath(cue.ParsePath("services"))
	if servicesVal.Exists() {
		iter, err := servicesVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return nil, &CompileError{Field: "services", Message: "host services must be strings", Pos: iter.Value().Pos()}
			}
			host.Services = append(host.Services, s)
		}
	}

	engines, err := parseEngines(v)
	if err != nil {
		return nil, err
	}
	host.Engines = engines

	return host, nil
}

// parseEngines reads an optional engines map. An absent field yields nil,
// which grants nothing.
func parseEngines(v cue.Value) (map[string]ir.HostEngineConfig, error) {
	enginesVal := v.LookupPath(cue.ParsePath("engines"))
	if !enginesVal.Exists() {
		return nil, nil
	}

	iter, err := enginesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	engines := make(map[string]ir.HostEngineConfig)
	for iter.Next() {
		deps, err := parseDependencies(iter.Value())
		if err != nil {
			return nil, err
		}
		engines[selectorName(iter.Selector())] = ir.HostEngineConfig{Dependencies: deps}
	}
	return engines, nil
}

// parseDependencies reads an optional dependencies.services list.
func parseDependencies(v cue.Value) (*ir.Dependencies, error) {
	depsVal := v.LookupPath(cue.ParsePath("dependencies"))
	if !depsVal.Exists() {
		return nil, nil
	}

	deps := &ir.Dependencies{}
	servicesVal := depsVal.LookupPath(cue.ParsePath("services"))
	if !servicesVal.Exists() {
		return deps, nil
	}

	iter, err := servicesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		entry, err := parseServiceEntry(iter.Value())
		if err != nil {
			return nil, err
		}
		deps.Services = append(deps.Services, entry)
	}
	return deps, nil
}

// parseServiceEntry accepts "name" or {"external": "internal"}.
func parseServiceEntry(v cue.Value) (ir.ServiceEntry, error) {
	if s, err := v.String(); err == nil {
		if s == "" {
			return ir.ServiceEntry{}, &CompileError{Field: "services", Message: "service name must be non-empty", Pos: v.Pos()}
		}
		return ir.Service(s), nil
	}

	if v.IncompleteKind() != cue.StructKind {
		return ir.ServiceEntry{}, &CompileError{
			Field:   "services",
			Message: fmt.Sprintf("service entry must be a string or a single-key alias, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return ir.ServiceEntry{}, formatCUEError(err)
	}
	pair := make(map[string]string)
	for iter.Next() {
		internal, err := iter.Value().String()
		if err != nil {
			return ir.ServiceEntry{}, &CompileError{Field: "services", Message: "alias target must be a string", Pos: iter.Value().Pos()}
		}
		pair[selectorName(iter.Selector())] = internal
	}

	entry, err := ir.ParseAliasPair(pair)
	if err != nil {
		return ir.ServiceEntry{}, &CompileError{Field: "services", Message: err.Error(), Pos: v.Pos()}
	}
	return entry, nil
}

func lastLabel(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return selectorName(sels[len(sels)-1])
}

// selectorName returns a field label without the quotes CUE adds to labels
// that are not identifiers, such as "super-blog".
func selectorName(sel cue.Selector) string {
	label := sel.String()
	if unquoted, err := strconv.Unquote(label); err == nil {
		return unquoted
	}
	return label
}

// Bundle is everything one specs directory declares.
type Bundle struct {
	Host    *ir.HostConfig
	Engines []ir.EngineDefinition
}

// Engine returns the definition registered as name.
func (b *Bundle) Engine(name string) (ir.EngineDefinition, bool) {
	for _, def := range b.Engines {
		if def.Name == name {
			return def, true
		}
	}
	return ir.EngineDefinition{}, false
}

// CompileBundle reads the top-level host and engine fields of v.
// Engines come back sorted by name. Compile errors are collected, not
// returned on the first failure.
func CompileBundle(v cue.Value) (*Bundle, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var errs []error
	bundle := &Bundle{}

	hostVal := v.LookupPath(cue.ParsePath("host"))
	if hostVal.Exists() {
		host, err := CompileHost(hostVal)
		if err != nil {
			errs = append(errs, err)
		} else {
			bundle.Host = host
		}
	}

	enginesVal := v.LookupPath(cue.ParsePath("engine"))
	if enginesVal.Exists() {
		iter, err := enginesVal.Fields()
		if err != nil {
			return bundle, append(errs, formatCUEError(err))
		}
		for iter.Next() {
			def, err := CompileEngine(iter.Value())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			bundle.Engines = append(bundle.Engines, *def)
		}
	}

	sort.Slice(bundle.Engines, func(i, j int) bool {
		return bundle.Engines[i].Name < bundle.Engines[j].Name
	})
	return bundle, errs
}
