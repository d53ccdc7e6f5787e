package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/enginehost/internal/compiler"
	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/harness"
	"github.com/roach88/enginehost/internal/ir"
)

// loadBundle loads specsDir and fails on any compile error.
func loadBundle(formatter *OutputFormatter, specsDir string) (*compiler.Bundle, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if loadResult == nil || len(loadErrors) > 0 {
		return nil, outputLoadFailure(formatter, loadErrors)
	}
	return loadResult.Bundle, nil
}

// assembleHost creates a dry-run host for bundle: every host service is a
// stub and every engine definition is registered on the host.
func assembleHost(bundle *compiler.Bundle, opts ...engine.Option) (*harness.Fixture, error) {
	cfg := ir.HostConfig{Name: harness.DefaultHostName}
	if bundle.Host != nil {
		cfg = bundle.Host.Clone()
	}
	return harness.Assemble(cfg, probeDefinitions(bundle.Engines), opts...)
}

// probeDefinitions gives each engine a route hook that looks up every
// service it declares, so booting fails on the first one not granted.
func probeDefinitions(defs []ir.EngineDefinition) []engine.Definition {
	out := make([]engine.Definition, len(defs))
	for i, def := range defs {
		spec := harness.EngineSpec{EngineDefinition: def}
		for _, entry := range def.Dependencies.ServiceList() {
			spec.Lookups = append(spec.Lookups, container.ServiceKey(entry.External))
		}
		out[i] = spec.Definition()
	}
	return out
}

// splitEnginePath splits "admin/reports" into its engine names.
func splitEnginePath(path string) ([]string, error) {
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid engine path %q", path)
		}
	}
	return parts, nil
}

// buildPath builds each engine of path as a child of the previous one,
// starting from host. It returns the instances built before any failure.
func buildPath(ctx context.Context, host *engine.Instance, path []string) ([]*engine.Instance, error) {
	built := make([]*engine.Instance, 0, len(path))
	parent := host
	for _, name := range path {
		child, err := parent.BuildChildEngineInstance(ctx, name)
		if err != nil {
			return built, err
		}
		built = append(built, child)
		parent = child
	}
	return built, nil
}

// errorCode returns the engine error code of err, or E001.
func errorCode(err error) string {
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	return ErrCodeGeneric
}
