package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/naming"
)

// Validation error codes (E120-E139)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// EngineDefinition errors (E120-E124)
	ErrEngineNameInvalid   = "E120" // name missing or not kebab-case
	ErrEngineSideAlias     = "E121" // alias entry on the engine side
	ErrDuplicateService    = "E122" // service declared twice
	ErrEmptyServiceName    = "E123" // empty service name
	ErrNestedEngineInvalid = "E124" // nested engine grant with a bad key

	// HostConfig errors (E125-E129)
	ErrHostNameMissing = "E125" // host name is required

	// Cross-checks between host and engines (E130-E139), reported as warnings
	WarnCamelizedHostKey      = "E130" // engines map keyed by camelCase name
	WarnUnsatisfiedDependency = "E131" // engine declares a service the host does not grant
	WarnUnknownHostService    = "E132" // grant names a service the host does not list
	WarnUnknownEngine         = "E133" // grant for an engine with no definition
	WarnRouterGrant           = "E134" // host shares its router service
)

// Severity of a validation finding.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a schema validation error or warning.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Line     int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the finding is non-fatal.
func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports EngineDefinition and HostConfig.
func Validate(v any) []ValidationError {
	switch x := v.(type) {
	case *ir.EngineDefinition:
		return validateEngine(x)
	case ir.EngineDefinition:
		return validateEngine(&x)
	case *ir.HostConfig:
		return validateHost(x)
	case ir.HostConfig:
		return validateHost(&x)
	default:
		return []ValidationError{{
			Field:    "type",
			Message:  fmt.Sprintf("unsupported IR type: %T", v),
			Code:     ErrUnsupportedIRType,
			Severity: SeverityError,
		}}
	}
}

func validateEngine(def *ir.EngineDefinition) []ValidationError {
	var errs []ValidationError
	field := "engine." + def.Name

	// E120: kebab-case name
	if !naming.IsKebab(def.Name) {
		msg := "engine name is required"
		if def.Name != "" {
			msg = fmt.Sprintf("engine name %q must be kebab-case (did you mean %q?)", def.Name, naming.Dasherize(def.Name))
		}
		errs = append(errs, fail(field, msg, ErrEngineNameInvalid))
	}

	seen := make(map[string]bool)
	for i, entry := range def.Dependencies.ServiceList() {
		at := fmt.Sprintf("%s.dependencies.services[%d]", field, i)
		switch {
		case entry.Aliased:
			errs = append(errs, fail(at, fmt.Sprintf("alias %s is only allowed in host engine grants", entry), ErrEngineSideAlias))
		case strings.TrimSpace(entry.External) == "":
			errs = append(errs, fail(at, "service name must be non-empty", ErrEmptyServiceName))
		case seen[entry.External]:
			errs = append(errs, fail(at, fmt.Sprintf("service %q declared twice", entry.External), ErrDuplicateService))
		}
		seen[entry.External] = true
	}

	errs = append(errs, validateGrants(field, def.Engines)...)
	return errs
}

func validateHost(host *ir.HostConfig) []ValidationError {
	var errs []ValidationError

	// E125: host name
	if strings.TrimSpace(host.Name) == "" {
		errs = append(errs, fail("host.name", "host name is required", ErrHostNameMissing))
	}

	errs = append(errs, validateGrants("host", host.Engines)...)
	return errs
}

func validateGrants(owner string, engines map[string]ir.HostEngineConfig) []ValidationError {
	var errs []ValidationError
	for _, name := range ir.EngineNames(engines) {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fail(owner+".engines", "engine grant key must be non-empty", ErrNestedEngineInvalid))
			continue
		}
		for i, entry := range engines[name].Dependencies.ServiceList() {
			if entry.External == "" || entry.Internal == "" {
				errs = append(errs, fail(
					fmt.Sprintf("%s.engines.%s.dependencies.services[%d]", owner, name, i),
					"service name must be non-empty", ErrEmptyServiceName))
			}
		}
	}
	return errs
}

// CrossValidate compares a host against the engines it may build and
// returns warnings. None of these stop a build: unsatisfied declarations
// only fail when looked up, and camelCase keys and router grants still work
// with a deprecation.
func CrossValidate(host *ir.HostConfig, defs []ir.EngineDefinition) []ValidationError {
	if host == nil {
		return nil
	}
	var warns []ValidationError

	defined := make(map[string]ir.EngineDefinition, len(defs))
	for _, def := range defs {
		defined[def.Name] = def
	}

	hostServices := make(map[string]bool, len(host.Services))
	for _, s := range host.Services {
		hostServices[s] = true
	}

	for _, key := range ir.EngineNames(host.Engines) {
		field := "host.engines." + key
		canonical := key
		if kebab := naming.Dasherize(key); kebab != key {
			if _, ok := defined[kebab]; ok {
				canonical = kebab
				warns = append(warns, warn(field,
					fmt.Sprintf("engines map is keyed by %q; use %q", key, kebab),
					WarnCamelizedHostKey))
			}
		}
		if _, ok := defined[canonical]; !ok {
			warns = append(warns, warn(field,
				fmt.Sprintf("no engine definition for %q", key), WarnUnknownEngine))
		}

		for _, entry := range host.Engines[key].Dependencies.ServiceList() {
			if len(hostServices) > 0 && !hostServices[entry.Internal] {
				warns = append(warns, warn(field,
					fmt.Sprintf("grants service %q which the host does not provide", entry.Internal),
					WarnUnknownHostService))
			}
			if entry.External == engine.RouterService {
				warns = append(warns, warn(field,
					"sharing the host's router service is deprecated; use 'hostRouter' or 'appRouter'",
					WarnRouterGrant))
			}
		}
	}

	// Engines only ever built inside another engine are checked against
	// that engine's grants instead of the host's.
	nestedIn := make(map[string][]ir.EngineDefinition)
	for _, def := range defs {
		for _, key := range ir.EngineNames(def.Engines) {
			nestedIn[naming.Dasherize(key)] = append(nestedIn[naming.Dasherize(key)], def)
		}
	}

	for _, def := range defs {
		if parents := nestedIn[def.Name]; len(parents) > 0 && !hasEngineKey(host.Engines, def.Name) {
			for _, parent := range parents {
				warns = append(warns, unsatisfied(def, parent.Engines, fmt.Sprintf("engine %q", parent.Name))...)
			}
			continue
		}
		warns = append(warns, unsatisfied(def, host.Engines, fmt.Sprintf("host %q", host.Name))...)
	}

	return warns
}

func hasEngineKey(engines map[string]ir.HostEngineConfig, name string) bool {
	if _, ok := engines[name]; ok {
		return true
	}
	_, ok := engines[naming.Camelize(name)]
	return ok
}

// unsatisfied warns for each service def declares that grantor's engines
// map does not grant.
func unsatisfied(def ir.EngineDefinition, engines map[string]ir.HostEngineConfig, grantor string) []ValidationError {
	var warns []ValidationError
	cfg := engine.Normalizer{}.HostConfig(engines, def.Name)
	grants := engine.ResolveServiceMap(def.Dependencies.ServiceList(), cfg.Dependencies.ServiceList())
	for _, name := range engine.UnsatisfiedServices(grants) {
		warns = append(warns, warn("engine."+def.Name,
			fmt.Sprintf("declares service %q but %s does not grant it; lookups will fail", name, grantor),
			WarnUnsatisfiedDependency))
	}
	return warns
}

func fail(field, msg, code string) ValidationError {
	return ValidationError{Field: field, Message: msg, Code: code, Severity: SeverityError}
}

func warn(field, msg, code string) ValidationError {
	return ValidationError{Field: field, Message: msg, Code: code, Severity: SeverityWarning}
}
