package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/ir"
)

// Scenario defines a conformance test scenario: a host, the engines it can
// build, and a sequence of lifecycle steps with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Host configures the root instance. An empty name defaults to "app".
	Host ir.HostConfig `yaml:"host"`

	// Engines are registered on the host before the first step.
	Engines []EngineSpec `yaml:"engines"`

	// Steps run in order against the instance tree.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// EngineSpec is an engine definition plus the boot behavior the harness
// attaches to it.
type EngineSpec struct {
	ir.EngineDefinition `yaml:",inline"`

	// Lookups are container keys the route hook resolves during boot. A
	// failed lookup fails the boot.
	Lookups []string `yaml:"lookups,omitempty"`

	// Initializers name setup steps run after the route hook.
	Initializers []string `yaml:"initializers,omitempty"`

	// Fail names the initializer that returns an error.
	Fail string `yaml:"fail,omitempty"`
}

// Step is one lifecycle operation. Exactly one of Build, Boot, Destroy and
// Lookup is set.
type Step struct {
	// Build is the engine name to request, camelCase allowed.
	Build string `yaml:"build,omitempty"`

	// Boot names the instance to boot.
	Boot string `yaml:"boot,omitempty"`

	// Destroy names the instance to destroy.
	Destroy string `yaml:"destroy,omitempty"`

	// Lookup is the container key to resolve on the instance named by On.
	Lookup string `yaml:"lookup,omitempty"`

	// On names the parent for a build, or the instance for a lookup.
	// Defaults to "host".
	On string `yaml:"on,omitempty"`

	// As names the instance a build produces. Defaults to Build.
	As string `yaml:"as,omitempty"`

	// SameAs asserts that a lookup returns the identical value another
	// instance resolves.
	SameAs *Ref `yaml:"same_as,omitempty"`

	// Expect is "ok" (the default) or the error code the step must fail with.
	Expect string `yaml:"expect,omitempty"`
}

// Ref points at one key on one instance.
type Ref struct {
	On  string `yaml:"on"`
	Key string `yaml:"key"`
}

// Step operations.
const (
	OpBuild   = "build"
	OpBoot    = "boot"
	OpDestroy = "destroy"
	OpLookup  = "lookup"
)

// HostRef is the instance name that always refers to the root.
const HostRef = "host"

// Op returns the step's operation and its target.
func (s Step) Op() (op, target string) {
	switch {
	case s.Build != "":
		return OpBuild, s.Build
	case s.Boot != "":
		return OpBoot, s.Boot
	case s.Destroy != "":
		return OpDestroy, s.Destroy
	case s.Lookup != "":
		return OpLookup, s.Lookup
	}
	return "", ""
}

func (s Step) on() string {
	if s.On == "" {
		return HostRef
	}
	return s.On
}

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "deprecations": Messages equals the emitted messages
	// - "deprecation_count": Message was emitted exactly Count times
	// - "state": Instance is in State
	// - "events": the journal recorded exactly Kinds for Instance
	Type string `yaml:"type"`

	Messages []string `yaml:"messages,omitempty"`
	Message  string   `yaml:"message,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Instance string   `yaml:"instance,omitempty"`
	State    string   `yaml:"state,omitempty"`
	Kinds    []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertDeprecations     = "deprecations"
	AssertDeprecationCount = "deprecation_count"
	AssertState            = "state"
	AssertEvents           = "events"
)

var knownCodes = []string{
	OutcomeOK,
	string(engine.CodeDefinitionNotFound),
	string(engine.CodeUnsatisfiedDependency),
	string(engine.CodeInvalidState),
	string(engine.CodeDestroyedInstance),
	string(engine.CodeSetupFailed),
	string(engine.CodeInvalidDefinition),
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Engines))
	for i, spec := range s.Engines {
		if spec.Name == "" {
			return fmt.Errorf("engines[%d]: name is required", i)
		}
		if seen[spec.Name] {
			return fmt.Errorf("engines[%d]: engine %q declared twice", i, spec.Name)
		}
		seen[spec.Name] = true
		if spec.Fail != "" && !slices.Contains(spec.Initializers, spec.Fail) {
			return fmt.Errorf("engines[%d]: fail names %q, which is not an initializer", i, spec.Fail)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s Step) error {
	set := 0
	for _, v := range []string{s.Build, s.Boot, s.Destroy, s.Lookup} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of build, boot, destroy, lookup is required", index)
	}

	op, _ := s.Op()
	if s.As != "" && op != OpBuild {
		return fmt.Errorf("steps[%d]: as is only valid on build", index)
	}
	if s.SameAs != nil {
		if op != OpLookup {
			return fmt.Errorf("steps[%d]: same_as is only valid on lookup", index)
		}
		if s.SameAs.On == "" || s.SameAs.Key == "" {
			return fmt.Errorf("steps[%d].same_as: on and key are required", index)
		}
	}
	if s.Expect != "" && !slices.Contains(knownCodes, s.Expect) {
		return fmt.Errorf("steps[%d]: unknown expectation %q", index, s.Expect)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDeprecations:
		// An empty list asserts that nothing was deprecated.
	case AssertDeprecationCount:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for deprecation_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for deprecation_count", index)
		}
	case AssertState:
		if a.Instance == "" || a.State == "" {
			return fmt.Errorf("assertions[%d]: instance and state are required for state", index)
		}
	case AssertEvents:
		if a.Instance == "" {
			return fmt.Errorf("assertions[%d]: instance is required for events", index)
		}
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for events", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
