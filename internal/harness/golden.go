package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/enginehost/internal/ir"
)

// TraceSnapshot captures what a scenario run produced, serialized as
// canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Steps        []StepOutcome
	Deprecations []string
}

// toCanonicalMap converts a TraceSnapshot to the map shape ir.MarshalCanonical
// accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":      ev.Seq,
			"instance": ev.Instance,
			"engine":   ev.Engine,
			"kind":     ev.Kind,
		}
		if ev.Parent != "" {
			m["parent"] = ev.Parent
		}
		if ev.Detail != "" {
			m["detail"] = ev.Detail
		}
		trace[i] = m
	}

	steps := make([]any, len(s.Steps))
	for i, st := range s.Steps {
		steps[i] = map[string]any{
			"index":   st.Index,
			"op":      st.Op,
			"target":  st.Target,
			"outcome": st.Outcome,
		}
	}

	deprecations := make([]any, len(s.Deprecations))
	for i, msg := range s.Deprecations {
		deprecations[i] = msg
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"steps":         steps,
		"deprecations":  deprecations,
	}
}

// Marshal returns the snapshot's canonical JSON.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// Snapshot captures result for scenarioName.
func Snapshot(scenarioName string, result *Result) *TraceSnapshot {
	return &TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Steps:        result.Steps,
		Deprecations: result.Deprecations,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
