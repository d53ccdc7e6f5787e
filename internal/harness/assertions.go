package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s\n", ev.Seq, ev.Engine, ev.Kind, ev.Detail)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, h *Harness) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertDeprecations:
			err = assertDeprecations(result, a)
		case AssertDeprecationCount:
			err = assertDeprecationCount(result, a)
		case AssertState:
			err = h.assertState(a)
		case AssertEvents:
			err = h.assertEvents(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func assertDeprecations(result *Result, a Assertion) error {
	want := a.Messages
	if want == nil {
		want = []string{}
	}
	if slices.Equal(result.Deprecations, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDeprecations,
		Expected: fmt.Sprintf("%q", want),
		Actual:   fmt.Sprintf("%q", result.Deprecations),
	}
}

func assertDeprecationCount(result *Result, a Assertion) error {
	n := 0
	for _, msg := range result.Deprecations {
		if msg == a.Message {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertDeprecationCount,
		Expected: fmt.Sprintf("%d x %q", a.Count, a.Message),
		Actual:   fmt.Sprintf("%d occurrences", n),
	}
}

func (h *Harness) assertState(a Assertion) error {
	inst, err := h.instance(a.Instance)
	if err != nil {
		return err
	}
	if got := inst.State().String(); got != a.State {
		return &AssertionError{
			Type:     AssertState,
			Expected: fmt.Sprintf("%s in state %s", a.Instance, a.State),
			Actual:   got,
		}
	}
	return nil
}

func (h *Harness) assertEvents(result *Result, a Assertion) error {
	inst, err := h.instance(a.Instance)
	if err != nil {
		return err
	}
	var kinds []string
	for _, ev := range result.Trace {
		if ev.Instance == inst.ID() {
			kinds = append(kinds, ev.Kind)
		}
	}
	if slices.Equal(kinds, a.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertEvents,
		Expected: fmt.Sprintf("%s events %v", a.Instance, a.Kinds),
		Actual:   fmt.Sprintf("%v", kinds),
		Trace:    result.Trace,
	}
}
