package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/engine"
	"github.com/roach88/enginehost/internal/testutil"
)

// Harness is the test execution engine for one scenario run.
type Harness struct {
	fixture  *Fixture
	journal  *engine.MemoryJournal
	recorder *diag.Recorder
	refs     map[string]*engine.Instance
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario gets a fresh host, journal, clock and ID sequence.
// The returned error reports a scenario that cannot run at all (a step names
// an unknown instance, or the host cannot be assembled); expectation and
// assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	h := &Harness{
		journal:  engine.NewMemoryJournal(),
		recorder: diag.NewRecorder(),
		logger:   testutil.DiscardLogger(),
	}

	defs := make([]engine.Definition, len(scenario.Engines))
	for i, spec := range scenario.Engines {
		defs[i] = spec.Definition()
	}
	fixture, err := Assemble(scenario.Host, defs,
		engine.WithDiagnostics(h.recorder),
		engine.WithJournal(h.journal),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithIDGenerator(engine.NewSequenceGenerator("inst")),
		engine.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble host: %w", err)
	}
	h.fixture = fixture
	h.refs = map[string]*engine.Instance{HostRef: fixture.Host}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, ev := range h.journal.Events() {
		result.AddEvent(ev)
	}
	result.Deprecations = append(result.Deprecations, h.recorder.Messages()...)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) instance(ref string) (*engine.Instance, error) {
	inst, ok := h.refs[ref]
	if !ok {
		return nil, fmt.Errorf("unknown instance %q", ref)
	}
	return inst, nil
}

// executeStep runs one step and checks its outcome against step.Expect.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	op, target := step.Op()
	var stepErr error

	switch op {
	case OpBuild:
		parent, err := h.instance(step.on())
		if err != nil {
			return err
		}
		child, err := parent.BuildChildEngineInstance(ctx, step.Build)
		stepErr = err
		if err == nil {
			name := step.As
			if name == "" {
				name = step.Build
			}
			h.refs[name] = child
		}

	case OpBoot:
		inst, err := h.instance(step.Boot)
		if err != nil {
			return err
		}
		stepErr = inst.Boot(ctx)

	case OpDestroy:
		inst, err := h.instance(step.Destroy)
		if err != nil {
			return err
		}
		stepErr = inst.Destroy(ctx)

	case OpLookup:
		inst, err := h.instance(step.on())
		if err != nil {
			return err
		}
		target = step.on() + " " + step.Lookup
		value, err := inst.Lookup(step.Lookup)
		stepErr = err
		if err == nil && step.SameAs != nil {
			if msg := h.checkSameAs(value, step.SameAs); msg != "" {
				result.AddError(fmt.Sprintf("step %d (lookup %s): %s", index, target, msg))
			}
		}

	default:
		return fmt.Errorf("no operation")
	}

	outcome := outcomeOf(stepErr)
	result.Steps = append(result.Steps, StepOutcome{Index: index, Op: op, Target: target, Outcome: outcome})
	h.logger.Info("step completed", "step", index, "op", op, "target", target, "outcome", outcome)

	expected := step.Expect
	if expected == "" {
		expected = OutcomeOK
	}
	if outcome != expected {
		msg := fmt.Sprintf("step %d (%s %s): expected %s, got %s", index, op, target, expected, outcome)
		if stepErr != nil {
			msg += ": " + stepErr.Error()
		}
		result.AddError(msg)
	}
	return nil
}

func (h *Harness) checkSameAs(value any, ref *Ref) string {
	other, err := h.instance(ref.On)
	if err != nil {
		return err.Error()
	}
	want, err := other.Lookup(ref.Key)
	if err != nil {
		return fmt.Sprintf("same_as %s %s: %v", ref.On, ref.Key, err)
	}
	if value != want {
		return fmt.Sprintf("expected the value %s resolves for %s, got %v", ref.On, ref.Key, value)
	}
	return ""
}

// outcomeOf maps a step error to its outcome string.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
