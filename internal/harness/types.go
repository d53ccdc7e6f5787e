package harness

import (
	"strings"

	"github.com/roach88/enginehost/internal/ir"
)

// TraceEvent is one journal event as it appears in a golden trace.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Instance string `json:"instance"`
	Parent   string `json:"parent,omitempty"`
	Engine   string `json:"engine"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail,omitempty"`
}

// StepOutcome records what one step did.
type StepOutcome struct {
	Index   int    `json:"index"`
	Op      string `json:"op"`
	Target  string `json:"target"`
	Outcome string `json:"outcome"`
}

// OutcomeOK is the outcome of a step that returned no error.
const OutcomeOK = "ok"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace holds the journal events in sequence order.
	Trace []TraceEvent `json:"trace"`

	// Steps holds one outcome per executed step.
	Steps []StepOutcome `json:"steps"`

	// Deprecations holds every deprecation message, in emission order.
	Deprecations []string `json:"deprecations"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Trace:        []TraceEvent{},
		Steps:        []StepOutcome{},
		Deprecations: []string{},
		Errors:       []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a journal event to the trace. Fingerprints in built
// details are elided so traces survive changes to the hash inputs.
func (r *Result) AddEvent(ev ir.LifecycleEvent) {
	detail := ev.Detail
	if ev.Kind == ir.EventBuilt {
		if prefix, _, ok := strings.Cut(detail, "="); ok {
			detail = prefix
		}
	}
	r.Trace = append(r.Trace, TraceEvent{
		Seq:      ev.Seq,
		Instance: ev.InstanceID,
		Parent:   ev.ParentID,
		Engine:   ev.Engine,
		Kind:     string(ev.Kind),
		Detail:   detail,
	})
}
