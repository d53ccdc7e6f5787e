package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginehost/internal/ir"
)

func TestSnapshot_MarshalIsCanonical(t *testing.T) {
	result := NewResult()
	result.AddEvent(ir.LifecycleEvent{Seq: 1, InstanceID: "inst-1", Engine: "app", Kind: ir.EventBuilt, Detail: "host=abc"})
	result.AddEvent(ir.LifecycleEvent{Seq: 2, InstanceID: "inst-2", ParentID: "inst-1", Engine: "blog", Kind: ir.EventBooting})
	result.Steps = append(result.Steps, StepOutcome{Index: 0, Op: OpBoot, Target: "blog", Outcome: OutcomeOK})

	data, err := Snapshot("tiny", result).Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"deprecations":[],"scenario_name":"tiny","steps":[{"index":0,"op":"boot","outcome":"ok","target":"blog"}],`+
			`"trace":[{"detail":"host","engine":"app","instance":"inst-1","kind":"built","seq":1},`+
			`{"engine":"blog","instance":"inst-2","kind":"booting","parent":"inst-1","seq":2}]}`,
		string(data))
}

func TestResult_AddEventKeepsNonBuiltDetail(t *testing.T) {
	result := NewResult()
	result.AddEvent(ir.LifecycleEvent{Seq: 3, Kind: ir.EventGrant, Detail: "service:a -> service:b"})
	result.AddEvent(ir.LifecycleEvent{Seq: 4, Kind: ir.EventBuilt, Detail: "definition=0123"})

	assert.Equal(t, "service:a -> service:b", result.Trace[0].Detail)
	assert.Equal(t, "definition", result.Trace[1].Detail)
}

func TestResult_AddError(t *testing.T) {
	result := NewResult()
	assert.True(t, result.Pass)

	result.AddError("boom")
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"boom"}, result.Errors)
}
