package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runInline(t *testing.T, yaml string) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

const camelBuild = `
name: camel_build
description: "one camelized request"
host:
  name: app
engines:
  - name: admin-panel
steps:
  - build: adminPanel
    as: panel
`

func TestAssertions_Pass(t *testing.T) {
	result := runInline(t, camelBuild+`
assertions:
  - type: deprecations
    messages:
      - "Support for camelized engine names has been deprecated. Please use 'admin-panel' instead of 'adminPanel'."
  - type: deprecation_count
    message: "Support for camelized engine names has been deprecated. Please use 'admin-panel' instead of 'adminPanel'."
    count: 1
  - type: state
    instance: panel
    state: built
  - type: events
    instance: panel
    kinds: [deprecation, built]
`)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion string
		wantErr   string
	}{
		{
			name:      "deprecations differ",
			assertion: "  - type: deprecations\n    messages: []\n",
			wantErr:   "Assertion failed: deprecations",
		},
		{
			name:      "deprecation count differs",
			assertion: "  - type: deprecation_count\n    message: nope\n    count: 1\n",
			wantErr:   "0 occurrences",
		},
		{
			name:      "state differs",
			assertion: "  - type: state\n    instance: panel\n    state: booted\n",
			wantErr:   "panel in state booted",
		},
		{
			name:      "events differ",
			assertion: "  - type: events\n    instance: panel\n    kinds: [built]\n",
			wantErr:   "Full trace:",
		},
		{
			name:      "unknown instance",
			assertion: "  - type: state\n    instance: ghost\n    state: built\n",
			wantErr:   `unknown instance "ghost"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runInline(t, camelBuild+"assertions:\n"+tt.assertion)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "assertions[0]")
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertEvents,
		Expected: "blog events [built]",
		Actual:   "[]",
		Trace:    []TraceEvent{{Seq: 1, Engine: "app", Kind: "built", Detail: "host"}},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: events")
	assert.Contains(t, msg, "Expected: blog events [built]")
	assert.Contains(t, msg, "[1] app built host")
}
