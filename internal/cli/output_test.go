package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"engine": "blog"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"engine": "blog"}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("DEFINITION_NOT_FOUND", "no engine named blog", []string{"store"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DEFINITION_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "no engine named blog", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("E005", "specs directory not found", "specs/"))
			assert.Contains(t, buf.String(), "Error [E005]: specs directory not found")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: specs/")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("Validating engine: %s", "blog")

	assert.Empty(t, out.String())
	assert.Equal(t, "Validating engine: blog\n", errOut.String())
	assert.Same(t, errOut, formatter.GetErrWriter())

	quiet := &OutputFormatter{Format: "text", Writer: out}
	quiet.VerboseLog("hidden")
	assert.Empty(t, out.String())
	assert.Same(t, out, quiet.GetErrWriter())
}

func TestOutputFormatter_RespondCarriesDataAndError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Respond("error", map[string]int{"failed": 1}, &CLIError{Code: "SETUP_FAILED", Message: "boom"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\n  \"status\": \"error\"")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, map[string]any{"failed": float64(1)}, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SETUP_FAILED", resp.Error.Code)
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ExitCommandError, ErrCodeNotFound, "specs directory not found: x", nil)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E005: specs directory not found: x", err.Error())
	assert.Contains(t, buf.String(), "Error [E005]")
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := WrapExitError(ExitCommandError, "failed to open database", cause)

	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("boot: %w", wrapped)))
	assert.Equal(t, ExitFailure, GetExitCode(cause))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to open database: disk full", wrapped.Error())
	assert.Equal(t, "nope", NewExitError(ExitFailure, "nope").Error())
}
