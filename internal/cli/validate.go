package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/enginehost/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Engines  int                        `json:"engines"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate host and engine definitions",
		Long: `Validate the CUE host and engine definitions in a directory.

Errors (exit code 1) are definitions the runtime would reject: engine
names that are not kebab-case, aliases on the engine side, duplicate or
empty service names. Warnings never fail validation: camelCase keys in
a host's engines map, services an engine declares but the host does
not grant, grants of services the host does not list, and sharing the
host's router service.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		return outputLoadFailure(formatter, loadErrors)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := ValidationResult{Engines: len(loadResult.Bundle.Engines)}
	for _, err := range loadErrors {
		result.Errors = append(result.Errors, loadErrorFinding(err))
	}
	for _, finding := range validateBundle(loadResult.Bundle, formatter) {
		if finding.IsWarning() {
			result.Warnings = append(result.Warnings, finding)
		} else {
			result.Errors = append(result.Errors, finding)
		}
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateBundle runs schema validation on every compiled definition, then
// cross-checks the host against the engines.
func validateBundle(bundle *compiler.Bundle, formatter *OutputFormatter) []compiler.ValidationError {
	var findings []compiler.ValidationError

	if bundle.Host != nil {
		formatter.VerboseLog("Validating host: %s", bundle.Host.Name)
		findings = append(findings, compiler.Validate(bundle.Host)...)
	}
	for i := range bundle.Engines {
		formatter.VerboseLog("Validating engine: %s", bundle.Engines[i].Name)
		findings = append(findings, compiler.Validate(&bundle.Engines[i])...)
	}
	findings = append(findings, compiler.CrossValidate(bundle.Host, bundle.Engines)...)
	return findings
}

func loadErrorFinding(err error) compiler.ValidationError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return compiler.ValidationError{
			Field:    "load",
			Message:  loadErr.Message,
			Code:     loadErr.Code,
			Severity: compiler.SeverityError,
			Line:     lineOf(loadErr.Pos),
		}
	}
	return compiler.ValidationError{
		Field:    "load",
		Message:  err.Error(),
		Code:     ErrCodeGeneric,
		Severity: compiler.SeverityError,
	}
}

// outputLoadFailure reports a directory that could not be loaded at all.
func outputLoadFailure(formatter *OutputFormatter, errs []error) error {
	if len(errs) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "specs could not be loaded", nil)
	}
	var loadErr *LoadError
	if errors.As(errs[0], &loadErr) {
		return formatter.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, errs[0].Error(), nil)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ All specs valid")
	writeFindings(formatter.Writer, "warning(s)", result.Warnings)
	return nil
}

// outputValidationErrors outputs validation errors and warnings.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.Format == "json" {
		if err := formatter.Respond("error", result, &CLIError{
			Code:    result.Errors[0].Code,
			Message: result.Errors[0].Message,
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	writeFindings(formatter.Writer, "error(s)", result.Errors)
	writeFindings(formatter.Writer, "warning(s)", result.Warnings)
	return exitErr
}

func writeFindings(w io.Writer, label string, findings []compiler.ValidationError) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d %s:\n", len(findings), label)
	for _, f := range findings {
		if f.Line > 0 {
			fmt.Fprintf(w, "  %s line %d %s: %s\n", f.Code, f.Line, f.Field, f.Message)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", f.Code, f.Field, f.Message)
	}
}

// ValidateSpecsDir validates all specs in a directory and returns every
// finding, warnings included.
func ValidateSpecsDir(specsDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		if len(loadErrors) > 0 {
			return nil, loadErrors[0]
		}
		return nil, fmt.Errorf("specs could not be loaded: %s", specsDir)
	}

	var findings []compiler.ValidationError
	for _, err := range loadErrors {
		findings = append(findings, loadErrorFinding(err))
	}
	silent := &OutputFormatter{Format: "text", Writer: io.Discard}
	return append(findings, validateBundle(loadResult.Bundle, silent)...), nil
}
