package engine

import (
	"errors"
	"fmt"
)

// Error represents a failure raised by the engine runtime.
//
// Errors carry a code for programmatic handling plus the engine and
// registration key involved, when known. Deprecations are never errors; they
// go to the diagnostics sink instead.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Engine is the canonical (or requested) engine name involved.
	Engine string

	// Key is the registration key involved, if any.
	Key string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes runtime errors.
type ErrorCode string

const (
	// CodeDefinitionNotFound: no engine definition under the requested name
	// or its kebab-case form.
	CodeDefinitionNotFound ErrorCode = "DEFINITION_NOT_FOUND"

	// CodeUnsatisfiedDependency: a declared service the host did not grant
	// was looked up.
	CodeUnsatisfiedDependency ErrorCode = "UNSATISFIED_DEPENDENCY"

	// CodeInvalidState: a lifecycle operation was called in the wrong state.
	CodeInvalidState ErrorCode = "INVALID_STATE"

	// CodeDestroyedInstance: the instance has been destroyed.
	CodeDestroyedInstance ErrorCode = "DESTROYED_INSTANCE"

	// CodeSetupFailed: a route hook or initializer failed during boot.
	CodeSetupFailed ErrorCode = "SETUP_FAILED"

	// CodeInvalidDefinition: an engine definition was rejected at registration.
	CodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrDefinitionNotFound    = &Error{Code: CodeDefinitionNotFound}
	ErrUnsatisfiedDependency = &Error{Code: CodeUnsatisfiedDependency}
	ErrInvalidState          = &Error{Code: CodeInvalidState}
	ErrDestroyedInstance     = &Error{Code: CodeDestroyedInstance}
	ErrSetupFailed           = &Error{Code: CodeSetupFailed}
	ErrInvalidDefinition     = &Error{Code: CodeInvalidDefinition}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	out := fmt.Sprintf("%s: %s", e.Code, msg)
	switch {
	case e.Engine != "" && e.Key != "":
		out += fmt.Sprintf(" (engine=%s, key=%s)", e.Engine, e.Key)
	case e.Engine != "":
		out += fmt.Sprintf(" (engine=%s)", e.Engine)
	case e.Key != "":
		out += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Err != nil {
		out += ": " + e.Err.Error()
	}
	return out
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsDefinitionNotFound returns true if err is a DEFINITION_NOT_FOUND error.
func IsDefinitionNotFound(err error) bool { return CodeOf(err) == CodeDefinitionNotFound }

// IsUnsatisfiedDependency returns true if err is an UNSATISFIED_DEPENDENCY error.
func IsUnsatisfiedDependency(err error) bool { return CodeOf(err) == CodeUnsatisfiedDependency }

// IsInvalidState returns true if err is an INVALID_STATE error.
func IsInvalidState(err error) bool { return CodeOf(err) == CodeInvalidState }

// IsDestroyedInstance returns true if err is a DESTROYED_INSTANCE error.
func IsDestroyedInstance(err error) bool { return CodeOf(err) == CodeDestroyedInstance }

// IsSetupFailed returns true if err is a SETUP_FAILED error.
func IsSetupFailed(err error) bool { return CodeOf(err) == CodeSetupFailed }

// IsInvalidDefinition returns true if err is an INVALID_DEFINITION error.
func IsInvalidDefinition(err error) bool { return CodeOf(err) == CodeInvalidDefinition }

func definitionNotFound(requested string) *Error {
	return &Error{
		Code:    CodeDefinitionNotFound,
		Message: fmt.Sprintf("no engine definition registered for %q", requested),
		Engine:  requested,
		Key:     "engine:" + requested,
	}
}

func unsatisfiedDependency(engineName, service string) *Error {
	return &Error{
		Code:    CodeUnsatisfiedDependency,
		Message: fmt.Sprintf("service %q was declared but not granted by the host", service),
		Engine:  engineName,
		Key:     "service:" + service,
	}
}

func invalidState(engineName, op string, state State) *Error {
	return &Error{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("cannot %s an instance in state %s", op, state),
		Engine:  engineName,
	}
}

func destroyedInstance(engineName, op string) *Error {
	return &Error{
		Code:    CodeDestroyedInstance,
		Message: fmt.Sprintf("cannot %s a destroyed instance", op),
		Engine:  engineName,
	}
}

func setupFailed(engineName, step string, cause error) *Error {
	return &Error{
		Code:    CodeSetupFailed,
		Message: fmt.Sprintf("setup step %q failed", step),
		Engine:  engineName,
		Err:     cause,
	}
}

func invalidDefinition(engineName, msg string) *Error {
	return &Error{
		Code:    CodeInvalidDefinition,
		Message: msg,
		Engine:  engineName,
	}
}
