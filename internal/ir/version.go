package ir

// Version constants for the definition schema and runtime.
const (
	// IRVersion is the definition schema version.
	IRVersion = "1"

	// RuntimeVersion is the enginehost runtime version.
	RuntimeVersion = "0.1.0"
)
