// Package diag carries deprecation diagnostics from the engine runtime to
// whoever is listening.
//
// Diagnostics are never errors. A Sink is passed explicitly to the code that
// produces them, so a test can assert on exactly the messages one call
// produced without a shared global log.
package diag

import (
	"fmt"
	"log/slog"
	"sync"
)

// Deprecation identifiers.
const (
	IDCamelizedEngineName = "enginehost.camelized-engine-name"
	IDHostRouterService   = "enginehost.host-router-service"
)

// Deprecation is one diagnostic produced by the runtime.
type Deprecation struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// CamelizedEngineName reports a camelCase engine name that resolved to its
// kebab-case registration.
func CamelizedEngineName(kebab, camel string) Deprecation {
	return Deprecation{
		ID:      IDCamelizedEngineName,
		Message: fmt.Sprintf("Support for camelized engine names has been deprecated. Please use '%s' instead of '%s'.", kebab, camel),
	}
}

// HostRouterService reports an engine receiving the host's "router" service.
func HostRouterService() Deprecation {
	return Deprecation{
		ID:      IDHostRouterService,
		Message: "Support for the host's router service has been deprecated. Please use a different name as 'hostRouter' or 'appRouter' instead of 'router'.",
	}
}

// Sink receives deprecations. Implementations must be safe for concurrent use.
type Sink interface {
	Deprecate(d Deprecation)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Deprecation)

// Deprecate calls f(d).
func (f SinkFunc) Deprecate(d Deprecation) { f(d) }

// Discard drops every deprecation.
var Discard Sink = SinkFunc(func(Deprecation) {})

// Multi fans one deprecation out to several sinks, in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(d Deprecation) {
		for _, s := range sinks {
			if s != nil {
				s.Deprecate(d)
			}
		}
	})
}

// LogSink writes deprecations as slog warnings.
type LogSink struct {
	Logger *slog.Logger
}

// Deprecate logs d at warn level.
func (s LogSink) Deprecate(d Deprecation) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("DEPRECATION: "+d.Message, "id", d.ID)
}

// Recorder collects deprecations in arrival order.
type Recorder struct {
	mu   sync.Mutex
	list []Deprecation
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Deprecate records d.
func (r *Recorder) Deprecate(d Deprecation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, d)
}

// All returns a copy of every recorded deprecation.
func (r *Recorder) All() []Deprecation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Deprecation, len(r.list))
	copy(out, r.list)
	return out
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.list))
	for i, d := range r.list {
		out[i] = d.Message
	}
	return out
}

// Count returns how many times message was recorded.
func (r *Recorder) Count(message string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.list {
		if d.Message == message {
			n++
		}
	}
	return n
}

// Includes reports whether message was recorded at least once.
func (r *Recorder) Includes(message string) bool {
	return r.Count(message) > 0
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = nil
}
