package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/naming"
)

// Builder creates instances. One Builder is shared by a host and every
// instance built beneath it, so they all report to the same sink and journal.
//
// Thread-safety: Builder is safe for concurrent use. Sibling builds only read
// their parent.
type Builder struct {
	sink    diag.Sink
	journal Journal
	clock   Sequencer
	ids     IDGenerator
	logger  *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithDiagnostics sets the deprecation sink. Default: diag.LogSink on the
// builder's logger.
func WithDiagnostics(sink diag.Sink) Option {
	return func(b *Builder) {
		b.sink = sink
	}
}

// WithJournal sets the lifecycle journal. Default: events are dropped.
func WithJournal(j Journal) Option {
	return func(b *Builder) {
		b.journal = j
	}
}

// WithClock sets the sequencer that stamps journal events.
func WithClock(c Sequencer) Option {
	return func(b *Builder) {
		b.clock = c
	}
}

// WithIDGenerator sets the instance ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *Builder) {
		b.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.sink == nil {
		b.sink = diag.LogSink{Logger: b.logger}
	}
	if b.journal == nil {
		b.journal = discardJournal{}
	}
	if b.clock == nil {
		b.clock = NewClock()
	}
	if b.ids == nil {
		b.ids = UUIDv7Generator{}
	}
	return b
}

// NewHost creates a root instance with its own empty container. Register
// host services and engine definitions on it before building engines.
//
// A nil cfg.Engines map is valid and grants nothing.
func NewHost(cfg ir.HostConfig, opts ...Option) (*Instance, error) {
	return NewBuilder(opts...).NewHost(cfg)
}

// NewHost creates a root instance that builds its engines with b.
func (b *Builder) NewHost(cfg ir.HostConfig, setup ...Initializer) (*Instance, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("host name is required")
	}
	for _, name := range ir.EngineNames(cfg.Engines) {
		if name == "" {
			return nil, fmt.Errorf("host %s: engines map has an empty key", cfg.Name)
		}
	}

	frozen := cfg.Clone()
	host := &Instance{
		id:        b.ids.Generate(),
		name:      frozen.Name,
		builder:   b,
		container: container.New(frozen.Name, b.logger),
		engines:   frozen.Engines,
		state:     StateBuilt,
	}
	if len(setup) > 0 {
		host.setup = make([]Initializer, len(setup))
		copy(host.setup, setup)
	}

	detail := ""
	if hash, err := ir.HostHash(frozen); err != nil {
		b.logger.Warn("host fingerprint failed", "host", frozen.Name, "error", err)
	} else {
		detail = "host=" + hash
	}
	b.record(context.Background(), host, ir.EventBuilt, detail)
	b.logger.Debug("host created", "host", host.name, "instance", host.id)
	return host, nil
}

// Build creates a child engine instance of parent for the engine requested.
//
// The child's container starts empty. Each service the engine declares and
// parent grants is delegated back to parent, so lookups return the parent's
// own value. Declared services the host did not grant are not a build error;
// looking them up on the child fails with UNSATISFIED_DEPENDENCY.
func (b *Builder) Build(ctx context.Context, parent *Instance, requested string) (*Instance, error) {
	if parent == nil {
		return nil, fmt.Errorf("build %q: parent instance is nil", requested)
	}
	if parent.State() == StateDestroyed {
		return nil, destroyedInstance(parent.name, "build a child engine of")
	}

	child := &Instance{
		id:      b.ids.Generate(),
		parent:  parent,
		builder: b,
		state:   StateBuilt,
	}
	// Deprecations are journaled against the child being built. A camel
	// request and a camel host key name the same pair, so one build reports
	// that pair once.
	warned := map[string]bool{}
	sink := diag.SinkFunc(func(d diag.Deprecation) {
		if d.ID == diag.IDCamelizedEngineName {
			if warned[d.Message] {
				return
			}
			warned[d.Message] = true
		}
		b.sink.Deprecate(d)
		b.record(ctx, child, ir.EventDeprecation, d.Message)
	})
	norm := Normalizer{Sink: sink}
	child.name = naming.Dasherize(requested)

	canonical, err := norm.Resolve(parent.container, requested)
	if err != nil {
		return nil, err
	}
	child.name = canonical

	def, err := parent.definition(canonical)
	if err != nil {
		return nil, err
	}
	child.def = def
	child.engines = def.Engines

	hostCfg := norm.HostConfig(parent.engines, canonical)
	child.grants = ResolveServiceMap(def.Dependencies.ServiceList(), hostCfg.Dependencies.ServiceList())

	child.container = container.New(canonical, b.logger)
	for _, g := range child.grants {
		if !g.Satisfied {
			b.record(ctx, child, ir.EventGrant, fmt.Sprintf("%s unsatisfied", container.ServiceKey(g.External)))
			b.logger.Debug("service not granted", "engine", canonical, "service", g.External)
			continue
		}
		if err := child.container.Delegate(container.ServiceKey(g.External), parent, container.ServiceKey(g.Internal)); err != nil {
			return nil, b.abandon(child, fmt.Errorf("delegate %s: %w", g.External, err))
		}
		b.record(ctx, child, ir.EventGrant, fmt.Sprintf("%s -> %s", container.ServiceKey(g.External), container.ServiceKey(g.Internal)))
		if grantsRouter(g) {
			sink.Deprecate(diag.HostRouterService())
		}
	}

	if def.Register != nil {
		if err := def.Register(child.container); err != nil {
			return nil, b.abandon(child, &Error{
				Code:    CodeInvalidDefinition,
				Message: "engine registrations failed",
				Engine:  canonical,
				Err:     err,
			})
		}
	}

	if err := parent.adopt(child); err != nil {
		return nil, b.abandon(child, err)
	}

	b.record(ctx, child, ir.EventBuilt, "definition="+def.Hash())
	b.logger.Debug("engine instance built",
		"engine", canonical,
		"instance", child.id,
		"parent", parent.id,
		"grants", len(child.grants),
	)
	return child, nil
}

// abandon tears down a half-built child's container and returns cause.
func (b *Builder) abandon(child *Instance, cause error) error {
	if child.container != nil {
		if err := child.container.Destroy(); err != nil && !errors.Is(err, container.ErrDestroyed) {
			b.logger.Warn("cleanup of unbuilt instance failed", "engine", child.name, "error", err)
		}
	}
	return cause
}

func (b *Builder) record(ctx context.Context, inst *Instance, kind ir.EventKind, detail string) {
	ev := ir.LifecycleEvent{
		Seq:        b.clock.Next(),
		InstanceID: inst.id,
		Engine:     inst.name,
		Kind:       kind,
		Detail:     detail,
	}
	if inst.parent != nil {
		ev.ParentID = inst.parent.id
	}
	if err := b.journal.Record(ctx, ev); err != nil {
		b.logger.Error("journal write failed", "kind", kind, "instance", inst.id, "error", err)
	}
}
