package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/ir"
	"github.com/roach88/enginehost/internal/testutil"
)

// service is a host-owned value whose identity tests compare.
type service struct {
	name   string
	closed bool
}

func (s *service) Shutdown() error {
	s.closed = true
	return nil
}

type fixture struct {
	host     *Instance
	recorder *diag.Recorder
	journal  *MemoryJournal
	store    *service
	router   *service
}

// newFixture creates a host named "app" owning service:store and
// service:router, recording deprecations and journal events. opts are
// applied after the defaults.
func newFixture(t *testing.T, engines map[string]ir.HostEngineConfig, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		recorder: diag.NewRecorder(),
		journal:  NewMemoryJournal(),
		store:    &service{name: "store"},
		router:   &service{name: "router"},
	}
	base := []Option{
		WithDiagnostics(f.recorder),
		WithJournal(f.journal),
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(NewSequenceGenerator("inst")),
		WithLogger(testutil.DiscardLogger()),
	}
	host, err := NewHost(ir.HostConfig{Name: "app", Engines: engines}, append(base, opts...)...)
	require.NoError(t, err)
	require.NoError(t, host.RegisterService("store", f.store))
	require.NoError(t, host.RegisterService("router", f.router))
	f.host = host
	return f
}

func (f *fixture) register(t *testing.T, def Definition) {
	t.Helper()
	require.NoError(t, f.host.RegisterEngine(def))
}

func (f *fixture) build(t *testing.T, name string) *Instance {
	t.Helper()
	child, err := f.host.BuildChildEngineInstance(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, child)
	return child
}

func engineDef(name string, services ...string) Definition {
	def := Definition{EngineDefinition: ir.EngineDefinition{Name: name}}
	if len(services) > 0 {
		def.Dependencies = ir.Services(services...)
	}
	return def
}

func grant(entries ...ir.ServiceEntry) ir.HostEngineConfig {
	return ir.HostEngineConfig{Dependencies: &ir.Dependencies{Services: entries}}
}
