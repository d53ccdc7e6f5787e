package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/enginehost/internal/ir"
)

// Journal records lifecycle events. store.Store is the durable
// implementation; MemoryJournal keeps events in process.
//
// Recording is observational: a failing journal is logged and never fails
// the lifecycle operation that produced the event.
type Journal interface {
	Record(ctx context.Context, ev ir.LifecycleEvent) error
}

// MemoryJournal keeps events in arrival order.
//
// Thread-safety: MemoryJournal is safe for concurrent use.
type MemoryJournal struct {
	mu     sync.Mutex
	events []ir.LifecycleEvent
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Record appends ev.
func (j *MemoryJournal) Record(_ context.Context, ev ir.LifecycleEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return nil
}

// Events returns a copy of every recorded event.
func (j *MemoryJournal) Events() []ir.LifecycleEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ir.LifecycleEvent, len(j.events))
	copy(out, j.events)
	return out
}

// Kinds returns the kinds recorded for one instance, in order.
func (j *MemoryJournal) Kinds(instanceID string) []ir.EventKind {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []ir.EventKind
	for _, ev := range j.events {
		if ev.InstanceID == instanceID {
			out = append(out, ev.Kind)
		}
	}
	return out
}

// Tee records every event to each journal in order. All journals see the
// event even when an earlier one fails; the failures are joined.
func Tee(journals ...Journal) Journal {
	return teeJournal(journals)
}

type teeJournal []Journal

func (t teeJournal) Record(ctx context.Context, ev ir.LifecycleEvent) error {
	var errs []error
	for _, j := range t {
		if j == nil {
			continue
		}
		if err := j.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type discardJournal struct{}

func (discardJournal) Record(context.Context, ir.LifecycleEvent) error { return nil }
