package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// StubService stands in for a host service. Each value has its own identity,
// so lookups can be compared by pointer.
type StubService struct {
	Name string

	shutdowns atomic.Int32
}

// NewStubService creates a stub named name.
func NewStubService(name string) *StubService {
	return &StubService{Name: name}
}

// Shutdown counts container teardown calls.
func (s *StubService) Shutdown() error {
	s.shutdowns.Add(1)
	return nil
}

// Shutdowns returns how many times Shutdown ran.
func (s *StubService) Shutdowns() int {
	return int(s.shutdowns.Load())
}

func (s *StubService) String() string {
	return fmt.Sprintf("stub(%s)", s.Name)
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
