package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubService_Identity(t *testing.T) {
	a := NewStubService("store")
	b := NewStubService("store")

	assert.NotSame(t, a, b)
	assert.Equal(t, "stub(store)", a.String())
}

func TestStubService_CountsShutdowns(t *testing.T) {
	s := NewStubService("store")
	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.Equal(t, 2, s.Shutdowns())
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	require.NotNil(t, logger)
	logger.Info("dropped")
}
