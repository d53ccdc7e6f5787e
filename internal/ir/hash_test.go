package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionHash_Deterministic(t *testing.T) {
	def := EngineDefinition{Name: "blog", Dependencies: Services("store", "session")}

	h1, err := DefinitionHash(def)
	require.NoError(t, err)
	h2, err := DefinitionHash(def.Clone())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestDefinitionHash_ServiceOrderMatters(t *testing.T) {
	a, err := DefinitionHash(EngineDefinition{Name: "blog", Dependencies: Services("store", "session")})
	require.NoError(t, err)
	b, err := DefinitionHash(EngineDefinition{Name: "blog", Dependencies: Services("session", "store")})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDefinitionHash_NilAndEmptyDependenciesMatch(t *testing.T) {
	a, err := DefinitionHash(EngineDefinition{Name: "blog"})
	require.NoError(t, err)
	b, err := DefinitionHash(EngineDefinition{Name: "blog", Dependencies: &Dependencies{}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDefinitionHash_AliasDiffersFromBare(t *testing.T) {
	bare, err := DefinitionHash(EngineDefinition{
		Name:    "app",
		Engines: map[string]HostEngineConfig{"blog": {Dependencies: Services("store")}},
	})
	require.NoError(t, err)
	aliased, err := DefinitionHash(EngineDefinition{
		Name: "app",
		Engines: map[string]HostEngineConfig{"blog": {Dependencies: &Dependencies{
			Services: []ServiceEntry{Alias("store", "main-store")},
		}}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, bare, aliased)
}

func TestHostHash_DomainSeparated(t *testing.T) {
	host, err := HostHash(HostConfig{Name: "blog"})
	require.NoError(t, err)
	def, err := DefinitionHash(EngineDefinition{Name: "blog"})
	require.NoError(t, err)

	assert.NotEqual(t, host, def)
}
