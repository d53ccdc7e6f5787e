package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestServiceEntry_JSONRoundTripForms(t *testing.T) {
	deps := Dependencies{Services: []ServiceEntry{Service("store"), Alias("data-store", "store")}}

	data, err := json.Marshal(deps)
	require.NoError(t, err)
	assert.JSONEq(t, `{"services":["store",{"data-store":"store"}]}`, string(data))

	var decoded Dependencies
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, deps, decoded)
}

func TestServiceEntry_YAMLForms(t *testing.T) {
	src := `
services:
  - store
  - data-store: store
`
	var deps Dependencies
	require.NoError(t, yaml.Unmarshal([]byte(src), &deps))

	require.Len(t, deps.Services, 2)
	assert.Equal(t, Service("store"), deps.Services[0])
	assert.Equal(t, Alias("data-store", "store"), deps.Services[1])
}

func TestServiceEntry_YAMLRejectsMultiKeyAlias(t *testing.T) {
	src := `
services:
  - {a: b, c: d}
`
	var deps Dependencies
	err := yaml.Unmarshal([]byte(src), &deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one key")
}

func TestServiceEntry_JSONRejectsEmptyName(t *testing.T) {
	var e ServiceEntry
	assert.Error(t, json.Unmarshal([]byte(`"  "`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"": "store"}`), &e))
	assert.Error(t, json.Unmarshal([]byte(`42`), &e))
}

func TestDependencies_NilReceiver(t *testing.T) {
	var deps *Dependencies
	assert.Nil(t, deps.ServiceList())
	assert.Nil(t, deps.Clone())
}

func TestEngineDefinition_CloneIsDeep(t *testing.T) {
	def := EngineDefinition{
		Name:         "blog",
		Dependencies: Services("store"),
		Engines:      map[string]HostEngineConfig{"comments": {Dependencies: Services("store")}},
	}

	clone := def.Clone()
	def.Dependencies.Services[0] = Service("mutated")
	def.Engines["comments"].Dependencies.Services[0] = Service("mutated")
	def.Engines["extra"] = HostEngineConfig{}

	assert.Equal(t, "store", clone.Dependencies.Services[0].External)
	assert.Equal(t, "store", clone.Engines["comments"].Dependencies.Services[0].External)
	assert.NotContains(t, clone.Engines, "extra")
}

func TestHostConfig_NilEnginesPreserved(t *testing.T) {
	host := HostConfig{Name: "app"}
	assert.Nil(t, host.Clone().Engines)
}

func TestEngineNames_Sorted(t *testing.T) {
	names := EngineNames(map[string]HostEngineConfig{"b": {}, "a": {}, "c": {}})
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestLifecycleEvent_JSONFieldNaming(t *testing.T) {
	data, err := json.Marshal(LifecycleEvent{Seq: 1, InstanceID: "i", ParentID: "p", Engine: "blog", Kind: EventBuilt})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"instance_id"`)
	assert.Contains(t, string(data), `"parent_id"`)
	assert.NotContains(t, string(data), `"instanceId"`)
}
