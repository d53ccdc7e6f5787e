package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/ir"
)

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr string
	}{
		{name: "minimal", def: engineDef("blog")},
		{name: "with services", def: engineDef("super-blog", "store", "session")},
		{name: "empty name", def: engineDef(""), wantErr: "engine name is required"},
		{name: "camel name", def: engineDef("superBlog"), wantErr: `did you mean "super-blog"`},
		{name: "duplicate service", def: engineDef("blog", "store", "store"), wantErr: `"store" declared twice`},
		{
			name: "engine-side alias",
			def: Definition{EngineDefinition: ir.EngineDefinition{
				Name:         "blog",
				Dependencies: &ir.Dependencies{Services: []ir.ServiceEntry{ir.Alias("data-store", "store")}},
			}},
			wantErr: "only allowed on the host side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsInvalidDefinition(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegisterDefinition_FreezesAndFingerprints(t *testing.T) {
	c := container.New("app", nil)
	def := engineDef("blog", "store")
	def.Initializers = []Initializer{{Name: "one"}}

	require.NoError(t, RegisterDefinition(c, def))
	def.Initializers[0].Name = "changed"
	def.Dependencies.Services = append(def.Dependencies.Services, ir.Service("router"))

	v, err := c.Lookup("engine:blog")
	require.NoError(t, err)
	frozen := v.(*Definition)

	assert.Equal(t, "one", frozen.Initializers[0].Name)
	assert.Equal(t, []ir.ServiceEntry{ir.Service("store")}, frozen.Dependencies.Services)
	assert.Len(t, frozen.Hash(), 64)

	want, err := ir.DefinitionHash(engineDef("blog", "store").EngineDefinition)
	require.NoError(t, err)
	assert.Equal(t, want, frozen.Hash())
}

func TestRegisterDefinition_Duplicate(t *testing.T) {
	c := container.New("app", nil)
	require.NoError(t, RegisterDefinition(c, engineDef("blog")))

	err := RegisterDefinition(c, engineDef("blog"))
	assert.True(t, IsInvalidDefinition(err))
	assert.ErrorIs(t, err, container.ErrDuplicate)
}

func TestRegisterDefinition_RejectsInvalid(t *testing.T) {
	c := container.New("app", nil)
	err := RegisterDefinition(c, engineDef("Blog"))
	assert.True(t, IsInvalidDefinition(err))
	assert.False(t, c.Has("engine:Blog"))
}
