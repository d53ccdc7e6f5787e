package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginehost/internal/container"
	"github.com/roach88/enginehost/internal/diag"
	"github.com/roach88/enginehost/internal/ir"
)

func registry(t *testing.T, names ...string) *container.Container {
	t.Helper()
	c := container.New("test", nil)
	for _, name := range names {
		require.NoError(t, c.RegisterValue(container.EngineKey(name), &Definition{}))
	}
	return c
}

func TestNormalizer_Resolve(t *testing.T) {
	reg := registry(t, "blog", "super-blog", "legacyEngine")

	tests := []struct {
		name       string
		requested  string
		want       string
		wantErr    bool
		deprecated []string
	}{
		{name: "exact kebab", requested: "super-blog", want: "super-blog"},
		{name: "single word", requested: "blog", want: "blog"},
		{name: "camel falls back to kebab", requested: "superBlog", want: "super-blog",
			deprecated: []string{"Support for camelized engine names has been deprecated. Please use 'super-blog' instead of 'superBlog'."}},
		{name: "exact camel registration wins", requested: "legacyEngine", want: "legacyEngine"},
		{name: "unknown", requested: "chat", wantErr: true},
		{name: "empty", requested: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := diag.NewRecorder()
			got, err := Normalizer{Sink: rec}.Resolve(reg, tt.requested)

			if tt.wantErr {
				assert.True(t, IsDefinitionNotFound(err))
				assert.Empty(t, rec.All())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.deprecated == nil {
				assert.Empty(t, rec.Messages())
			} else {
				assert.Equal(t, tt.deprecated, rec.Messages())
			}
		})
	}
}

func TestNormalizer_NilSinkDiscards(t *testing.T) {
	got, err := Normalizer{}.Resolve(registry(t, "super-blog"), "superBlog")
	require.NoError(t, err)
	assert.Equal(t, "super-blog", got)
}

func TestNormalizer_HostConfig(t *testing.T) {
	kebab := ir.HostEngineConfig{Dependencies: ir.Services("store")}
	camel := ir.HostEngineConfig{Dependencies: ir.Services("router")}

	t.Run("kebab key wins silently", func(t *testing.T) {
		rec := diag.NewRecorder()
		got := Normalizer{Sink: rec}.HostConfig(map[string]ir.HostEngineConfig{
			"super-blog": kebab,
			"superBlog":  camel,
		}, "super-blog")
		assert.Equal(t, kebab, got)
		assert.Empty(t, rec.All())
	})

	t.Run("camel key falls back with deprecation", func(t *testing.T) {
		rec := diag.NewRecorder()
		got := Normalizer{Sink: rec}.HostConfig(map[string]ir.HostEngineConfig{
			"superBlog": camel,
		}, "super-blog")
		assert.Equal(t, camel, got)
		assert.Equal(t, []string{
			"Support for camelized engine names has been deprecated. Please use 'super-blog' instead of 'superBlog'.",
		}, rec.Messages())
	})

	t.Run("missing entry grants nothing", func(t *testing.T) {
		rec := diag.NewRecorder()
		got := Normalizer{Sink: rec}.HostConfig(nil, "blog")
		assert.Nil(t, got.Dependencies)
		assert.Empty(t, rec.All())
	})
}
