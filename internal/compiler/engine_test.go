package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginehost/internal/ir"
)

func compile(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("specs.cue"))
	require.NoError(t, v.Err())
	return v
}

func TestCompileEngineBasic(t *testing.T) {
	v := compile(t, `
		engine: blog: {
			dependencies: services: ["store", "session"]
		}
	`)

	def, err := CompileEngine(v.LookupPath(cue.ParsePath("engine.blog")))
	require.NoError(t, err)

	assert.Equal(t, "blog", def.Name)
	assert.Equal(t, []ir.ServiceEntry{ir.Service("store"), ir.Service("session")}, def.Dependencies.Services)
	assert.Nil(t, def.Engines)
}

func TestCompileEngineQuotedLabel(t *testing.T) {
	v := compile(t, `engine: "super-blog": {}`)

	def, err := CompileEngine(v.LookupPath(cue.ParsePath(`engine."super-blog"`)))
	require.NoError(t, err)

	assert.Equal(t, "super-blog", def.Name)
	assert.Nil(t, def.Dependencies, "absent dependencies stay nil")
}

func TestCompileEngineNestedGrants(t *testing.T) {
	v := compile(t, `
		engine: blog: {
			dependencies: services: ["store"]
			engines: comments: dependencies: services: [{db: "store"}]
		}
	`)

	def, err := CompileEngine(v.LookupPath(cue.ParsePath("engine.blog")))
	require.NoError(t, err)

	require.Contains(t, def.Engines, "comments")
	assert.Equal(t, []ir.ServiceEntry{ir.Alias("db", "store")}, def.Engines["comments"].Dependencies.Services)
}

func TestCompileEngineRejectsNonStruct(t *testing.T) {
	v := compile(t, `engine: blog: "nope"`)

	_, err := CompileEngine(v.LookupPath(cue.ParsePath("engine.blog")))
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "engine", ce.Field)
}

func TestCompileHostBasic(t *testing.T) {
	v := compile(t, `
		host: {
			name: "app"
			services: ["store", "router"]
			engines: {
				blog: dependencies: services: ["store", {"data-store": "store"}]
				superBlog: dependencies: services: ["router"]
			}
		}
	`)

	host, err := CompileHost(v.LookupPath(cue.ParsePath("host")))
	require.NoError(t, err)

	assert.Equal(t, "app", host.Name)
	assert.Equal(t, []string{"store", "router"}, host.Services)
	assert.Equal(t, []string{"blog", "superBlog"}, ir.EngineNames(host.Engines))
	assert.Equal(t, []ir.ServiceEntry{ir.Service("store"), ir.Alias("data-store", "store")},
		host.Engines["blog"].Dependencies.Services)
}

func TestCompileHostWithoutEngines(t *testing.T) {
	v := compile(t, `host: name: "app"`)

	host, err := CompileHost(v.LookupPath(cue.ParsePath("host")))
	require.NoError(t, err)
	assert.Nil(t, host.Engines)
}

func TestCompileHostMissingName(t *testing.T) {
	v := compile(t, `host: services: ["store"]`)

	_, err := CompileHost(v.LookupPath(cue.ParsePath("host")))
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "name", ce.Field)
}

func TestCompileServiceEntryErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"multi-key alias", `engine: blog: dependencies: services: [{a: "x", b: "y"}]`, "exactly one key"},
		{"empty alias", `engine: blog: dependencies: services: [{}]`, "exactly one key"},
		{"number", `engine: blog: dependencies: services: [42]`, "string or a single-key alias"},
		{"alias to number", `engine: blog: dependencies: services: [{a: 1}]`, "alias target must be a string"},
		{"empty name", `engine: blog: dependencies: services: [""]`, "non-empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compile(t, tt.src)
			_, err := CompileEngine(v.LookupPath(cue.ParsePath("engine.blog")))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileBundle(t *testing.T) {
	v := compile(t, `
		host: {
			name: "app"
			engines: blog: dependencies: services: ["store"]
		}
		engine: {
			chat: {}
			blog: dependencies: services: ["store"]
		}
	`)

	bundle, errs := CompileBundle(v)
	require.Empty(t, errs)
	require.NotNil(t, bundle.Host)
	assert.Equal(t, "app", bundle.Host.Name)
	require.Len(t, bundle.Engines, 2)
	assert.Equal(t, "blog", bundle.Engines[0].Name)
	assert.Equal(t, "chat", bundle.Engines[1].Name)

	_, ok := bundle.Engine("chat")
	assert.True(t, ok)
	_, ok = bundle.Engine("missing")
	assert.False(t, ok)
}

func TestCompileBundleCollectsErrors(t *testing.T) {
	v := compile(t, `
		host: services: []
		engine: {
			good: {}
			bad: dependencies: services: [{a: "x", b: "y"}]
		}
	`)

	bundle, errs := CompileBundle(v)
	assert.Len(t, errs, 2)
	assert.Nil(t, bundle.Host)
	require.Len(t, bundle.Engines, 1)
	assert.Equal(t, "good", bundle.Engines[0].Name)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "name", Message: "host name is required"}
	assert.Equal(t, "name: host name is required", err.Error())
}
