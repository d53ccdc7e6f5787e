package diag

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelizedEngineName_Message(t *testing.T) {
	d := CamelizedEngineName("super-blog", "superBlog")

	assert.Equal(t, IDCamelizedEngineName, d.ID)
	assert.Equal(t,
		"Support for camelized engine names has been deprecated. Please use 'super-blog' instead of 'superBlog'.",
		d.Message)
}

func TestHostRouterService_Message(t *testing.T) {
	assert.Equal(t,
		"Support for the host's router service has been deprecated. Please use a different name as 'hostRouter' or 'appRouter' instead of 'router'.",
		HostRouterService().Message)
}

func TestRecorder_CountsAndOrder(t *testing.T) {
	r := NewRecorder()
	r.Deprecate(HostRouterService())
	r.Deprecate(CamelizedEngineName("a-b", "aB"))
	r.Deprecate(HostRouterService())

	assert.Equal(t, 2, r.Count(HostRouterService().Message))
	assert.True(t, r.Includes(CamelizedEngineName("a-b", "aB").Message))
	assert.False(t, r.Includes("nope"))
	require.Len(t, r.All(), 3)
	assert.Equal(t, IDCamelizedEngineName, r.All()[1].ID)

	r.Reset()
	assert.Empty(t, r.Messages())
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Deprecate(HostRouterService())
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, r.Count(HostRouterService().Message))
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi(a, nil, b).Deprecate(HostRouterService())

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
}

func TestLogSink_WritesWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogSink{Logger: logger}.Deprecate(HostRouterService())

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), IDHostRouterService)
}

func TestDiscard_DoesNothing(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Deprecate(HostRouterService()) })
}
