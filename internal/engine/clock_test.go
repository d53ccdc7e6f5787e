package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAndResumes(t *testing.T) {
	assert.Equal(t, int64(0), NewClock().Current())

	resumed := NewClockAt(41)
	assert.Equal(t, int64(42), resumed.Next())
	assert.Equal(t, int64(42), resumed.Current())
}

func TestClock_ConcurrentUnique(t *testing.T) {
	c := NewClock()
	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	seqs := make(chan int64, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seqs <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for seq := range seqs {
		assert.False(t, seen[seq], "seq %d issued twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, int64(goroutines*perGoroutine), c.Current())
}

var _ Sequencer = (*Clock)(nil)
