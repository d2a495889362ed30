package embeddedsass

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeycumines/go-embeddedsass/protocol"
)

func TestMonotonicCounterStartsAtFloor(t *testing.T) {
	c := newMonotonicCounter(4000)
	assert.EqualValues(t, 4000, c.Next())
	assert.EqualValues(t, 4001, c.Next())
	assert.EqualValues(t, 4002, c.Next())
}

func TestMonotonicCounterNeverRepeatsUnderConcurrency(t *testing.T) {
	c := newMonotonicCounter(0)
	const n = 1000
	seen := make([]int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			seen[i] = c.Next()
		}()
	}
	wg.Wait()

	unique := make(map[int64]struct{}, n)
	for _, id := range seen {
		_, dup := unique[id]
		assert.False(t, dup, "id %d handed out twice", id)
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, n)
}

func TestAllocatorFloors(t *testing.T) {
	assert.EqualValues(t, firstCompilationID, newCompilationIDAllocator().Next())
	assert.EqualValues(t, firstImporterID, newImporterIDAllocator().Next())
	assert.EqualValues(t, firstHostFunctionID, newHostFunctionIDAllocator().Next())
}

func TestGlobalCompilationIDsSharedAcrossDispatchers(t *testing.T) {
	l := NewLoop()
	go l.Run()
	t.Cleanup(l.Stop)

	noopWriter := func(*protocol.InboundMessage) error { return nil }
	noopReset := func(error) {}

	d1 := newDispatcher(l, noopWriter, nil, noopReset)
	d2 := newDispatcher(l, noopWriter, nil, noopReset)

	first := d1.ids.Next()
	second := d2.ids.Next()
	assert.Greater(t, second, first, "two dispatchers must draw from the same process-wide, monotonically increasing id space")
}
