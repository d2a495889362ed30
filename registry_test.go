package embeddedsass

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-embeddedsass/sassvalue"
)

func TestHostFunctionRegistryRegisterAndLookup(t *testing.T) {
	r := newHostFunctionRegistry()
	call := func(args []sassvalue.Value) (sassvalue.Value, error) { return sassvalue.NullValue, nil }

	id := r.Register("identity($x)", call)

	gotCall, sig, ok := r.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, "identity($x)", sig)
	assert.NotNil(t, gotCall)
}

func TestHostFunctionRegistryLookupMiss(t *testing.T) {
	r := newHostFunctionRegistry()
	_, _, ok := r.Lookup(999999)
	assert.False(t, ok)
}

func TestHostFunctionRegistryIDsNeverRepeat(t *testing.T) {
	r := newHostFunctionRegistry()
	call := func(args []sassvalue.Value) (sassvalue.Value, error) { return sassvalue.NullValue, nil }

	const n = 200
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			ids[i] = r.Register("f()", call)
		}()
	}
	wg.Wait()

	seen := make(map[uint64]struct{}, n)
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
