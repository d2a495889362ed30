package embeddedsass

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureResolveThenWait(t *testing.T) {
	f := NewFuture[int]()
	f.Resolve(42)
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFutureRejectThenWait(t *testing.T) {
	f := NewFuture[int]()
	wantErr := errors.New("boom")
	f.Reject(wantErr)
	_, err := f.Wait()
	assert.ErrorIs(t, err, wantErr)
}

func TestFutureSettlesExactlyOnce(t *testing.T) {
	f := NewFuture[string]()
	f.Resolve("first")
	f.Resolve("second")
	f.Reject(errors.New("third"))

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestFutureWaitBlocksUntilSettled(t *testing.T) {
	f := NewFuture[int]()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		f.Resolve(7)
	}()

	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	wg.Wait()
}

func TestFutureDoneChannel(t *testing.T) {
	f := NewFuture[int]()
	select {
	case <-f.Done():
		t.Fatal("future should not be done yet")
	default:
	}
	f.Resolve(1)
	select {
	case <-f.Done():
	default:
		t.Fatal("future should be done")
	}
}
