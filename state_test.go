package embeddedsass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverStateString(t *testing.T) {
	cases := map[DriverState]string{
		StateInitializing: "initializing",
		StateRunning:       "running",
		StateQuiescing:     "quiescing",
		StateBroken:        "broken",
		StateShutdown:      "shutdown",
		DriverState(99):    "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestDriverStateBoxTryTransition(t *testing.T) {
	b := newDriverStateBox(StateInitializing)
	assert.Equal(t, StateInitializing, b.Load())

	assert.False(t, b.TryTransition(StateRunning, StateBroken), "transition from the wrong state must fail")
	assert.Equal(t, StateInitializing, b.Load())

	assert.True(t, b.TryTransition(StateInitializing, StateRunning))
	assert.Equal(t, StateRunning, b.Load())
}

func TestDriverStateBoxStoreIsUnconditional(t *testing.T) {
	b := newDriverStateBox(StateRunning)
	b.Store(StateShutdown)
	assert.Equal(t, StateShutdown, b.Load())
}
