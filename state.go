package embeddedsass

import "sync/atomic"

// DriverState is the compiler driver's lifecycle state, stored as a
// lock-free atomic value so the hot path (dispatching a compile) never
// takes a mutex just to check liveness.
//
// State Machine:
//
//	Initializing (0) -> Running (1)        [version handshake completes]
//	Initializing (0) -> Broken (3)         [spawn or version handshake fails]
//	Running (1)      -> Quiescing (2)      [Shutdown() called]
//	Running (1)      -> Initializing (0)   [protocol/I-O error, timeout, or Reinit; child respawned]
//	Broken (3)       -> Initializing (0)   [Reinit]
//	Quiescing (2)    -> Shutdown (4)       [active compilations drain]
//	Initializing (0) / Broken (3) -> Shutdown (4)   [Shutdown() called]
//	Shutdown (4)     -> (terminal)
//
// TryTransition (CAS) is used for the moves that depend on the current
// state (Initializing->Running, Running->Quiescing); Store is used for the
// unconditional moves to Initializing, Broken and Shutdown.
type DriverState uint32

const (
	StateInitializing DriverState = iota
	StateRunning
	StateQuiescing
	StateBroken
	StateShutdown
)

func (s DriverState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateQuiescing:
		return "quiescing"
	case StateBroken:
		return "broken"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// driverStateBox is a lock-free holder for DriverState.
type driverStateBox struct {
	v atomic.Uint32
}

func newDriverStateBox(initial DriverState) *driverStateBox {
	b := &driverStateBox{}
	b.v.Store(uint32(initial))
	return b
}

func (b *driverStateBox) Load() DriverState {
	return DriverState(b.v.Load())
}

// TryTransition performs a CAS from `from` to `to`, reporting whether it
// succeeded. Callers that need an unconditional move to a terminal state
// should use Store instead.
func (b *driverStateBox) TryTransition(from, to DriverState) bool {
	return b.v.CompareAndSwap(uint32(from), uint32(to))
}

// Store performs an unconditional transition (a reset to Initializing, or a
// move to Broken or Shutdown).
func (b *driverStateBox) Store(to DriverState) {
	b.v.Store(uint32(to))
}
