package embeddedsass

import (
	"sync"

	"github.com/joeycumines/go-embeddedsass/sassvalue"
)

// hostFunctionEntry is what the registry stores per id: enough to
// reconstruct a sassvalue.HostFunction without the caller re-supplying the
// signature on every lookup.
type hostFunctionEntry struct {
	signature string
	call      sassvalue.HostFunctionCallable
}

// hostFunctionRegistry is the process-wide table of host-defined dynamic
// functions, addressable by opaque id. It is the one piece of state in
// the driver that is not confined to a single loop
// goroutine: multiple Driver instances in the same process share one
// registry, since ids must remain globally unique and non-reused for the
// process's lifetime.
type hostFunctionRegistry struct {
	mu      sync.RWMutex
	entries map[uint64]hostFunctionEntry
}

func newHostFunctionRegistry() *hostFunctionRegistry {
	return &hostFunctionRegistry{entries: make(map[uint64]hostFunctionEntry)}
}

// Register assigns a fresh id to call/signature and stores it
// permanently; no deregistration API is exposed.
func (r *hostFunctionRegistry) Register(signature string, call sassvalue.HostFunctionCallable) uint64 {
	id := uint64(globalHostFunctionIDs.Next())
	r.mu.Lock()
	r.entries[id] = hostFunctionEntry{signature: signature, call: call}
	r.mu.Unlock()
	return id
}

// Lookup resolves id to its callable and signature, as required by
// protocol.FromWire's hostFunctionLookup parameter.
func (r *hostFunctionRegistry) Lookup(id uint64) (sassvalue.HostFunctionCallable, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, "", false
	}
	return e.call, e.signature, true
}

// globalRegistry is the single process-wide host-function registry shared
// by every Driver: a per-Driver registry would let two drivers assign
// colliding ids.
var globalRegistry = newHostFunctionRegistry()
