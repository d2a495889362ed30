package embeddedsass

import "sync/atomic"

// Starting values for the driver's three independent id spaces, per the
// wire protocol's convention of reserving small values for well-known
// compilation ids (notably 0, used by VersionRequest/Response).
const (
	firstCompilationID  = 4000
	firstImporterID     = 4000
	firstHostFunctionID = 2000
)

// monotonicCounter hands out strictly increasing ids starting from a
// configured floor. Ids are never reused, even after the object they
// named is released, so a stale id arriving late on the wire can never be
// mistaken for a different, newer object.
type monotonicCounter struct {
	next atomic.Int64
}

func newMonotonicCounter(start int64) *monotonicCounter {
	c := &monotonicCounter{}
	c.next.Store(start)
	return c
}

// Next returns the next id in the sequence.
func (c *monotonicCounter) Next() int64 {
	return c.next.Add(1) - 1
}

// compilationIDAllocator hands out process-wide compilation ids.
type compilationIDAllocator struct{ *monotonicCounter }

func newCompilationIDAllocator() compilationIDAllocator {
	return compilationIDAllocator{newMonotonicCounter(firstCompilationID)}
}

// hostFunctionIDAllocator hands out process-wide host function registry
// ids, shared by every Driver in the process (the registry itself is
// process-wide, see registry.go).
type hostFunctionIDAllocator struct{ *monotonicCounter }

func newHostFunctionIDAllocator() hostFunctionIDAllocator {
	return hostFunctionIDAllocator{newMonotonicCounter(firstHostFunctionID)}
}

// importerIDAllocator hands out ids scoped to a single compilation (a
// fresh allocator is created per compile call).
type importerIDAllocator struct{ *monotonicCounter }

func newImporterIDAllocator() importerIDAllocator {
	return importerIDAllocator{newMonotonicCounter(firstImporterID)}
}

// globalHostFunctionIDs is the process-wide host function id space: every
// Driver instance registers into the same numeric space, since ids, once
// allocated, must never be reused for the lifetime of the process — not
// merely the lifetime of one driver.
var globalHostFunctionIDs = newHostFunctionIDAllocator()

// globalCompilationIDs is the process-wide compilation id space, shared by
// every dispatcher in the process for the same reason globalHostFunctionIDs
// is shared: ids must never be reused, not even across distinct Drivers.
var globalCompilationIDs = newCompilationIDAllocator()
