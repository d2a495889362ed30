package embeddedsass

import (
	"time"

	"github.com/joeycumines/go-embeddedsass/protocol"
)

// compileParams is everything a dispatcher needs to build and track one
// compilation, independent of how the caller phrased its input (string or
// path).
type compileParams struct {
	input   protocol.CompileRequest
	timeout time.Duration

	bindings  []importerBinding
	functions *functionMap
}

// pendingEntry pairs a tracker queued before the driver finished its
// handshake with the params needed to actually start it once Running.
type pendingEntry struct {
	tracker *tracker
	params  compileParams
}

// dispatcher is the work-routing layer sitting between the driver's
// public API and the wire: it holds a pending queue for
// compiles submitted before the child finishes its handshake, an active
// table keyed by compilation id for everything in flight, and drives the
// quiesce handshake during an orderly Shutdown.
type dispatcher struct {
	loop   *Loop
	writer func(*protocol.InboundMessage) error
	logger *structlog

	// reset is invoked (on the loop goroutine) when a single compilation's
	// timeout fires. The wire protocol has no way to abort one in-flight
	// request, so a timeout means the host has given up on the child
	// entirely: every other active/pending compilation is talking to a
	// child the host can no longer trust, and the whole driver must reset
	// rather than just the one tracker.
	reset func(error)

	ids     compilationIDAllocator
	pending []pendingEntry
	active  map[int64]*tracker

	quiescing     bool
	quiesceFuture *Future[struct{}]
}

func newDispatcher(loop *Loop, writer func(*protocol.InboundMessage) error, logger *structlog, reset func(error)) *dispatcher {
	return &dispatcher{
		loop:   loop,
		writer: writer,
		logger: logger,
		reset:  reset,
		ids:    globalCompilationIDs,
		active: make(map[int64]*tracker),
	}
}

// Submit must be called from the loop goroutine. It allocates a
// compilation id, builds the tracker, and either starts it immediately
// (Running) or queues it (Initializing) or fails it immediately (Broken/
// Quiescing/Shutdown).
func (d *dispatcher) Submit(state DriverState, p compileParams) *Future[*CompileResult] {
	id := d.ids.Next()
	p.input.ID = id
	t := newTracker(id, d.loop, d.writer, d.logger, p.bindings, p.functions)

	switch state {
	case StateInitializing:
		d.pending = append(d.pending, pendingEntry{tracker: t, params: p})
	case StateRunning:
		d.start(t, p)
	default:
		t.fail(&LifecycleError{State: state.String(), Op: "compile"})
	}
	return t.future
}

// start puts t in the active table and sends its compile request.
func (d *dispatcher) start(t *tracker, p compileParams) {
	d.active[t.id] = t
	t.Start(p.timeout, func() {
		d.reset(&LifecycleError{State: "timeout", Op: "compile"})
	})
	if err := d.writer(&protocol.InboundMessage{CompileRequest: &p.input}); err != nil {
		d.CancelOne(t.id, &ProtocolError{Cause: err})
	}
}

// KickPending drains the pending queue once the driver transitions to
// Running (the version handshake completed), starting each queued
// compilation with the params it was originally submitted with.
func (d *dispatcher) KickPending() {
	queue := d.pending
	d.pending = nil
	for _, e := range queue {
		d.start(e.tracker, e.params)
	}
}

// FailAllPending rejects every queued-but-not-yet-started compilation,
// for a driver that becomes Broken (or is shut down) before it ever
// finished its handshake.
func (d *dispatcher) FailAllPending(err error) {
	for _, e := range d.pending {
		e.tracker.fail(err)
	}
	d.pending = nil
}

// CancelAllActive cancels every compilation currently in flight, honoring
// each tracker's own deferred-cancel discipline.
func (d *dispatcher) CancelAllActive(err error) {
	for id, t := range d.active {
		t.Cancel(err)
		delete(d.active, id)
	}
	d.maybeCompleteQuiesce()
}

// CancelOne cancels a single active compilation by id, if still present.
func (d *dispatcher) CancelOne(id int64, err error) {
	t, ok := d.active[id]
	if !ok {
		return
	}
	t.Cancel(err)
	delete(d.active, id)
	d.maybeCompleteQuiesce()
}

// Route dispatches one inbound OutboundMessage: a
// CompilationID-scoped message goes to the matching tracker; the two
// global messages (version response, protocol error) are returned to the
// caller (driver.go) since they concern driver-wide state, not a single
// compilation. A ProtocolError that ends the routed compilation (an
// unknown importer or function id, an undecodable argument) is returned
// the same way, so that it resets the whole driver.
func (d *dispatcher) Route(msg *protocol.OutboundMessage) (versionResponse *protocol.VersionResponse, protocolError *protocol.ProtocolError) {
	switch {
	case msg.VersionResponse != nil:
		return msg.VersionResponse, nil
	case msg.ProtocolError != nil:
		return nil, msg.ProtocolError
	}

	id := compilationIDOf(msg)
	t, ok := d.active[id]
	if !ok {
		return nil, &protocol.ProtocolError{Message: "message for unknown or completed compilation"}
	}
	t.Receive(msg)
	if t.done {
		delete(d.active, id)
		if _, err := t.future.Wait(); err != nil {
			if pe, ok := err.(*ProtocolError); ok {
				return nil, &protocol.ProtocolError{Message: pe.Cause.Error()}
			}
		}
		d.maybeCompleteQuiesce()
	}
	return nil, nil
}

func compilationIDOf(msg *protocol.OutboundMessage) int64 {
	switch {
	case msg.CompileResponse != nil:
		return msg.CompileResponse.ID
	case msg.LogEvent != nil:
		return msg.LogEvent.CompilationID
	case msg.CanonicalizeRequest != nil:
		return msg.CanonicalizeRequest.CompilationID
	case msg.ImportRequest != nil:
		return msg.ImportRequest.CompilationID
	case msg.FunctionCallRequest != nil:
		return msg.FunctionCallRequest.CompilationID
	}
	return -1
}

// Quiesce begins an orderly shutdown: no new work starts, and the
// returned future resolves once every active (and pending) compilation
// has finished. The pending queue is failed immediately, since there is
// no handshake left to wait for by the time Quiesce is called (Shutdown
// only quiesces a Running driver).
func (d *dispatcher) Quiesce(cancelErr error) *Future[struct{}] {
	d.quiescing = true
	d.quiesceFuture = NewFuture[struct{}]()
	d.FailAllPending(cancelErr)
	d.maybeCompleteQuiesce()
	return d.quiesceFuture
}

func (d *dispatcher) maybeCompleteQuiesce() {
	if d.quiescing && len(d.active) == 0 && d.quiesceFuture != nil {
		d.quiesceFuture.Resolve(struct{}{})
	}
}

// ActiveCount reports how many compilations are in flight, for tests and
// diagnostics.
func (d *dispatcher) ActiveCount() int { return len(d.active) }
