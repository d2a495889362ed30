package embeddedsass

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/go-embeddedsass/protocol"
	"github.com/joeycumines/go-embeddedsass/sassvalue"
)

// trackerState is the per-compilation client-activity discipline state:
// exactly one client callout (an importer canonicalize/load, or a host
// function call) may be outstanding at a time, and a cancellation
// arriving during that window is deferred until the callout settles.
type trackerState int

const (
	trackerNormal trackerState = iota
	trackerClientActive
	trackerClientActiveWithPendingCancel
)

// LogMessage is one accumulated warning/deprecation-warning/debug message
// emitted by the child during a compilation.
type LogMessage struct {
	Kind       protocol.LogEventKind
	Message    string
	Span       *SourceSpan
	StackTrace string
}

// tracker owns one in-flight compilation: the importers/functions its
// nested requests resolve against, and the future the caller is waiting
// on. writer sends a reply to a nested request (canonicalize/import/
// function-call response) back to the child.
type tracker struct {
	id     int64
	loop   *Loop
	writer func(*protocol.InboundMessage) error
	logger *structlog

	bindings  []importerBinding
	functions *functionMap

	state      trackerState
	pendingErr error

	accumulated []LogMessage
	future      *Future[*CompileResult]
	timer       *timerEntry

	done bool
}

func newTracker(id int64, loop *Loop, writer func(*protocol.InboundMessage) error, logger *structlog, bindings []importerBinding, functions *functionMap) *tracker {
	return &tracker{
		id:        id,
		loop:      loop,
		writer:    writer,
		logger:    logger,
		bindings:  bindings,
		functions: functions,
		future:    NewFuture[*CompileResult](),
	}
}

// Start arms the tracker's timeout, if any. The compile request itself
// is sent by the dispatcher, which owns message ordering across the
// whole active table; Start only concerns the timer.
func (t *tracker) Start(timeout time.Duration, onTimeout func()) {
	if timeout <= 0 {
		return
	}
	t.timer = t.loop.AfterFunc(timeout, onTimeout)
}

// Receive handles one inbound message routed to this tracker, dispatching
// on its concrete type.
func (t *tracker) Receive(msg *protocol.OutboundMessage) {
	switch {
	case msg.CompileResponse != nil:
		t.handleCompileResponse(msg.CompileResponse)
	case msg.LogEvent != nil:
		t.accumulated = append(t.accumulated, LogMessage{
			Kind:       msg.LogEvent.Kind,
			Message:    msg.LogEvent.Message,
			Span:       msg.LogEvent.Span,
			StackTrace: msg.LogEvent.StackTrace,
		})
	case msg.CanonicalizeRequest != nil:
		t.handleCanonicalize(msg.CanonicalizeRequest)
	case msg.ImportRequest != nil:
		t.handleImport(msg.ImportRequest)
	case msg.FunctionCallRequest != nil:
		t.handleFunctionCall(msg.FunctionCallRequest)
	default:
		t.Cancel(&ProtocolError{Cause: fmt.Errorf("unexpected message variant routed to compilation %d", t.id)})
	}
}

func (t *tracker) findImporter(importerID uint64) (Importer, bool) {
	for _, b := range t.bindings {
		if b.id == importerID {
			return b.importer, true
		}
	}
	return nil, false
}

// beginClientActivity enters the client-active window, running work in a
// new goroutine (host callbacks may block; the loop goroutine itself must
// never do so) and delivering its result back onto the loop via
// SubmitInternal, at which point endClientActivity decides whether a
// deferred cancellation fires instead of the normal reply.
func (t *tracker) beginClientActivity(work func() (*protocol.InboundMessage, error)) {
	t.state = trackerClientActive
	go func() {
		reply, err := work()
		t.loop.SubmitInternal(func() {
			t.endClientActivity(reply, err)
		})
	}()
}

func (t *tracker) endClientActivity(reply *protocol.InboundMessage, err error) {
	deferredCancel := t.state == trackerClientActiveWithPendingCancel
	pendingErr := t.pendingErr
	t.state = trackerNormal
	t.pendingErr = nil

	if deferredCancel {
		t.fail(pendingErr)
		return
	}
	if err != nil {
		t.fail(&HostError{Op: "host callback", Cause: err})
		return
	}
	if writeErr := t.writer(reply); writeErr != nil {
		t.fail(&ProtocolError{Cause: writeErr})
	}
}

func (t *tracker) handleCanonicalize(req *protocol.CanonicalizeRequest) {
	imp, ok := t.findImporter(req.ImporterID)
	if !ok {
		t.Cancel(&ProtocolError{Cause: fmt.Errorf("unknown importer id %d", req.ImporterID)})
		return
	}
	t.beginClientActivity(func() (*protocol.InboundMessage, error) {
		url, err := imp.Canonicalize(context.Background(), req.URL, req.FromImport, req.ContainingURL)
		resp := &protocol.CanonicalizeResponse{CompilationID: req.CompilationID}
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.URL = url
		}
		return &protocol.InboundMessage{CanonicalizeResponse: resp}, nil
	})
}

func (t *tracker) handleImport(req *protocol.ImportRequest) {
	imp, ok := t.findImporter(req.ImporterID)
	if !ok {
		t.Cancel(&ProtocolError{Cause: fmt.Errorf("unknown importer id %d", req.ImporterID)})
		return
	}
	t.beginClientActivity(func() (*protocol.InboundMessage, error) {
		result, err := imp.Load(context.Background(), req.URL)
		resp := &protocol.ImportResponse{CompilationID: req.CompilationID}
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Contents = result.Contents
			resp.Syntax = result.Syntax
			resp.SourceMapURL = result.SourceMapURL
		}
		return &protocol.InboundMessage{ImportResponse: resp}, nil
	})
}

func (t *tracker) handleFunctionCall(req *protocol.FunctionCallRequest) {
	var call sassvalue.HostFunctionCallable
	if req.HasID {
		c, _, ok := globalRegistry.Lookup(req.FunctionID)
		if !ok {
			t.Cancel(&ProtocolError{Cause: fmt.Errorf("unknown host function id %d", req.FunctionID)})
			return
		}
		call = c
	} else {
		fn, ok := t.functions.lookup(req.Name)
		if !ok {
			t.Cancel(&ProtocolError{Cause: fmt.Errorf("unknown host function name %q", req.Name)})
			return
		}
		call = fn.Call
	}

	argValues := make([]sassvalue.Value, len(req.Arguments))
	for i, a := range req.Arguments {
		// Host functions travel outbound only (a host callable serialized
		// for the child to invoke by id); one arriving inbound as an
		// argument the child sends us is a protocol violation, so no
		// registry lookup is offered here and FromWire takes its
		// unsupported-kind error path instead.
		v, err := protocol.FromWire(a, nil)
		if err != nil {
			t.Cancel(&ProtocolError{Cause: err})
			return
		}
		argValues[i] = v
	}

	t.beginClientActivity(func() (*protocol.InboundMessage, error) {
		resp := &protocol.FunctionCallResponse{CompilationID: req.CompilationID}
		result, err := call(argValues)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = protocol.ToWire(result)
		}
		return &protocol.InboundMessage{FunctionCallResponse: resp}, nil
	})
}

func (t *tracker) handleCompileResponse(resp *protocol.CompileResponse) {
	if resp.Success != nil {
		t.complete(&CompileResult{CSS: resp.Success.CSS, SourceMap: resp.Success.SourceMap}, nil)
		return
	}
	t.complete(nil, &CompileError{
		Message:    resp.Failure.Message,
		Span:       resp.Failure.Span,
		StackTrace: resp.Failure.StackTrace,
		LoadedURLs: resp.Failure.LoadedURLs,
	})
}

// Cancel implements the deferred-cancellation discipline: if a client
// callout is in flight, the failure waits for it to finish; otherwise it
// fires immediately.
func (t *tracker) Cancel(err error) {
	if t.state == trackerClientActive {
		t.state = trackerClientActiveWithPendingCancel
		t.pendingErr = err
		return
	}
	t.fail(err)
}

func (t *tracker) fail(err error) {
	if t.done {
		return
	}
	t.done = true
	if t.timer != nil {
		t.timer.Cancel()
	}
	logProtocolError(t.logger, err)
	t.future.Reject(err)
}

func (t *tracker) complete(result *CompileResult, err error) {
	if t.done {
		return
	}
	t.done = true
	if t.timer != nil {
		t.timer.Cancel()
	}
	if err != nil {
		t.future.Reject(err)
		return
	}
	t.future.Resolve(result)
}
