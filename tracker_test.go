package embeddedsass

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-embeddedsass/protocol"
	"github.com/joeycumines/go-embeddedsass/sassvalue"
)

type recordingImporter struct {
	canonical    string
	canonicalErr error
	loadResult   ImportResult
	loadErr      error
	block        chan struct{}
}

func (r *recordingImporter) Canonicalize(_ context.Context, url string, _ bool, _ string) (string, error) {
	if r.block != nil {
		<-r.block
	}
	return r.canonical, r.canonicalErr
}

func (r *recordingImporter) Load(_ context.Context, _ string) (ImportResult, error) {
	if r.block != nil {
		<-r.block
	}
	return r.loadResult, r.loadErr
}

func newTestTracker(t *testing.T) (*tracker, *Loop, chan *protocol.InboundMessage) {
	t.Helper()
	l := NewLoop()
	go l.Run()
	t.Cleanup(l.Stop)

	replies := make(chan *protocol.InboundMessage, 16)
	writer := func(msg *protocol.InboundMessage) error {
		replies <- msg
		return nil
	}
	tr := newTracker(1, l, writer, nil, nil, newFunctionMap())
	return tr, l, replies
}

func waitReply(t *testing.T, ch chan *protocol.InboundMessage) *protocol.InboundMessage {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
		return nil
	}
}

func TestTrackerHandleCanonicalizeSuccess(t *testing.T) {
	tr, l, replies := newTestTracker(t)
	tr.bindings = []importerBinding{{id: 7, importer: &recordingImporter{canonical: "file:///a.scss"}}}

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{CanonicalizeRequest: &protocol.CanonicalizeRequest{
			CompilationID: 1,
			ImporterID:    7,
			URL:           "a",
		}})
	})

	reply := waitReply(t, replies)
	require.NotNil(t, reply.CanonicalizeResponse)
	assert.Equal(t, "file:///a.scss", reply.CanonicalizeResponse.URL)
	assert.Empty(t, reply.CanonicalizeResponse.Error)
}

func TestTrackerHandleCanonicalizeUnknownImporter(t *testing.T) {
	tr, l, _ := newTestTracker(t)

	done := make(chan struct{})
	go func() {
		_, err := tr.future.Wait()
		assert.Error(t, err)
		var protoErr *ProtocolError
		assert.True(t, errors.As(err, &protoErr))
		close(done)
	}()

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{CanonicalizeRequest: &protocol.CanonicalizeRequest{
			CompilationID: 1,
			ImporterID:    999,
			URL:           "a",
		}})
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker never failed on unknown importer id")
	}
}

func TestTrackerHandleImportError(t *testing.T) {
	tr, l, replies := newTestTracker(t)
	tr.bindings = []importerBinding{{id: 3, importer: &recordingImporter{loadErr: errors.New("boom")}}}

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{ImportRequest: &protocol.ImportRequest{
			CompilationID: 1,
			ImporterID:    3,
			URL:           "a",
		}})
	})

	reply := waitReply(t, replies)
	require.NotNil(t, reply.ImportResponse)
	assert.False(t, reply.ImportResponse.Success)
	assert.Contains(t, reply.ImportResponse.Error, "boom")
}

func TestTrackerHandleFunctionCallByName(t *testing.T) {
	tr, l, replies := newTestTracker(t)
	tr.functions.byName["double"] = HostFunction{
		Signature: "double($x)",
		Call: func(args []sassvalue.Value) (sassvalue.Value, error) {
			return sassvalue.String{Text: "doubled"}, nil
		},
	}

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{FunctionCallRequest: &protocol.FunctionCallRequest{
			CompilationID: 1,
			Name:          "double",
		}})
	})

	reply := waitReply(t, replies)
	require.NotNil(t, reply.FunctionCallResponse)
	require.NotNil(t, reply.FunctionCallResponse.Success)
	assert.Empty(t, reply.FunctionCallResponse.Error)
}

func TestTrackerHandleFunctionCallUnknownName(t *testing.T) {
	tr, l, _ := newTestTracker(t)

	done := make(chan struct{})
	go func() {
		_, err := tr.future.Wait()
		assert.Error(t, err)
		close(done)
	}()

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{FunctionCallRequest: &protocol.FunctionCallRequest{
			CompilationID: 1,
			Name:          "nonexistent",
		}})
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker never failed on unknown function name")
	}
}

func TestTrackerHandleFunctionCallRejectsInboundHostFunctionArgument(t *testing.T) {
	tr, l, _ := newTestTracker(t)
	tr.functions.byName["identity"] = HostFunction{
		Signature: "identity($x)",
		Call: func(args []sassvalue.Value) (sassvalue.Value, error) {
			return args[0], nil
		},
	}

	done := make(chan struct{})
	go func() {
		_, err := tr.future.Wait()
		assert.Error(t, err)
		close(done)
	}()

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{FunctionCallRequest: &protocol.FunctionCallRequest{
			CompilationID: 1,
			Name:          "identity",
			Arguments: []*protocol.WireValue{
				{Kind: protocol.ValHostFunction, HostFn: &protocol.WireHostFunction{ID: 2000, Signature: "f($x)"}},
			},
		}})
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tracker never failed on an inbound host-function argument")
	}
}

func TestTrackerCancelDuringClientActivityDefers(t *testing.T) {
	tr, l, replies := newTestTracker(t)
	block := make(chan struct{})
	tr.bindings = []importerBinding{{id: 1, importer: &recordingImporter{canonical: "x", block: block}}}

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{CanonicalizeRequest: &protocol.CanonicalizeRequest{
			CompilationID: 1,
			ImporterID:    1,
			URL:           "a",
		}})
	})

	// Give beginClientActivity time to flip state before cancelling.
	var stateOK bool
	for i := 0; i < 100; i++ {
		done := make(chan struct{})
		l.Submit(func() {
			stateOK = tr.state == trackerClientActive
			close(done)
		})
		<-done
		if stateOK {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, stateOK, "tracker never entered trackerClientActive")

	cancelErr := errors.New("cancelled")
	l.Submit(func() { tr.Cancel(cancelErr) })

	// No reply should arrive while the callout is still blocked.
	select {
	case <-replies:
		t.Fatal("reply sent before blocked callout finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(block)

	select {
	case <-replies:
		t.Fatal("a normal reply must not be sent once a cancel is deferred")
	case <-time.After(200 * time.Millisecond):
	}

	_, err := tr.future.Wait()
	assert.ErrorIs(t, err, cancelErr)
}

func TestTrackerCancelWhenIdleFiresImmediately(t *testing.T) {
	tr, l, _ := newTestTracker(t)
	cancelErr := errors.New("stop")

	l.Submit(func() { tr.Cancel(cancelErr) })

	_, err := tr.future.Wait()
	assert.ErrorIs(t, err, cancelErr)
}

func TestTrackerHandleCompileResponseSuccess(t *testing.T) {
	tr, l, _ := newTestTracker(t)

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{CompileResponse: &protocol.CompileResponse{
			Success: &protocol.CompileSuccess{CSS: "a{color:red}"},
		}})
	})

	result, err := tr.future.Wait()
	require.NoError(t, err)
	assert.Equal(t, "a{color:red}", result.CSS)
}

func TestTrackerHandleCompileResponseFailure(t *testing.T) {
	tr, l, _ := newTestTracker(t)

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{CompileResponse: &protocol.CompileResponse{
			Failure: &protocol.CompileFailure{Message: "unexpected token"},
		}})
	})

	_, err := tr.future.Wait()
	require.Error(t, err)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Contains(t, compileErr.Error(), "unexpected token")
}

func TestTrackerSettlesExactlyOnce(t *testing.T) {
	tr, l, _ := newTestTracker(t)

	var wg sync.WaitGroup
	wg.Add(2)
	l.Submit(func() {
		tr.complete(&CompileResult{CSS: "first"}, nil)
		wg.Done()
	})
	l.Submit(func() {
		tr.complete(&CompileResult{CSS: "second"}, nil)
		wg.Done()
	})
	wg.Wait()

	result, err := tr.future.Wait()
	require.NoError(t, err)
	assert.Equal(t, "first", result.CSS)
}

func TestTrackerAccumulatesLogEvents(t *testing.T) {
	tr, l, _ := newTestTracker(t)

	l.Submit(func() {
		tr.Receive(&protocol.OutboundMessage{LogEvent: &protocol.LogEvent{
			Kind:    protocol.LogWarning,
			Message: "deprecated feature",
		}})
	})

	done := make(chan struct{})
	l.Submit(func() { close(done) })
	<-done

	require.Len(t, tr.accumulated, 1)
	assert.Equal(t, "deprecated feature", tr.accumulated[0].Message)
}
