package embeddedsass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-embeddedsass/protocol"
)

func newTestDispatcher(t *testing.T) (*dispatcher, *Loop, chan *protocol.InboundMessage) {
	t.Helper()
	l := NewLoop()
	go l.Run()
	t.Cleanup(l.Stop)

	sent := make(chan *protocol.InboundMessage, 64)
	writer := func(msg *protocol.InboundMessage) error {
		sent <- msg
		return nil
	}
	d := newDispatcher(l, writer, nil, func(error) {})
	return d, l, sent
}

func submitSync(t *testing.T, l *Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	l.Submit(func() { fn(); close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted task never ran")
	}
}

func TestDispatcherSubmitRunningStartsImmediately(t *testing.T) {
	d, l, sent := newTestDispatcher(t)

	var future *Future[*CompileResult]
	submitSync(t, l, func() {
		future = d.Submit(StateRunning, compileParams{functions: newFunctionMap()})
	})

	select {
	case msg := <-sent:
		require.NotNil(t, msg.CompileRequest)
	case <-time.After(time.Second):
		t.Fatal("compile request never sent for a Running submit")
	}

	submitSync(t, l, func() {
		assert.Equal(t, 1, d.ActiveCount())
	})
	assert.NotNil(t, future)
}

func TestDispatcherSubmitInitializingQueues(t *testing.T) {
	d, l, sent := newTestDispatcher(t)

	submitSync(t, l, func() {
		d.Submit(StateInitializing, compileParams{functions: newFunctionMap()})
	})

	select {
	case <-sent:
		t.Fatal("a queued compile must not be sent before KickPending")
	case <-time.After(30 * time.Millisecond):
	}

	submitSync(t, l, func() {
		assert.Len(t, d.pending, 1)
		assert.Equal(t, 0, d.ActiveCount())
	})

	submitSync(t, l, d.KickPending)

	select {
	case msg := <-sent:
		require.NotNil(t, msg.CompileRequest)
	case <-time.After(time.Second):
		t.Fatal("KickPending never sent the queued compile")
	}
	submitSync(t, l, func() {
		assert.Equal(t, 1, d.ActiveCount())
		assert.Empty(t, d.pending)
	})
}

func TestDispatcherSubmitBrokenFailsImmediately(t *testing.T) {
	d, l, _ := newTestDispatcher(t)

	var future *Future[*CompileResult]
	submitSync(t, l, func() {
		future = d.Submit(StateBroken, compileParams{functions: newFunctionMap()})
	})

	_, err := future.Wait()
	require.Error(t, err)
	var lifecycleErr *LifecycleError
	require.ErrorAs(t, err, &lifecycleErr)
}

func TestDispatcherSubmitQuiescingFailsImmediately(t *testing.T) {
	d, l, _ := newTestDispatcher(t)
	var future *Future[*CompileResult]
	submitSync(t, l, func() {
		future = d.Submit(StateQuiescing, compileParams{functions: newFunctionMap()})
	})
	_, err := future.Wait()
	require.Error(t, err)
}

func TestDispatcherSubmitShutdownFailsImmediately(t *testing.T) {
	d, l, _ := newTestDispatcher(t)
	var future *Future[*CompileResult]
	submitSync(t, l, func() {
		future = d.Submit(StateShutdown, compileParams{functions: newFunctionMap()})
	})
	_, err := future.Wait()
	require.Error(t, err)
}

func TestDispatcherFailAllPending(t *testing.T) {
	d, l, _ := newTestDispatcher(t)

	var f1, f2 *Future[*CompileResult]
	submitSync(t, l, func() {
		f1 = d.Submit(StateInitializing, compileParams{functions: newFunctionMap()})
		f2 = d.Submit(StateInitializing, compileParams{functions: newFunctionMap()})
	})

	bang := assertErr("bang")
	submitSync(t, l, func() { d.FailAllPending(bang) })

	_, err1 := f1.Wait()
	_, err2 := f2.Wait()
	assert.ErrorIs(t, err1, bang)
	assert.ErrorIs(t, err2, bang)

	submitSync(t, l, func() { assert.Empty(t, d.pending) })
}

func TestDispatcherCancelAllActive(t *testing.T) {
	d, l, sent := newTestDispatcher(t)

	var f1, f2 *Future[*CompileResult]
	submitSync(t, l, func() {
		f1 = d.Submit(StateRunning, compileParams{functions: newFunctionMap()})
		f2 = d.Submit(StateRunning, compileParams{functions: newFunctionMap()})
	})
	drainN(t, sent, 2)

	bang := assertErr("stop")
	submitSync(t, l, func() { d.CancelAllActive(bang) })

	_, err1 := f1.Wait()
	_, err2 := f2.Wait()
	assert.ErrorIs(t, err1, bang)
	assert.ErrorIs(t, err2, bang)

	submitSync(t, l, func() { assert.Equal(t, 0, d.ActiveCount()) })
}

func TestDispatcherRouteToTracker(t *testing.T) {
	d, l, sent := newTestDispatcher(t)

	var future *Future[*CompileResult]
	submitSync(t, l, func() {
		future = d.Submit(StateRunning, compileParams{functions: newFunctionMap()})
	})
	msg := drainN(t, sent, 1)[0]
	id := msg.CompileRequest.ID

	submitSync(t, l, func() {
		_, protoErr := d.Route(&protocol.OutboundMessage{CompileResponse: &protocol.CompileResponse{
			ID:      id,
			Success: &protocol.CompileSuccess{CSS: "ok"},
		}})
		assert.Nil(t, protoErr)
	})

	result, err := future.Wait()
	require.NoError(t, err)
	assert.Equal(t, "ok", result.CSS)

	submitSync(t, l, func() { assert.Equal(t, 0, d.ActiveCount()) })
}

func TestDispatcherRouteUnknownCompilationID(t *testing.T) {
	d, l, _ := newTestDispatcher(t)

	submitSync(t, l, func() {
		_, protoErr := d.Route(&protocol.OutboundMessage{CompileResponse: &protocol.CompileResponse{
			ID:      99999,
			Success: &protocol.CompileSuccess{CSS: "x"},
		}})
		require.NotNil(t, protoErr)
	})
}

func TestDispatcherRouteVersionResponseAndProtocolError(t *testing.T) {
	d, l, _ := newTestDispatcher(t)

	submitSync(t, l, func() {
		vr, protoErr := d.Route(&protocol.OutboundMessage{VersionResponse: &protocol.VersionResponse{ProtocolVersion: "2.0.0"}})
		require.NotNil(t, vr)
		assert.Nil(t, protoErr)
	})

	submitSync(t, l, func() {
		vr, protoErr := d.Route(&protocol.OutboundMessage{ProtocolError: &protocol.ProtocolError{Message: "bad frame"}})
		assert.Nil(t, vr)
		require.NotNil(t, protoErr)
	})
}

func TestDispatcherQuiesceResolvesOnceActiveDrains(t *testing.T) {
	d, l, sent := newTestDispatcher(t)

	var future *Future[*CompileResult]
	submitSync(t, l, func() {
		future = d.Submit(StateRunning, compileParams{functions: newFunctionMap()})
	})
	msg := drainN(t, sent, 1)[0]
	id := msg.CompileRequest.ID

	var quiesceFuture *Future[struct{}]
	bang := assertErr("shutting down")
	submitSync(t, l, func() {
		quiesceFuture = d.Quiesce(bang)
	})

	select {
	case <-quiesceFuture.Done():
		t.Fatal("quiesce must not resolve while a compilation is still active")
	case <-time.After(30 * time.Millisecond):
	}

	submitSync(t, l, func() {
		_, _ = d.Route(&protocol.OutboundMessage{CompileResponse: &protocol.CompileResponse{
			ID:      id,
			Success: &protocol.CompileSuccess{CSS: "done"},
		}})
	})

	_, err := future.Wait()
	require.NoError(t, err)

	_, qerr := quiesceFuture.Wait()
	assert.NoError(t, qerr)
}

func TestDispatcherQuiesceFailsPendingImmediately(t *testing.T) {
	d, l, _ := newTestDispatcher(t)

	var pendingFuture *Future[*CompileResult]
	submitSync(t, l, func() {
		pendingFuture = d.Submit(StateInitializing, compileParams{functions: newFunctionMap()})
	})

	bang := assertErr("shutting down")
	submitSync(t, l, func() { d.Quiesce(bang) })

	_, err := pendingFuture.Wait()
	assert.ErrorIs(t, err, bang)
}

// assertErr is a trivial sentinel error constructor, used where the test
// only cares about identity via errors.Is.
type assertErr string

func (e assertErr) Error() string { return string(e) }

func drainN(t *testing.T, ch chan *protocol.InboundMessage, n int) []*protocol.InboundMessage {
	t.Helper()
	out := make([]*protocol.InboundMessage, 0, n)
	for i := 0; i < n; i++ {
		select {
		case m := <-ch:
			out = append(out, m)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d/%d", i+1, n)
		}
	}
	return out
}
