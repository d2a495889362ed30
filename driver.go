// Package embeddedsass drives a long-lived embedded Sass compiler child
// process over its length-prefixed protobuf pipe protocol, multiplexing
// concurrent compilations and routing nested importer/function callbacks
// back to host-supplied Go code.
package embeddedsass

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-embeddedsass/childproc"
	"github.com/joeycumines/go-embeddedsass/protocol"
)

// versionRequestID is the reserved compilation id the wire protocol uses
// for version negotiation; it never collides with a real compilation
// since those start at firstCompilationID (4000).
const versionRequestID = 0

// Driver is the top-level embedded Sass compiler driver: it owns the
// child process, the single-threaded loop every mutation runs on, and the
// dispatcher that fans work out to per-compilation trackers.
type Driver struct {
	opts driverOptions
	loop *Loop

	state      *driverStateBox
	startCount atomic.Int64

	mu      sync.RWMutex // guards proc/version/pid snapshot for concurrent accessors
	proc    *childproc.Process
	version Version

	dispatcher      *dispatcher
	globalImporters []importerEntry
	globalFunctions []HostFunction
	timeout         time.Duration

	spawnCtx context.Context

	initFuture     *Future[struct{}]
	shutdownFuture *Future[struct{}]
}

// NewDriver spawns the compiler process named by WithCompilerPath and
// performs the version handshake, blocking until the driver is Running or
// has gone Broken.
func NewDriver(ctx context.Context, timeout time.Duration, globalImporters []importerEntry, globalFunctions []HostFunction, options ...DriverOption) (*Driver, error) {
	opts := defaultDriverOptions()
	for _, o := range options {
		if err := o.applyDriver(&opts); err != nil {
			return nil, fmt.Errorf("embeddedsass: applying option: %w", err)
		}
	}
	if opts.compilerPath == "" {
		return nil, fmt.Errorf("embeddedsass: WithCompilerPath is required")
	}

	d := &Driver{
		opts:            opts,
		loop:            NewLoop(),
		state:           newDriverStateBox(StateInitializing),
		globalImporters: globalImporters,
		globalFunctions: globalFunctions,
		timeout:         timeout,
		spawnCtx:        ctx,
	}
	d.dispatcher = newDispatcher(d.loop, d.writeInbound, opts.logger, d.resetForError)

	go d.loop.Run()

	d.initFuture = NewFuture[struct{}]()
	d.loop.Submit(func() { d.startChild(ctx) })

	if _, err := d.initFuture.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// startChild spawns the child process and kicks off the version
// handshake; runs on the loop goroutine.
func (d *Driver) startChild(ctx context.Context) {
	d.startCount.Add(1)
	proc, err := childproc.Start(ctx, d.opts.compilerPath)
	if err != nil {
		d.failInit(&LifecycleError{State: "initializing", Op: "spawn"})
		return
	}

	d.mu.Lock()
	d.proc = proc
	d.mu.Unlock()

	logChildSpawn(d.opts.logger, d.opts.compilerPath, proc.Pid())

	go d.readLoop(proc)
	go d.watchExit(proc)

	if err := d.writeInbound(&protocol.InboundMessage{VersionRequest: &protocol.VersionRequest{ID: versionRequestID}}); err != nil {
		d.failInit(&LifecycleError{State: "initializing", Op: "version request"})
	}
}

// readLoop runs on its own goroutine for the lifetime of proc, decoding
// frames and handing them to the loop goroutine for processing.
func (d *Driver) readLoop(proc *childproc.Process) {
	for {
		payload, err := proc.Frames.ReadFrame()
		if err != nil {
			d.loop.SubmitInternal(func() { d.handleIOFailure(proc, err) })
			return
		}
		msg, err := protocol.UnmarshalOutboundMessage(payload)
		if err != nil {
			d.loop.SubmitInternal(func() { d.handleProtocolError(proc, err) })
			return
		}
		d.loop.SubmitInternal(func() { d.routeInbound(msg) })
	}
}

// watchExit waits for the child to exit and logs the exit. It does not
// change the driver's state itself.
func (d *Driver) watchExit(proc *childproc.Process) {
	<-proc.Done()
	logChildExit(d.opts.logger, proc.Pid(), proc.Err())
}

func (d *Driver) writeInbound(msg *protocol.InboundMessage) error {
	d.mu.RLock()
	proc := d.proc
	d.mu.RUnlock()
	if proc == nil {
		return fmt.Errorf("embeddedsass: no child process")
	}
	return proc.WriteFrame(msg.Marshal())
}

// routeInbound runs on the loop goroutine for every decoded message from
// the child.
func (d *Driver) routeInbound(msg *protocol.OutboundMessage) {
	if msg.VersionResponse != nil {
		d.handleVersionResponse(msg.VersionResponse)
		return
	}
	_, protoErr := d.dispatcher.Route(msg)
	if protoErr != nil {
		d.resetForError(&ProtocolError{Cause: fmt.Errorf("%s", protoErr.Message)})
	}
}

func (d *Driver) handleVersionResponse(resp *protocol.VersionResponse) {
	if d.state.Load() != StateInitializing {
		return
	}
	if err := negotiateVersion(resp.ProtocolVersion); err != nil {
		d.failInit(err)
		return
	}

	d.mu.Lock()
	d.version = Version{
		ProtocolVersion: resp.ProtocolVersion,
		PackageVersion:  resp.PackageVersion,
		CompilerVersion: resp.CompilerVersion,
		CompilerName:    resp.CompilerName,
	}
	d.mu.Unlock()

	if !d.state.TryTransition(StateInitializing, StateRunning) {
		return
	}
	logLifecycle(d.opts.logger, StateInitializing, StateRunning, "version handshake complete")
	d.dispatcher.KickPending()
	d.initFuture.Resolve(struct{}{})
}

func (d *Driver) failInit(err error) {
	d.state.Store(StateBroken)
	logLifecycle(d.opts.logger, StateInitializing, StateBroken, err.Error())
	d.dispatcher.FailAllPending(err)
	d.terminateChild()
	d.initFuture.Reject(err)
}

func (d *Driver) handleIOFailure(proc *childproc.Process, err error) {
	d.mu.RLock()
	current := d.proc
	d.mu.RUnlock()
	if current != proc {
		return // already superseded by a respawn
	}
	d.resetForError(&ProtocolError{Cause: fmt.Errorf("child I/O failure: %w", err)})
}

func (d *Driver) handleProtocolError(proc *childproc.Process, err error) {
	d.mu.RLock()
	current := d.proc
	d.mu.RUnlock()
	if current != proc {
		return
	}
	d.resetForError(&ProtocolError{Cause: err})
}

// resetForError implements the "running -> initializing" transition:
// terminate the child, cancel everything active with the triggering
// error, then respawn and begin a fresh version handshake.
func (d *Driver) resetForError(err error) {
	from := d.state.Load()
	if from == StateShutdown {
		return
	}
	logProtocolError(d.opts.logger, err)
	d.dispatcher.CancelAllActive(err)
	d.dispatcher.FailAllPending(err)
	d.terminateChild()

	d.state.Store(StateInitializing)
	logLifecycle(d.opts.logger, from, StateInitializing, err.Error())
	d.initFuture = NewFuture[struct{}]()
	d.startChild(d.spawnCtx)
}

func (d *Driver) terminateChild() {
	d.mu.Lock()
	proc := d.proc
	d.proc = nil
	d.mu.Unlock()
	if proc != nil {
		go proc.Kill()
	}
}

// Reinit performs a user-requested hard reset: every active and pending
// compilation fails with a lifecycle error, the child is replaced, and a
// fresh version handshake begins.
func (d *Driver) Reinit(ctx context.Context) *Future[struct{}] {
	out := NewFuture[struct{}]()
	d.loop.Submit(func() {
		if d.state.Load() == StateInitializing {
			// A handshake is already in flight: chain onto it rather than
			// racing a second spawn against the first.
			chainTo(d.initFuture, out)
			return
		}

		err := &LifecycleError{State: d.state.Load().String(), Op: "user-requested reinit"}
		d.dispatcher.CancelAllActive(err)
		d.dispatcher.FailAllPending(err)
		d.terminateChild()

		d.state.Store(StateInitializing)
		newInit := NewFuture[struct{}]()
		d.initFuture = newInit
		chainTo(newInit, out)
		d.startChild(ctx)
	})
	return out
}

// Shutdown begins an orderly shutdown: no new work is accepted; in-flight
// compilations are allowed to finish naturally; once the active table
// drains, the child is terminated.
func (d *Driver) Shutdown() *Future[struct{}] {
	out := NewFuture[struct{}]()
	if d.state.Load() == StateShutdown {
		// The loop has stopped; a submitted task would never run.
		out.Resolve(struct{}{})
		return out
	}
	d.loop.Submit(func() {
		from := d.state.Load()
		switch from {
		case StateShutdown:
			out.Resolve(struct{}{})
			return
		case StateQuiescing:
			// Already draining from an earlier Shutdown call: chain onto
			// it rather than re-triggering the quiesce/terminate sequence.
			chainTo(d.shutdownFuture, out)
			return
		}
		if !d.state.TryTransition(StateRunning, StateQuiescing) {
			// Not running (e.g. still initializing, or already broken):
			// there is nothing to drain naturally; fail pending and go
			// straight to shutdown.
			d.dispatcher.FailAllPending(&LifecycleError{State: from.String(), Op: "shutdown"})
			d.finishShutdown(out)
			return
		}
		logLifecycle(d.opts.logger, from, StateQuiescing, "user shutdown")
		d.shutdownFuture = out
		qf := d.dispatcher.Quiesce(&LifecycleError{State: "quiescing", Op: "shutdown"})
		go func() {
			qf.Wait()
			d.loop.Submit(func() { d.finishShutdown(out) })
		}()
	})
	return out
}

// chainTo resolves/rejects dst the same way src eventually does.
func chainTo(src, dst *Future[struct{}]) {
	go func() {
		_, err := src.Wait()
		if err != nil {
			dst.Reject(err)
		} else {
			dst.Resolve(struct{}{})
		}
	}()
}

func (d *Driver) finishShutdown(out *Future[struct{}]) {
	from := d.state.Load()
	d.state.Store(StateShutdown)
	logLifecycle(d.opts.logger, from, StateShutdown, "shutdown complete")
	d.terminateChild()
	d.loop.Stop()
	out.Resolve(struct{}{})
}

// compile is the shared submission path for CompileString/CompileFile.
// stringInput is true only for CompileString, since StringImporter is
// meaningless for a file input that already has a real path to resolve
// relative imports against.
func (d *Driver) compile(ctx context.Context, req protocol.CompileRequest, opts CompileOptions, stringInput bool) (*CompileResult, error) {
	if st := d.state.Load(); st == StateShutdown {
		return nil, &LifecycleError{State: st.String(), Op: "compile"}
	}
	var stringImporter importerEntry
	if stringInput {
		stringImporter = opts.StringImporter
	}
	bindings, wireImporters := d.buildImporters(stringImporter, opts.Importers)
	req.Importers = wireImporters
	fm := mergeFunctions(d.globalFunctions, opts.Functions)
	req.GlobalFunctions = globalFunctionSignatures(fm)

	params := compileParams{
		input:     req,
		timeout:   d.timeout,
		bindings:  bindings,
		functions: fm,
	}

	futureCh := make(chan *Future[*CompileResult], 1)
	d.loop.Submit(func() {
		futureCh <- d.dispatcher.Submit(d.state.Load(), params)
	})

	select {
	case f := <-futureCh:
		select {
		case <-f.Done():
			return f.Wait()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// buildImporters assembles the full importer list for one compilation.
// stringImporter, if non-nil, is the CompileString input's own importer
// and must occupy the first slot, ahead of the global and per-call
// importers (which shift accordingly).
func (d *Driver) buildImporters(stringImporter importerEntry, perCall []importerEntry) ([]importerBinding, []*protocol.WireImporter) {
	entries := make([]importerEntry, 0, 1+len(d.globalImporters)+len(perCall))
	if stringImporter != nil {
		entries = append(entries, stringImporter)
	}
	entries = append(entries, d.globalImporters...)
	entries = append(entries, perCall...)
	wire, bindings := buildWireImporters(entries)
	return bindings, wire
}

// CompileString compiles source text.
func (d *Driver) CompileString(ctx context.Context, source, url string, syntax Syntax, opts CompileOptions) (*CompileResult, error) {
	req := protocol.CompileRequest{
		InputKind:      protocol.CompileInputString,
		InputString:    source,
		InputURL:       url,
		InputSyntax:    syntax,
		Style:          opts.Style,
		SourceMap:      opts.SourceMap,
		SourceMapStyle: opts.SourceMapStyle,
	}
	return d.compile(ctx, req, opts, true)
}

// CompileFile compiles the stylesheet at path.
func (d *Driver) CompileFile(ctx context.Context, path string, opts CompileOptions) (*CompileResult, error) {
	req := protocol.CompileRequest{
		InputKind:      protocol.CompileInputPath,
		InputPath:      path,
		Style:          opts.Style,
		SourceMap:      opts.SourceMap,
		SourceMapStyle: opts.SourceMapStyle,
	}
	return d.compile(ctx, req, opts, false)
}

// Pid reports the current child process id, or 0 if no child is running.
func (d *Driver) Pid() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.proc == nil {
		return 0
	}
	return d.proc.Pid()
}

// ProtocolVersion reports the protocol version string from the last
// successful handshake.
func (d *Driver) ProtocolVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version.ProtocolVersion
}

// PackageVersion reports the compiler package's own version string.
func (d *Driver) PackageVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version.PackageVersion
}

// CompilerVersion reports the underlying Sass compiler's version string.
func (d *Driver) CompilerVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version.CompilerVersion
}

// CompilerVersionName reports the underlying Sass compiler's human
// readable name.
func (d *Driver) CompilerVersionName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version.CompilerName
}

// StartCount reports how many times the driver has spawned a child
// process.
func (d *Driver) StartCount() int64 { return d.startCount.Load() }

// State reports the driver's current lifecycle state.
func (d *Driver) State() DriverState { return d.state.Load() }
