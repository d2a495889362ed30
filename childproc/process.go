// Package childproc manages the lifetime of the embedded Sass compiler
// subprocess: spawning it, wiring its stdin/stdout to the frame codec, and
// reporting when it exits (see Process.Done and Process.Err).
package childproc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/joeycumines/go-embeddedsass/protocol"
)

// Process is a running compiler subprocess.
type Process struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc

	Frames *protocol.FrameReader
	writer *protocol.FrameWriter

	writeMu sync.Mutex

	waitOnce sync.Once
	exitCh   chan struct{}
	exitErr  error
}

// Start spawns path as a child process (with args, if any), wiring its
// stdin/stdout through the frame codec and discarding stderr (the
// compiler's own diagnostics arrive as LogEvent messages on the wire, not
// on stderr).
func Start(ctx context.Context, path string, args ...string) (*Process, error) {
	ctx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(ctx, path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("childproc: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("childproc: stdout pipe: %w", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("childproc: starting %s: %w", path, err)
	}

	p := &Process{
		cmd:    cmd,
		cancel: cancel,
		Frames: protocol.NewFrameReader(stdout),
		writer: protocol.NewFrameWriter(stdin),
		exitCh: make(chan struct{}),
	}
	go p.wait()
	return p, nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()
	p.waitOnce.Do(func() {
		p.exitErr = err
		close(p.exitCh)
	})
}

// WriteFrame sends one frame to the child's stdin. A write after the
// child has exited surfaces as an ordinary error (a wrapped EPIPE or
// io.ErrClosedPipe) — callers classify this as a recoverable protocol
// error, not a panic.
func (p *Process) WriteFrame(payload []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.writer.WriteFrame(payload); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return fmt.Errorf("childproc: write after child exited: %w", err)
		}
		return err
	}
	return nil
}

// Pid returns the child's process id.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Done is closed once the child has exited (whether requested via Kill or
// on its own). Err reports the wait result once Done is closed.
func (p *Process) Done() <-chan struct{} { return p.exitCh }

// Err reports the child's exit error, valid only after Done is closed.
func (p *Process) Err() error { return p.exitErr }

// Kill terminates the child and releases resources. Safe to call multiple
// times and safe to call after the child has already exited on its own.
func (p *Process) Kill() error {
	p.cancel()
	<-p.exitCh
	return nil
}
