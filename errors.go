package embeddedsass

import "fmt"

// LifecycleError reports a violation of the compiler driver's state
// machine: an operation attempted while the driver is in a state that
// cannot service it (e.g. compiling after Shutdown).
type LifecycleError struct {
	// State is the driver state at the time of the violation, rendered via
	// DriverState.String().
	State string
	// Op names the operation that was rejected.
	Op string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("embeddedsass: %s: driver is %s", e.Op, e.State)
}

// ProtocolError reports a framing or encoding violation on the wire to or
// from the child compiler. A ProtocolError reported by the child, or found
// while routing one of the child's messages, resets the driver: see
// DriverState. A failed write of a compile request or a callout reply
// fails only the compilation it was written for.
type ProtocolError struct {
	Cause error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("embeddedsass: protocol error: %v", e.Cause)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// CompileError reports a compilation failure reported by the child
// compiler itself (a Sass syntax or evaluation error), as distinct from a
// ProtocolError or HostError. Span and StackTrace mirror the child's own
// diagnostic, when it supplied one.
type CompileError struct {
	Message    string
	Span       *SourceSpan
	StackTrace string
	LoadedURLs []string
}

func (e *CompileError) Error() string {
	if e.Span != nil && e.Span.URL != "" {
		return fmt.Sprintf("embeddedsass: compile error at %s:%d:%d: %s", e.Span.URL, e.Span.StartLine, e.Span.StartColumn, e.Message)
	}
	return fmt.Sprintf("embeddedsass: compile error: %s", e.Message)
}

// HostError describes a failure that originated on the host side of a
// callback. The driver sends an error returned by an importer or host
// function back to the child in the callout's response, and it does not
// recover a panicking callback.
type HostError struct {
	Op    string
	Cause error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("embeddedsass: %s: %v", e.Op, e.Cause)
}

func (e *HostError) Unwrap() error { return e.Cause }

// WrapError wraps cause with a message, returning nil if cause is nil. It
// exists so call sites read the same way regardless of which concrete
// error type they're adding context to.
func WrapError(msg string, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("embeddedsass: %s: %w", msg, cause)
}
