package embeddedsass

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleErrorMessage(t *testing.T) {
	err := &LifecycleError{State: "shutdown", Op: "compile"}
	assert.Equal(t, "embeddedsass: compile: driver is shutdown", err.Error())
}

func TestProtocolErrorUnwrap(t *testing.T) {
	cause := errors.New("truncated frame")
	err := &ProtocolError{Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "truncated frame")
}

func TestCompileErrorMessageWithSpan(t *testing.T) {
	err := &CompileError{
		Message: "unexpected token",
		Span:    &SourceSpan{URL: "input.scss", StartLine: 3, StartColumn: 5},
	}
	assert.Equal(t, "embeddedsass: compile error at input.scss:3:5: unexpected token", err.Error())
}

func TestCompileErrorMessageWithoutSpan(t *testing.T) {
	err := &CompileError{Message: "stop"}
	assert.Equal(t, "embeddedsass: compile error: stop", err.Error())
}

func TestHostErrorUnwrap(t *testing.T) {
	cause := errors.New("importer declined")
	err := &HostError{Op: "canonicalize", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestWrapErrorNilCause(t *testing.T) {
	assert.Nil(t, WrapError("whatever", nil))
}

func TestWrapErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError("spawning child", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "spawning child")
}
