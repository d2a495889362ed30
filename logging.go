package embeddedsass

import (
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
)

// structlog is the alias this package logs through everywhere, so a
// future backend swap (e.g. logiface-slog) only touches this one type
// reference.
type structlog = logiface.Logger[*izerolog.Event]

func logLifecycle(l *structlog, from, to DriverState, reason string) {
	if l == nil {
		return
	}
	l.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("reason", reason).
		Log("driver state transition")
}

func logChildSpawn(l *structlog, path string, pid int) {
	if l == nil {
		return
	}
	l.Info().
		Str("path", path).
		Int("pid", pid).
		Log("spawned compiler process")
}

func logChildExit(l *structlog, pid int, err error) {
	if l == nil {
		return
	}
	b := l.Warning().Int("pid", pid)
	if err != nil {
		b = b.Err(err)
	}
	b.Log("compiler process exited unexpectedly")
}

func logProtocolError(l *structlog, err error) {
	if l == nil {
		return
	}
	l.Err().Err(err).Log("protocol error")
}

func logHostCallbackError(l *structlog, op string, compilationID int64, err error) {
	if l == nil {
		return
	}
	l.Warning().
		Str("op", op).
		Int("compilation_id", int(compilationID)).
		Err(err).
		Log("host callback failed")
}
