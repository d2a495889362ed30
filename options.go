package embeddedsass

import (
	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// driverOptions holds configuration accumulated from DriverOption values.
type driverOptions struct {
	compilerPath string
	logger       *logiface.Logger[*izerolog.Event]
}

func defaultDriverOptions() driverOptions {
	return driverOptions{
		logger: izerolog.L.New(izerolog.L.WithZerolog(zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger())),
	}
}

// DriverOption configures a Driver at construction time.
type DriverOption interface {
	applyDriver(*driverOptions) error
}

type driverOptionFunc struct {
	fn func(*driverOptions) error
}

func (o *driverOptionFunc) applyDriver(opts *driverOptions) error { return o.fn(opts) }

// WithCompilerPath sets the path to the dart-sass-embedded (or compatible)
// executable. Required: there is no default search path.
func WithCompilerPath(path string) DriverOption {
	return &driverOptionFunc{func(opts *driverOptions) error {
		opts.compilerPath = path
		return nil
	}}
}

// WithLogger overrides the driver's structured logger. The zero value
// (not calling this option) uses a console-writer zerolog logger through
// izerolog, matching that package's own default wiring.
func WithLogger(logger *logiface.Logger[*izerolog.Event]) DriverOption {
	return &driverOptionFunc{func(opts *driverOptions) error {
		opts.logger = logger
		return nil
	}}
}
