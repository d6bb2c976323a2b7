package xeno

// Logger is the leveled logging surface used across the ingestion core.
// Adapters for concrete logging backends live in their own packages.
type Logger interface {
	Info(msg string)
	Debug(msg string)
	Warn(msg string)
	Error(msg string, err error)
}

// Loggable is implemented by collaborators that accept an optional logger
// after construction.
type Loggable interface {
	SetLogger(Logger)
}

// NopLogger discards everything. It is the default until a real logger is
// injected.
type NopLogger struct{}

var _ Logger = (*NopLogger)(nil)

func (*NopLogger) Debug(msg string) {} //nolint:all

func (*NopLogger) Warn(msg string) {} //nolint:all

func (*NopLogger) Error(msg string, err error) {} //nolint:all

func (*NopLogger) Info(msg string) {} //nolint:all
