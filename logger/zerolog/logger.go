// Package zerolog adapts rs/zerolog to the xeno.Logger contract.
package zerolog

import (
	"io"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/rs/zerolog"
)

// Logger is the zerolog implementation of the xeno.Logger interface.
type Logger struct {
	Logger zerolog.Logger
}

var _ xeno.Logger = (*Logger)(nil)

// New creates a timestamped console logger for the given level writing to w.
func New(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{
		Logger: zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).
			Level(level).
			With().
			Timestamp().
			Logger(),
	}
}

func (l *Logger) Debug(msg string) {
	l.Logger.Debug().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.Logger.Warn().Msg(msg)
}

func (l *Logger) Error(msg string, err error) {
	l.Logger.Err(err).Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.Logger.Info().Msg(msg)
}
