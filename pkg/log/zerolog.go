package log

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	z zerolog.Logger
}

// NewZerologLogger creates a JSON zerolog logger writing to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	z := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{z: z}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(z zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{z: z}
}

func (l *ZerologLogger) Debug(msg string, fields ...any) { l.emit(l.z.Debug(), msg, fields) }
func (l *ZerologLogger) Info(msg string, fields ...any)  { l.emit(l.z.Info(), msg, fields) }
func (l *ZerologLogger) Warn(msg string, fields ...any)  { l.emit(l.z.Warn(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields ...any) { l.emit(l.z.Error(), msg, fields) }

func (l *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{z: l.z.With().Fields(normalizeFields(fields)).Logger()}
}

func (l *ZerologLogger) Enabled(ctx context.Context, level Level) bool {
	return l.z.GetLevel() <= toZerologLevel(level)
}

// WarnError logs a library warning. Warnings implementing
// zerolog.LogObjectMarshaler are embedded as structured fields.
func (l *ZerologLogger) WarnError(w error) {
	e := l.z.Warn()
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		e = e.EmbedObject(m)
	}
	e.Msg(w.Error())
}

func (l *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	e.Fields(normalizeFields(fields)).Msg(msg)
}

// normalizeFields drops a dangling key so zerolog never sees an odd-length slice.
func normalizeFields(fields []any) []any {
	if len(fields)%2 == 1 {
		return fields[:len(fields)-1]
	}
	return fields
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
