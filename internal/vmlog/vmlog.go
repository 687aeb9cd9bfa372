// Package vmlog threads a structured logger through realm construction,
// plugin loading, and unhandled-rejection reporting, backed by
// *zap.Logger rather than the standard library's log package.
package vmlog

import "go.uber.org/zap"

// Logger is the narrow surface the VM depends on, letting a host supply its
// own *zap.Logger (or zap.NewNop()) without this package dictating the
// sink/encoder configuration.
type Logger struct {
	z *zap.Logger
}

// New wraps an existing *zap.Logger. A nil logger is treated as a no-op
// logger, so callers never have to nil-check before logging.
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Nop returns a silent logger, the default for a VM with no host-configured
// sink.
func Nop() *Logger { return New(nil) }

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a child logger decorated with the given fields (e.g. a run
// ID minted by google/uuid at the start of evaluateScript).
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Sync flushes any buffered log entries; hosts should defer this after
// constructing a VM with a file/network-backed zap core.
func (l *Logger) Sync() error { return l.z.Sync() }
