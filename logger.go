package croft

import (
	"log"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogResponseBodyError(err error)
	LogResponseWriteError(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("croft: unhandled serve error: %s", err)
}

func (l stdLogger) LogResponseBodyError(err error) {
	l.Logger.Printf("croft: response body stream error: %s", err)
}

func (l stdLogger) LogResponseWriteError(err error) {
	l.Logger.Printf("croft: response write error: %s", err)
}

// NewStdLogger adapts a standard library logger.
func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled serve error", zap.Error(err))
}

func (l zapLogger) LogResponseBodyError(err error) {
	l.Logger.Error("response body stream error", zap.Error(err))
}

func (l zapLogger) LogResponseWriteError(err error) {
	l.Logger.Error("response write error", zap.Error(err))
}

// NewZapLogger adapts a zap logger.
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{l.Named("croft")}
}

// TestLogger counts logged events for assertions in tests.
type TestLogger struct {
	tb testing.TB

	NumUnhandledServeError int64
	NumResponseBodyError   int64
	NumResponseWriteError  int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumUnhandledServeError, 1)
	l.tb.Logf("croft: unhandled serve error: %s", err)
}

func (l *TestLogger) LogResponseBodyError(err error) {
	atomic.AddInt64(&l.NumResponseBodyError, 1)
	l.tb.Logf("croft: response body stream error: %s", err)
}

func (l *TestLogger) LogResponseWriteError(err error) {
	atomic.AddInt64(&l.NumResponseWriteError, 1)
	l.tb.Logf("croft: response write error: %s", err)
}

var _ Logger = &TestLogger{}
