// Package logging provides the rolling-file logger used once the TUI owns
// the terminal, plus a console logger for startup-fatal diagnostics before
// that point.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the adapter every subsystem logs through.
type Logger interface {
	Error(msg string, err error, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type adapter struct {
	logger *zap.Logger
}

var _ Logger = (*adapter)(nil)

func (a *adapter) Error(msg string, err error, fields ...zap.Field) {
	a.logger.Error(msg, append(fields, zap.Error(err))...)
}
func (a *adapter) Warn(msg string, fields ...zap.Field)  { a.logger.Warn(msg, fields...) }
func (a *adapter) Info(msg string, fields ...zap.Field)  { a.logger.Info(msg, fields...) }
func (a *adapter) Debug(msg string, fields ...zap.Field) { a.logger.Debug(msg, fields...) }
func (a *adapter) With(fields ...zap.Field) Logger {
	return &adapter{logger: a.logger.With(fields...)}
}

// NewConsole builds a logger for the brief window before the TUI takes the
// screen (startup diagnostics: missing transcoder, no audio device).
func NewConsole() Logger {
	logger, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return &adapter{logger: logger}
}

// NewFile builds a logger writing JSON lines to a rolling file so the
// terminal remains clean while the TUI is active.
func NewFile(filename string, maxSizeMB, maxBackups, maxAgeDays int, compress bool) Logger {
	hook := lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&hook),
		zapcore.DebugLevel,
	)
	logger := zap.New(core, zap.AddCallerSkip(1))
	return &adapter{logger: logger}
}
