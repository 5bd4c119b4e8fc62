package util

import (
	"context"
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex
)

// InitLogger initializes the global logger instance
func InitLogger(logLevel, logFile string, debugToConsole bool, format LogFormat) error {
	logger, err := NewLogger(logLevel, logFile, debugToConsole, format)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger replaces the global logger; nil silences logging
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = logger
}

func current() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LogCtx returns the global logger enriched with the context's refresh id and entity.
// Without a configured logger the returned logger discards everything.
func LogCtx(ctx context.Context) LoggerInterface {
	if l := current(); l != nil {
		return l.WithContext(ctx)
	}
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field)                        {}
func (nopLogger) Debugf(string, ...interface{})                 {}
func (nopLogger) Info(string, ...Field)                         {}
func (nopLogger) Infof(string, ...interface{})                  {}
func (nopLogger) Warn(string, ...Field)                         {}
func (nopLogger) Warnf(string, ...interface{})                  {}
func (nopLogger) Error(string, ...Field)                        {}
func (nopLogger) Errorf(string, ...interface{})                 {}
func (n nopLogger) With(...Field) LoggerInterface               { return n }
func (n nopLogger) WithContext(context.Context) LoggerInterface { return n }
func (nopLogger) SetLevel(LogLevel)                             {}
func (nopLogger) AddOutput(Output)                              {}

func LogInfo(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, args...)
	}
}
