package adapters

import (
	"github.com/apex/log"
)

// ApexLoggerAdapter implements LoggerAdapter on top of apex/log.
type ApexLoggerAdapter struct {
	level  LogLevel
	logger log.Interface
}

// Ensure ApexLoggerAdapter implements LoggerAdapter interface
var _ LoggerAdapter = (*ApexLoggerAdapter)(nil)

// NewApexLoggerAdapter creates a logger emitting messages at or above
// level. A nil logger means the apex/log package logger; at LogLevelDebug
// its handler is reused with the level lowered to debug, so the handler
// installed when the adapter is created is the one used.
func NewApexLoggerAdapter(logger log.Interface, level LogLevel) *ApexLoggerAdapter {
	if logger == nil {
		logger = packageLogger(level)
	}
	return &ApexLoggerAdapter{
		level:  level,
		logger: logger.WithField("sdk", "mobsquid"),
	}
}

func packageLogger(level LogLevel) log.Interface {
	l, ok := log.Log.(*log.Logger)
	if !ok || level != LogLevelDebug || l.Level <= log.DebugLevel {
		return log.Log
	}
	return &log.Logger{Handler: l.Handler, Level: log.DebugLevel}
}

func (a *ApexLoggerAdapter) shouldLog(level LogLevel) bool {
	return logLevelRank[level] >= logLevelRank[a.level]
}

func (a *ApexLoggerAdapter) Debug(message string, args ...interface{}) {
	if a.shouldLog(LogLevelDebug) {
		a.logger.Debugf(message, args...)
	}
}

func (a *ApexLoggerAdapter) Info(message string, args ...interface{}) {
	if a.shouldLog(LogLevelInfo) {
		a.logger.Infof(message, args...)
	}
}

func (a *ApexLoggerAdapter) Warn(message string, args ...interface{}) {
	if a.shouldLog(LogLevelWarn) {
		a.logger.Warnf(message, args...)
	}
}

func (a *ApexLoggerAdapter) Error(message string, args ...interface{}) {
	if a.shouldLog(LogLevelError) {
		a.logger.Errorf(message, args...)
	}
}
