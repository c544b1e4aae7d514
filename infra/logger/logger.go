package logger

import corelogger "github.com/canada7700/finish-line-calendar-app-sub000/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. The output format is chosen
// from the APP_ENV variable and the level from Configure.
func New(component string) Logger {
	return NewZerologLogger(component)
}
