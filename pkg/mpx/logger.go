package mpx

import (
	"github.com/rs/zerolog"
)

// Logger receives leveled, structured log records from the clients.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Notice(msg string, fields map[string]interface{})
	Warning(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Critical(msg string, fields map[string]interface{})
	Emergency(msg string, fields map[string]interface{})
}

// Level selects one of the Logger methods.
type Level int

// Log levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelCritical
	LevelEmergency
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	case LevelEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Log dispatches msg to the method of logger matching level. A nil logger
// or an unknown level is a no-op.
func Log(logger Logger, level Level, msg string, fields map[string]interface{}) {
	if logger == nil {
		return
	}

	switch level {
	case LevelDebug:
		logger.Debug(msg, fields)
	case LevelInfo:
		logger.Info(msg, fields)
	case LevelNotice:
		logger.Notice(msg, fields)
	case LevelWarning:
		logger.Warning(msg, fields)
	case LevelError:
		logger.Error(msg, fields)
	case LevelCritical:
		logger.Critical(msg, fields)
	case LevelEmergency:
		logger.Emergency(msg, fields)
	}
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{})     {}
func (NopLogger) Info(string, map[string]interface{})      {}
func (NopLogger) Notice(string, map[string]interface{})    {}
func (NopLogger) Warning(string, map[string]interface{})   {}
func (NopLogger) Error(string, map[string]interface{})     {}
func (NopLogger) Critical(string, map[string]interface{})  {}
func (NopLogger) Emergency(string, map[string]interface{}) {}

// ZerologLogger adapts a zerolog.Logger to Logger. zerolog has no notice,
// critical or emergency levels; those records are written at the nearest
// zerolog level and tagged with a "severity" field.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (z *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	z.logger.Info().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Notice(msg string, fields map[string]interface{}) {
	z.logger.Info().Str("severity", LevelNotice.String()).Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Warning(msg string, fields map[string]interface{}) {
	z.logger.Warn().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	z.logger.Error().Fields(fields).Msg(msg)
}

func (z *ZerologLogger) Critical(msg string, fields map[string]interface{}) {
	z.logger.Error().Str("severity", LevelCritical.String()).Fields(fields).Msg(msg)
}

// Emergency logs at fatal level without exiting the process.
func (z *ZerologLogger) Emergency(msg string, fields map[string]interface{}) {
	z.logger.WithLevel(zerolog.FatalLevel).Str("severity", LevelEmergency.String()).Fields(fields).Msg(msg)
}
