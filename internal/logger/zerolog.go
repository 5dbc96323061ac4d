package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level LogLevel) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level.zerologLevel()).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

// NewConsoleLogger writes human-readable lines, colored when w is a terminal.
func NewConsoleLogger(w io.Writer, level LogLevel) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr}
	return NewZerolog(consoleWriter, level)
}

// New picks the writer for format: "json" emits one object per line, anything
// else the console layout.
func New(w io.Writer, format string, level LogLevel) *ZerologAdapter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return NewZerolog(w, level)
	}
	return NewConsoleLogger(w, level)
}

// With returns a child adapter that stamps fields, such as a search run_id,
// on every entry.
func (z *ZerologAdapter) With(fields map[string]interface{}) *ZerologAdapter {
	return &ZerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}

// WithFields attaches fields to l when it supports context fields and
// returns l unchanged otherwise.
func WithFields(l Logger, fields map[string]interface{}) Logger {
	if z, ok := l.(*ZerologAdapter); ok {
		return z.With(fields)
	}
	return l
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	event := z.logger.Info().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	event := z.logger.Error().Str("component", component).Err(err)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg("operation failed")
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	event := z.logger.Warn().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	event := z.logger.Debug().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}
