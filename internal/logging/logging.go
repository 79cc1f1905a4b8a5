// Package logging builds zap loggers for the command-line
// tools.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a log level name such as "debug" or "info".
type Level string

// Style selects the log encoding.
type Style string

const (
	StyleTerminal Style = "terminal"
	StyleJSON     Style = "json"
	StyleNoop     Style = "noop"
)

// Config configures NewLogger.
type Config struct {
	Level Level
	Style Style
}

// NewLogger creates a logger writing to stderr.
// Unknown levels fall back to info and unknown styles to
// terminal.
func NewLogger(c *Config) *zap.Logger {
	if c == nil {
		c = &Config{}
	}
	if c.Style == StyleNoop {
		return zap.NewNop()
	}
	level, err := zapcore.ParseLevel(strings.ToLower(string(c.Level)))
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	if c.Style == StyleJSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
