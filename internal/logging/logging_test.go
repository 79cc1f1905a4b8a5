package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{Level: "debug", Style: StyleJSON})
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger = NewLogger(&Config{Level: "warn", Style: StyleTerminal})
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	logger = NewLogger(&Config{Level: "bogus"})
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger = NewLogger(&Config{Style: StyleNoop})
	require.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
