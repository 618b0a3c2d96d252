package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{raw: "", want: zapcore.InfoLevel},
		{raw: "debug", want: zapcore.DebugLevel},
		{raw: " WARN ", want: zapcore.WarnLevel},
		{raw: "error", want: zapcore.ErrorLevel},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNewHonoursLevel(t *testing.T) {
	for _, development := range []bool{false, true} {
		log, level, err := New(Config{Level: "warn", Development: development})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

		level.SetLevel(zapcore.DebugLevel)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	}

	_, _, err := New(Config{Level: "loud"})
	require.Error(t, err)
}
