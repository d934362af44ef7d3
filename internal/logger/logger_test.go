package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.WarnLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", JSON: true, Output: &buf})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("dispatch", zap.String("function", "store"))
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"dispatch"`)
	assert.Contains(t, out, `"function":"store"`)
}

func TestSetAndL(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	Set(l)

	Named("studio").Debug("ready")
	assert.Contains(t, buf.String(), "studio")
	assert.Contains(t, buf.String(), "ready")

	Set(nil)
	assert.NotNil(t, L())
}
