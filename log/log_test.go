package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{"debug", LevelDebug, zapcore.DebugLevel},
		{"info", LevelInfo, zapcore.InfoLevel},
		{"warn", LevelWarn, zapcore.WarnLevel},
		{"error", LevelError, zapcore.ErrorLevel},
		{"unknown falls back to info", "verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLevel(tt.level)
			assert.Equal(t, tt.want, zapLevel.Level())
		})
	}
	SetLevel(LevelInfo)
}

type recordingLogger struct {
	Logger
	messages []string
}

func (r *recordingLogger) Infof(format string, args ...any) {
	r.messages = append(r.messages, format)
}

func TestDefaultReplaceable(t *testing.T) {
	orig := Default
	defer func() { Default = orig }()

	rec := &recordingLogger{}
	Default = rec
	Infof("hello %s", "world")
	assert.Equal(t, []string{"hello %s"}, rec.messages)
}
