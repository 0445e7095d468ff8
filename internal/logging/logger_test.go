package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"trace", logrus.TraceLevel},
		{"", logrus.InfoLevel},
		{"nonsense", logrus.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetLevel(tt.in), "GetLevel(%q)", tt.in)
	}
}

func TestSetupWritesToFile(t *testing.T) {
	prevOut := logrus.StandardLogger().Out
	prevLevel := logrus.GetLevel()
	prevFormatter := logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetOutput(prevOut)
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	base := filepath.Join(t.TempDir(), "getsneaks")
	Setup(LoggerSetupParams{LogFileName: base, LogLevel: "debug"})

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.WithField("miles", 3.1).Debug("recorded workout")

	data, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "recorded workout"))
	assert.True(t, strings.Contains(string(data), "miles=3.1"))
}
