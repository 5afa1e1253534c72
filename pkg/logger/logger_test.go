package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	Init("warn")
	Debugf("hidden %d", 1)
	Infof("also hidden")
	Warnf("visible warning")
	Errorf("visible error")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible warning")
	require.Contains(t, out, "visible error")
	require.Contains(t, out, "[WARN]")
	require.Contains(t, out, "[ERROR]")
}

func TestInit_UnknownFallsBackToInfo(t *testing.T) {
	Init("nonsense")
	require.Equal(t, "info", LevelString())

	Init("DEBUG")
	require.Equal(t, "debug", LevelString())

	Init("warning")
	require.Equal(t, "warn", LevelString())
}

func TestSingleStringVariants(t *testing.T) {
	buf := capture(t)
	Init("debug")
	Debug("a 100% literal message")
	require.Contains(t, buf.String(), "a 100% literal message")
}
