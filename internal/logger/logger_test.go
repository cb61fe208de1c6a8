package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	logManager = nil
	once = sync.Once{}
}

func TestUninitializedLoggerDiscards(t *testing.T) {
	reset()
	l := NewLogger("quiet")
	assert.NotPanics(t, func() {
		l.Info("hello")
		l.Errorf("failed: %d", 1)
		l.Close()
	})
}

func TestLoggerWritesViewAndFile(t *testing.T) {
	reset()
	defer reset()

	dir := t.TempDir()
	var view bytes.Buffer
	require.NoError(t, InitLogger(true, dir, &view))

	l := NewLogger("client")
	l.Info("models fetched")
	l.Warnf("skipping frame %q", "data: {")
	l.Close()
	l.Close()

	assert.Contains(t, view.String(), "[green]DEBUG (client): models fetched[-]")
	assert.Contains(t, view.String(), "[yellow]DEBUG (client): skipping frame")

	files, err := filepath.Glob(filepath.Join(dir, "ragchat_log_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	contents, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(contents), "[client] INFO: models fetched")
	assert.Contains(t, string(contents), "[client] WARN: skipping frame")
}

func TestInitLoggerBadPath(t *testing.T) {
	reset()
	defer reset()

	err := InitLogger(false, filepath.Join(t.TempDir(), "missing", "dir"), nil)
	assert.Error(t, err)
	assert.Nil(t, logManager)
}

func TestTypesString(t *testing.T) {
	assert.Equal(t, "INFO", Info.String())
	assert.Equal(t, "WARN", Warn.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "FATAL", Fatal.String())
	assert.Equal(t, "UNKNOWN", Types(42).String())
}
