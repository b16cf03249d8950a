package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty path is a no-op logger", func(t *testing.T) {
		t.Parallel()

		l, err := New("info", "")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Parallel()

		_, err := New("loud", "stderr")
		assert.ErrorContains(t, err, `parse log level "loud"`)
	})

	t.Run("writes JSON to file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "widget.log")
		l, err := New("debug", path)
		require.NoError(t, err)

		l.Debug("submitted")
		_ = l.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"submitted"`)
	})
}

func TestTest(t *testing.T) {
	t.Parallel()

	var output bytes.Buffer
	Test(&output).Sugar().Debugw("hello", "key", "value")

	assert.Contains(t, output.String(), "hello")
	assert.Contains(t, output.String(), `"key": "value"`)
}
