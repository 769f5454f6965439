package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docaudit.log")
	log, err := New(Config{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("analysis complete")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.True(t, strings.Contains(out, `"message":"analysis complete"`))
	assert.False(t, strings.Contains(out, "hidden"))
}
