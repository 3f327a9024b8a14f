package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Str("guild", "g1").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "g1", line["guild"])
	assert.Equal(t, "warn", line["level"])
}

func TestSetupFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	path := filepath.Join(t.TempDir(), "warden.log")
	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Level: "debug", Format: "console", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to both"`)
	assert.Contains(t, buf.String(), "to both")
}

func TestSetupRejectsBadLevel(t *testing.T) {
	_, _, err := Setup(Options{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
