package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", FormatJSON)

	log.Info().Msg("hidden")
	log.Warn().Str("module", "extract").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "extract", entry["module"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewWithWriterDefaults(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "nonsense", FormatConsole)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}
