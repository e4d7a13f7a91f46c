package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Str("stage", "generate").Msg("dispatched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "generate", entry["stage"])
	assert.Equal(t, "dispatched", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Debug().Msg("hidden")
	Info().Msg("hidden")
	assert.Empty(t, buf.String())

	Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "chatty", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestInit_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "pretty", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Error().Msg("export failed")
	assert.Contains(t, buf.String(), "export failed")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestCtx_FallsBackToShared(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Ctx(context.Background()).Info().Msg("from background")
	assert.Contains(t, buf.String(), "from background")

	buf.Reset()
	Ctx(WithContext(context.Background())).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}
