package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")
	var buf bytes.Buffer

	log, err := New(Options{Level: "info", Format: FormatJSON, Out: &buf})
	require.NoError(t, err)
	log.Debug().Msg("hidden")
	log.Info().Str("root", "/tmp/pkg").Msg("scan")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scan", line["message"])
	assert.Equal(t, "pybridge", line["app"])
	assert.Equal(t, "/tmp/pkg", line["root"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")
	var buf bytes.Buffer

	log, err := New(Options{Format: FormatJSON, Out: &buf})
	require.NoError(t, err)
	log.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	log.Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	var buf bytes.Buffer

	log, err := New(Options{Level: "error", Format: FormatConsole, Out: &buf})
	require.NoError(t, err)
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), `"message":"visible"`)
}

func TestNew_Invalid(t *testing.T) {
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")

	_, err := New(Options{Level: "chatty"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
