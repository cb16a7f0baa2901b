package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, Log.GetLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())
}

func TestConfigure(t *testing.T) {
	defer Configure("debug", "info")

	Configure("release", "warn")
	assert.Equal(t, zerolog.WarnLevel, Log.GetLevel())
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestConfigureOutput(t *testing.T) {
	defer Configure("debug", "info")

	var buf bytes.Buffer
	ConfigureOutput(&buf, "release", "info")
	Log.Info().Str("component", "planner").Msg("hello")

	assert.Contains(t, buf.String(), `"component":"planner"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
