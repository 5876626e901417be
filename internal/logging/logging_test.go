package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, opts.Level)
	assert.Equal(t, log.JSONFormatter, opts.Formatter)
	assert.True(t, opts.ReportTimestamp)

	opts, err = ParseOptions("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)

	_, err = ParseOptions("chatty", "")
	assert.Error(t, err)
	_, err = ParseOptions("", "xml")
	assert.Error(t, err)
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: log.InfoLevel, Formatter: log.LogfmtFormatter})

	logger.Debug("hidden")
	logger.Info("saved todo file", "tasks", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "saved todo file")
	assert.Contains(t, out, "tasks=3")
}

func TestSetupInstallsDefault(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, Options{Level: log.DebugLevel, Formatter: log.TextFormatter})
	log.Debug("merged lists", "hunks", 2)

	assert.Contains(t, buf.String(), "merged lists")
}
