package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigureWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	ConfigureWriter(&buf, false)
	For("core").Debug("hidden")
	For("core").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "package=core")

	buf.Reset()
	ConfigureWriter(&buf, true)
	For("gitclient").Debug("traced", "ref", "main")
	assert.Contains(t, buf.String(), "traced")
	assert.Contains(t, buf.String(), "ref=main")
}
