package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func restoreLevel(t *testing.T) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestSetLevelAppliesToExistingLoggers(t *testing.T) {
	restoreLevel(t)
	SetLevel("info")

	var buf bytes.Buffer
	early := newWithWriter("fill", &buf)

	early.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetLevel("debug")
	early.Debugf("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
	assert.Contains(t, buf.String(), `"component":"fill"`)

	buf.Reset()
	SetLevel("warn")
	early.Infof("quiet")
	assert.Empty(t, buf.String())
	early.Warnf("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetLevelIgnoresUnknownNames(t *testing.T) {
	restoreLevel(t)
	SetLevel(" ERROR ")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	SetLevel("loudest")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	SetLevel("")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}
