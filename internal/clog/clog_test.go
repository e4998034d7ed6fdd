package clog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Warn)
	l.Debugf("hidden")
	l.Infof("also hidden")
	l.Warnf("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
}

func TestLoggerNeverColorsANonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Debug)
	l.Infof("plain")
	assert.False(t, strings.Contains(buf.String(), "\x1b["))
}

func TestWithAppendsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Debug).With("worker", 3)
	l.Infof("tick")
	assert.Contains(t, buf.String(), "worker=3")
}
