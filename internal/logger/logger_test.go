package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestFormatFieldsSortsKeys(t *testing.T) {
	got := formatFields(Fields{"track": 1, "dur": 2.5, "name": "yaman"})
	assert.Equal(t, "{dur=2.50, name=yaman, track=1}", got)
	assert.Equal(t, "", formatFields(nil))
}

func TestLevelThreshold(t *testing.T) {
	buf := captureLog(t)
	SetLevel(LevelWarn)
	Info("hidden", nil)
	Debug("hidden too", nil)
	Warn("shown", Fields{"k": "v"})
	Error("failed", errors.New("boom"), nil)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown {k=v}")
	assert.Contains(t, out, "[ERROR] failed: boom")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	} {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
