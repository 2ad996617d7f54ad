package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name           string
		debug, verbose bool
		want           zerolog.Level
	}{
		{"default", false, false, zerolog.WarnLevel},
		{"verbose", false, true, zerolog.InfoLevel},
		{"debug", true, false, zerolog.DebugLevel},
		{"debug wins", true, true, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.debug, tt.verbose))
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, false)

	log.Info().Msg("Extracting records")
	assert.Empty(t, buf.String())

	log.Warn().Msg("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, true)

	log.Info().Msg("Scanning 1.0MB dump")
	log.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), "Scanning 1.0MB dump")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, false)

	log.Warn().Msg("plain")
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.False(t, isTerminal(&buf))
}
