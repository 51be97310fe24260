package internal

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	t.Cleanup(func() {
		SetDebug(false)
		SetQuiet(false)
	})

	tests := []struct {
		name  string
		debug bool
		quiet bool
		want  slog.Level
	}{
		{name: "default", want: slog.LevelInfo},
		{name: "quiet", quiet: true, want: slog.LevelWarn},
		{name: "debug", debug: true, want: slog.LevelDebug},
		{name: "debug wins over quiet", debug: true, quiet: true, want: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDebug(tt.debug)
			SetQuiet(tt.quiet)
			assert.Equal(t, tt.want, LogLevel())
		})
	}
}

func TestVersionStringLocal(t *testing.T) {
	if !IsLocal() {
		t.Skip("built with version linker flags")
	}
	assert.Equal(t, defaultLocalBuild, VersionString())
	assert.Equal(t, defaultUndefined, Version())
}
