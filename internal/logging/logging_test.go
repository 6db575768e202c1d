package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		mode  string
		debug bool
	}{
		{"development", true},
		{"production", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			l, err := New(tt.mode)
			if err != nil {
				t.Fatalf("New(%q): %v", tt.mode, err)
			}
			defer Sync(l)
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}
