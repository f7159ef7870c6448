package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriterFormats(t *testing.T) {
	tests := []struct {
		env       string
		wantJSON  bool
		wantDebug bool
	}{
		{"dev", false, true},
		{"staging", true, true},
		{"prod", true, false},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(tt.env, &buf)

			log.Debug("debug line")
			log.Info("info line", "id", 1)

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("json output = %v, want %v\n%s", got, tt.wantJSON, out)
			}
		})
	}
}
