package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNamedAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf).Named("pending")
	l.Info().Int("total", 3).Msg("counts changed")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["component"] != "pending" {
		t.Errorf("component = %v, want pending", line["component"])
	}
	if line["message"] != "counts changed" {
		t.Errorf("message = %v, want %q", line["message"], "counts changed")
	}
}

func TestNopAndOrNop(t *testing.T) {
	// Must not panic
	Nop().Info().Msg("discarded")
	OrNop(nil).Errorf("discarded %d", 1)

	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	if OrNop(l) != l {
		t.Error("OrNop(l) should return l unchanged")
	}
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.SetLevel(zerolog.WarnLevel)

	l.Infof("hidden")
	l.Warnf("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nabotix.log")
	l := NewLogger(Options{File: path, Level: "debug"})
	defer l.Close()

	l.Debug().Msg("to file")
	if l.file == nil || l.file.Filename != path {
		t.Fatalf("rotating file not configured for %s", path)
	}
	if l.file.MaxSize != 10 || l.file.MaxBackups != 5 {
		t.Errorf("rotation defaults = %d MB / %d backups, want 10 / 5", l.file.MaxSize, l.file.MaxBackups)
	}
}
