package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestBuild_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := build(Options{Level: "warn"}, &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("patient_id", "p1").Msg("kept")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(out), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", out, err)
	}
	if line["message"] != "kept" || line["patient_id"] != "p1" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestBuild_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emr.log")
	var buf bytes.Buffer
	logger := build(Options{Level: "info", File: path}, &buf)

	logger.Info().Msg("to both")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") {
		t.Errorf("file sink missing line: %s", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Errorf("stdout sink missing line: %s", buf.String())
	}
}
