package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/tosih/mrdf-tool/pkg/config"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]pterm.LogLevel{
		"debug": pterm.LogLevelDebug, "INFO": pterm.LogLevelInfo, "": pterm.LogLevelInfo,
		"warning": pterm.LogLevelWarn, "error": pterm.LogLevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("unknown level accepted")
	}
}

func TestSetupWritesJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "mrdf.log")
	var console bytes.Buffer
	l, err := Setup(config.LogConfig{Level: "info", File: file, MaxSizeMB: 1}, &console)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	l.Debug("hidden", "k", 1)
	l.Info("saved file", "path", "car_stats.mrdf", "ranges", 2)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !strings.Contains(console.String(), "saved file") {
		t.Fatalf("console output = %q", console.String())
	}
	if strings.Contains(console.String(), "hidden") {
		t.Fatalf("debug record printed at info level")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log file has %d lines: %q", len(lines), data)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	found := false
	for _, v := range rec {
		if v == "saved file" {
			found = true
		}
	}
	if !found || rec["path"] != "car_stats.mrdf" {
		t.Fatalf("record = %v", rec)
	}
}

func TestNilAndDiscardLoggers(t *testing.T) {
	var l *Logger
	l.Info("nothing")
	if err := l.Close(); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
	Discard().Error("dropped", "k", "v")
}
