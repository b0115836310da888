package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Backup.Enabled || cfg.Serve.Port != 8080 || cfg.Logs.Level != "info" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Detect.Threshold != 0.5 || cfg.Detect.FilenameBoost != 0.4 || cfg.Detect.SamplePenalty != 0.25 {
		t.Fatalf("detect defaults = %+v", cfg.Detect)
	}
	if cfg.Path != "" {
		t.Fatalf("Path = %q", cfg.Path)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for a missing explicit config")
	}
}

func TestLoadOverridesAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
profileDirs: [profiles, /abs/profiles]
backup:
  enabled: false
  dir: backups
patchLog: logs/patches.jsonl
detect:
  threshold: 0.7
serve:
  port: 9090
logs:
  level: debug
  file: logs/mrdf.log
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProfileDirs[0] != filepath.Join(dir, "profiles") || cfg.ProfileDirs[1] != "/abs/profiles" {
		t.Fatalf("ProfileDirs = %v", cfg.ProfileDirs)
	}
	if cfg.Backup.Enabled || cfg.Backup.Dir != filepath.Join(dir, "backups") {
		t.Fatalf("Backup = %+v", cfg.Backup)
	}
	if cfg.PatchLog != filepath.Join(dir, "logs", "patches.jsonl") {
		t.Fatalf("PatchLog = %q", cfg.PatchLog)
	}
	opts := cfg.DetectOptions()
	if opts.Threshold != 0.7 || opts.FilenameBoost != 0.4 || opts.Base != 0.5 {
		t.Fatalf("DetectOptions = %+v", opts)
	}
	if cfg.Serve.Port != 9090 || cfg.Logs.Level != "debug" || cfg.Logs.MaxSizeMB != 10 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"threshold": "detect:\n  threshold: 1.5\n",
		"port":      "serve:\n  port: 70000\n",
		"level":     "logs:\n  level: loud\n",
		"unknown":   "colour: blue\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Serve.Port = 1234
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Serve.Port != 1234 {
		t.Fatalf("Port = %d", back.Serve.Port)
	}
}
