package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tosih/mrdf-tool/pkg/detect"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration
type Config struct {
	ProfileDirs []string     `yaml:"profileDirs"`
	Backup      BackupConfig `yaml:"backup"`
	PatchLog    string       `yaml:"patchLog"`
	Detect      DetectConfig `yaml:"detect"`
	Serve       ServeConfig  `yaml:"serve"`
	Logs        LogConfig    `yaml:"logs"`

	// Path is the file the configuration was read from, empty for defaults
	Path string `yaml:"-"`
}

type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // empty keeps backups next to the file
}

type DetectConfig struct {
	Threshold     float64 `yaml:"threshold"`
	FilenameBoost float64 `yaml:"filenameBoost"`
	SamplePenalty float64 `yaml:"samplePenalty"`
}

type ServeConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// Dir returns the default configuration directory, $HOME/.config/mrdf-tool
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mrdf-tool")
	}
	return filepath.Join(home, ".config", "mrdf-tool")
}

// DefaultPath returns the configuration file used when --config is not given
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration
func Default() Config {
	opts := detect.DefaultOptions()
	dir := Dir()
	return Config{
		ProfileDirs: []string{filepath.Join(dir, "profiles")},
		Backup:      BackupConfig{Enabled: true},
		PatchLog:    filepath.Join(dir, "patches.jsonl"),
		Detect: DetectConfig{
			Threshold:     opts.Threshold,
			FilenameBoost: opts.FilenameBoost,
			SamplePenalty: opts.SamplePenalty,
		},
		Serve: ServeConfig{Port: 8080},
		Logs: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 30,
			MaxBackups: 3,
		},
	}
}

// Load reads the configuration at path over the defaults. An empty path
// means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Path = path

	baseDir := filepath.Dir(path)
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			return ""
		}
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				return filepath.Join(home, p[2:])
			}
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	for i, d := range cfg.ProfileDirs {
		cfg.ProfileDirs[i] = resolvePath(d)
	}
	cfg.Backup.Dir = resolvePath(cfg.Backup.Dir)
	cfg.PatchLog = resolvePath(cfg.PatchLog)
	cfg.Logs.File = resolvePath(cfg.Logs.File)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	d := c.Detect
	if d.Threshold < 0 || d.Threshold > 1 {
		return fmt.Errorf("detect.threshold %g outside [0,1]", d.Threshold)
	}
	if d.FilenameBoost < 0 || d.SamplePenalty < 0 {
		return fmt.Errorf("detect weights must not be negative")
	}
	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d out of range", c.Serve.Port)
	}
	switch strings.ToLower(c.Logs.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown logs.level %q", c.Logs.Level)
	}
	return nil
}

// DetectOptions returns the detector weights of the configuration
func (c Config) DetectOptions() detect.Options {
	opts := detect.DefaultOptions()
	opts.Threshold = c.Detect.Threshold
	opts.FilenameBoost = c.Detect.FilenameBoost
	opts.SamplePenalty = c.Detect.SamplePenalty
	return opts
}

// Save writes the configuration as YAML, creating the directory if needed
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
