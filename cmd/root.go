package cmd

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/mrdf-tool/pkg/config"
	"github.com/tosih/mrdf-tool/pkg/detect"
	"github.com/tosih/mrdf-tool/pkg/logging"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/profiles"
)

var (
	cfgPath    string
	profileKey string
	logLevel   string
	noColor    bool
)

// app is what every command needs once flags are parsed
type app struct {
	cfg      config.Config
	log      *logging.Logger
	registry *models.Registry
	detector *detect.Detector
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "mrdf-tool",
	Short: "Inspect and patch fixed-layout MRDF files",
	Long: `mrdf-tool edits the binary .mrdf files of AMS2 / Project CARS 2
through named, typed fields described by profiles.

The file type is detected automatically; pass --profile to override.

Example: mrdf-tool fields car_stats.mrdf --filter assists
This will print every driver assist field of the file.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.log.Close()
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&profileKey, "profile", "p", "", "profile key, skips detection")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		pterm.DisableColor()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// config --init creates the file it names
		if !(cmd == configCmd && configInit && errors.Is(err, os.ErrNotExist)) {
			return err
		}
		cfg = config.Default()
	}
	if logLevel != "" {
		cfg.Logs.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Setup(cfg.Logs, os.Stderr)
	if err != nil {
		return err
	}
	reg, err := profiles.Registry(cfg.ProfileDirs...)
	if err != nil {
		log.Close()
		return err
	}
	log.Debug("configuration loaded", "config", cfg.Path, "profiles", reg.Len())

	current = &app{
		cfg:      cfg,
		log:      log,
		registry: reg,
		detector: detect.New(reg, cfg.DetectOptions()),
	}
	return nil
}
