package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/mrdf-tool/pkg/config"
)

var (
	configInit  bool
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration or write a starter file",
	Long: `Show the configuration in use. With --init the effective configuration
is written to the --config path (default ` + config.DefaultPath() + `), a
starting point for editing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := current.cfg
		if !configInit {
			source := cfg.Path
			if source == "" {
				source = "built-in defaults"
			}
			pterm.DefaultSection.Printf("Configuration (%s)\n", source)
			data := [][]string{
				{"Key", "Value"},
				{"profileDirs", strings.Join(cfg.ProfileDirs, ", ")},
				{"backup.enabled", strconv.FormatBool(cfg.Backup.Enabled)},
				{"backup.dir", cfg.Backup.Dir},
				{"patchLog", cfg.PatchLog},
				{"detect.threshold", fmt.Sprintf("%g", cfg.Detect.Threshold)},
				{"detect.filenameBoost", fmt.Sprintf("%g", cfg.Detect.FilenameBoost)},
				{"detect.samplePenalty", fmt.Sprintf("%g", cfg.Detect.SamplePenalty)},
				{"serve.port", strconv.Itoa(cfg.Serve.Port)},
				{"logs.level", cfg.Logs.Level},
				{"logs.file", cfg.Logs.File},
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		}

		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists, pass --force to overwrite", path)
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write the configuration file")
	configCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file with --init")

	rootCmd.AddCommand(configCmd)
}
