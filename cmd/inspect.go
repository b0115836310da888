package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/profiles"
	"github.com/tosih/mrdf-tool/pkg/reader"
	"github.com/tosih/mrdf-tool/pkg/renderer"
	"github.com/tosih/mrdf-tool/pkg/scanner"
)

var dumpKey string

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the known profiles",
	Long: `List the built-in profiles and those loaded from the profile directories.

With --dump the layout of one profile is printed as a YAML profile file,
a starting point for a new profile.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dumpKey == "" {
			return renderer.ListProfiles(current.registry)
		}
		p, ok := current.registry.Get(dumpKey)
		if !ok {
			return fmt.Errorf("unknown profile %q", dumpKey)
		}
		out, err := profiles.Dump(p)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Rank the profiles against a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := reader.ReadFile(args[0])
		if err != nil {
			return err
		}
		ranked := current.detector.Detect(data, args[0])
		if err := renderer.RenderDetection(args[0], ranked); err != nil {
			return err
		}
		if c, ok := current.detector.Best(data, args[0]); ok {
			pterm.Success.Printf("Best match: %s (%.2f)\n", c.Profile.Label, c.Confidence)
		} else {
			pterm.Warning.Println("No confident match, use --profile to pick one")
		}
		return nil
	},
}

var fieldsFilter string

var fieldsCmd = &cobra.Command{
	Use:   "fields FILE",
	Short: "Show every field of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		p := f.session.Profile()
		fields := reader.Filter(reader.ReadFields(f.session.Snapshot(), p), fieldsFilter)
		if len(fields) == 0 {
			pterm.Warning.Printf("No field matches %q\n", fieldsFilter)
			return nil
		}
		return renderer.RenderFields(p, fields, nil)
	},
}

var getCmd = &cobra.Command{
	Use:   "get FILE FIELD...",
	Short: "Show fields in detail",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		for _, name := range args[1:] {
			def, v, err := f.session.ReadFieldNamed(name)
			if err != nil {
				return err
			}
			orig, _ := f.session.ReadOriginalField(def)
			if err := renderer.RenderField(def, v, orig); err != nil {
				return err
			}
		}
		return nil
	},
}

var (
	dumpOffset string
	dumpLength int
)

var hexCmd = &cobra.Command{
	Use:   "hex FILE",
	Short: "Hex dump a file, or the bytes of one field",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], len(args) == 2)
		if err != nil {
			return err
		}
		data := f.session.Snapshot()
		if len(args) == 2 {
			def, err := f.session.Profile().Lookup(args[1])
			if err != nil {
				return err
			}
			start := def.Offset &^ (renderer.BytesPerLine - 1)
			renderer.RenderHexDump(def.Name, data, start, int(def.End()-start))
			return nil
		}

		start, err := editor.ParseOffset(dumpOffset)
		if err != nil {
			return err
		}
		n := dumpLength
		if n <= 0 {
			n = len(data)
		}
		if err := models.CheckRange(start, 0, len(data)); err != nil {
			return err
		}
		renderer.RenderHexDump(fmt.Sprintf("%s @ 0x%X", args[0], start), data, start, n)
		return nil
	},
}

var scanOpts = scanner.DefaultOptions()

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "List unmapped words and guess their types",
	Long: `Walk the file in 4-byte steps and classify every word that no field of
the profile covers as bool, int or float. Runs of consecutive floats are
reported separately as table candidates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], false)
		if err != nil {
			return err
		}
		spinner, _ := pterm.DefaultSpinner.Start("Scanning for unmapped words...")
		res := scanner.Scan(f.session.Snapshot(), f.session.Profile(), scanOpts)
		spinner.Success(fmt.Sprintf("Scanned %d bytes (0x%X)", f.session.Len(), f.session.Len()))
		return scanner.Display(res)
	},
}

func init() {
	profilesCmd.Flags().StringVar(&dumpKey, "dump", "", "print the profile as YAML")
	fieldsCmd.Flags().StringVarP(&fieldsFilter, "filter", "f", "", "only fields whose name or section contains this")
	hexCmd.Flags().StringVar(&dumpOffset, "offset", "0", "first byte to dump")
	hexCmd.Flags().IntVarP(&dumpLength, "length", "n", 0, "bytes to dump (default: to the end)")
	scanCmd.Flags().BoolVar(&scanOpts.IncludeZero, "zero", false, "include all-zero words")
	scanCmd.Flags().IntVar(&scanOpts.MinRun, "min-run", scanOpts.MinRun, "shortest float run to report")

	rootCmd.AddCommand(profilesCmd, detectCmd, fieldsCmd, getCmd, hexCmd, scanCmd)
}
