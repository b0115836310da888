package cmd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/patchlog"
)

var (
	setOpts    saveOptions
	bitOpts    saveOptions
	pokeOpts   saveOptions
	revertOpts saveOptions
	presetOpts saveOptions

	pokeLength int
)

var setCmd = &cobra.Command{
	Use:   "set FILE FIELD=VALUE...",
	Short: "Write one or more fields",
	Long: `Write fields by name. Values are parsed for the field type: numbers
(decimal or 0x hex), enum labels, true/false for flags and 0b binary for
bitmasks. Every assignment is applied before anything is saved; one bad
value leaves the file untouched.

Example: mrdf-tool set car_stats.mrdf ABS=true TC=true DrivetrainType=AWD`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		for _, assign := range args[1:] {
			name, text, ok := strings.Cut(assign, "=")
			if !ok {
				return fmt.Errorf("%q is not FIELD=VALUE", assign)
			}
			if err := setField(f.session, strings.TrimSpace(name), text); err != nil {
				return err
			}
		}
		_, err = current.commit(f, setOpts)
		return err
	},
}

func setField(s *editor.Session, name, text string) error {
	def, err := s.Profile().Lookup(name)
	if err != nil {
		return err
	}
	v, err := codec.Parse(text, def)
	if err != nil {
		return err
	}
	return s.WriteField(def, v)
}

var bitCmd = &cobra.Command{
	Use:   "bit FILE FIELD BIT on|off",
	Short: "Set or clear one flag of a bitmask field",
	Long: `Set or clear a single bit of a bitmask field. BIT is the index 0-7 or
the flag label, e.g.

  mrdf-tool bit car_stats.mrdf TyreAvailability Wet on`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		def, err := f.session.Profile().Lookup(args[1])
		if err != nil {
			return err
		}
		index, err := bitIndex(def, args[2])
		if err != nil {
			return err
		}
		on, err := parseSwitch(args[3])
		if err != nil {
			return err
		}
		if err := f.session.WriteBitmaskBit(def, index, on); err != nil {
			return err
		}
		_, err = current.commit(f, bitOpts)
		return err
	},
}

// bitIndex resolves a bit by number or by label
func bitIndex(def models.FieldDef, s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	for i, label := range def.BitLabels {
		if strings.EqualFold(label, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s has no flag %q (flags: %s)", def.Name, s, strings.Join(def.BitLabels, ", "))
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "set", "true", "1", "yes":
		return true, nil
	case "off", "clear", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

var pokeCmd = &cobra.Command{
	Use:   "poke FILE OFFSET BYTES...",
	Short: "Overwrite raw bytes",
	Long: `Overwrite bytes at OFFSET without any field typing. The file never
changes size: writing past the end is an error. With --length the bytes
replace a selection and must match its length exactly.

Example: mrdf-tool poke car_stats.mrdf 0xBC 31`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], false)
		if err != nil {
			return err
		}
		offset, err := editor.ParseOffset(args[1])
		if err != nil {
			return err
		}
		b, err := editor.ParseHexBytes(strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("length") {
			err = f.session.ReplaceSelection(offset, pokeLength, b)
		} else {
			err = f.session.OverwriteHex(offset, b)
		}
		if err != nil {
			return err
		}
		_, err = current.commit(f, pokeOpts)
		return err
	},
}

var revertCmd = &cobra.Command{
	Use:   "revert FILE FIELD...",
	Short: "Restore fields to their value before the last save",
	Long: `Restore the named fields to the bytes they held before the most recent
save recorded in the patch log. Other changes of that save are kept; use
undo to roll back the whole save.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		previous, err := beforeLastSave(f)
		if err != nil {
			return err
		}
		for _, name := range args[1:] {
			def, err := f.session.Profile().Lookup(name)
			if err != nil {
				return err
			}
			if err := models.CheckRange(def.Offset, def.Width(), len(previous)); err != nil {
				return err
			}
			old := previous[def.Offset:def.End()]
			cur := f.session.Snapshot()[def.Offset:def.End()]
			if bytes.Equal(old, cur) {
				pterm.Info.Printf("%s was not changed by the last save\n", def.Name)
				continue
			}
			if err := f.session.OverwriteHex(def.Offset, old); err != nil {
				return err
			}
		}
		_, err = current.commit(f, revertOpts)
		return err
	},
}

// beforeLastSave rebuilds the file content as it was before its last logged save
func beforeLastSave(f *openFile) ([]byte, error) {
	entries, err := current.history(f.path)
	if err != nil {
		return nil, err
	}
	last := patchlog.LastSave(entries, absPath(f.path))
	if len(last) == 0 {
		return nil, fmt.Errorf("no saves of %s in %s", f.path, current.cfg.PatchLog)
	}
	s := editor.NewSession(f.session.Snapshot(), f.session.Profile())
	if err := patchlog.Revert(s, last); err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

var presetCmd = &cobra.Command{
	Use:   "preset [FILE NAME]",
	Short: "List or apply the built-in presets",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or FILE NAME")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			data := [][]string{{"Name", "Profile", "Fields", "Description"}}
			for _, p := range editor.Presets() {
				data = append(data, []string{p.Name, p.Profile, strconv.Itoa(len(p.Values)), p.Description})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		}

		preset, ok := editor.FindPreset(args[1])
		if !ok {
			return fmt.Errorf("unknown preset %q", args[1])
		}
		f, err := current.open(args[0], true)
		if err != nil {
			return err
		}
		touched, err := f.session.ApplyPreset(preset)
		if err != nil {
			return err
		}
		current.log.Debug("preset applied", "preset", preset.Name, "fields", len(touched))
		_, err = current.commit(f, presetOpts)
		return err
	},
}

func init() {
	addSaveFlags(setCmd, &setOpts)
	addSaveFlags(bitCmd, &bitOpts)
	addSaveFlags(pokeCmd, &pokeOpts)
	addSaveFlags(revertCmd, &revertOpts)
	addSaveFlags(presetCmd, &presetOpts)
	pokeCmd.Flags().IntVar(&pokeLength, "length", 0, "selection length the bytes must fill")

	rootCmd.AddCommand(setCmd, bitCmd, pokeCmd, revertCmd, presetCmd)
}
