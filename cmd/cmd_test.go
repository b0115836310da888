package cmd

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/patchlog"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

type fixture struct {
	dir    string
	config string
	file   string
}

func newFixture(t *testing.T) fixture {
	return newFixtureWithLog(t, "patches.jsonl")
}

// newFixtureWithLog is newFixture with the patch log at patchLog, relative to
// the fixture directory.
func newFixtureWithLog(t *testing.T, patchLog string) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	yaml := "profileDirs: []\n" +
		"backup:\n  enabled: true\n  dir: backups\n" +
		"patchLog: " + patchLog + "\n" +
		"logs:\n  level: error\n"
	if err := os.WriteFile(cfg, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	buf := make([]byte, models.StatsProfile.MinSize())
	binary.LittleEndian.PutUint32(buf[0x40:], 6)
	binary.LittleEndian.PutUint32(buf[0x84:], math.Float32bits(2.7))
	buf[0xBC] = 0x31
	file := filepath.Join(dir, "car_stats.mrdf")
	if err := os.WriteFile(file, buf, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return fixture{dir: dir, config: cfg, file: file}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (fx fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--config", fx.config}, args...))
	return rootCmd.Execute()
}

func (fx fixture) read(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(fx.file)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	return data
}

func TestSetSavesBackupAndLog(t *testing.T) {
	fx := newFixture(t)
	orig := fx.read(t)

	if err := fx.run(t, "set", fx.file, "NumGears=7", "ABS=on", "--yes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	data := fx.read(t)
	if data[0x40] != 7 || data[0x8C] != 1 {
		t.Fatalf("fields not written: NumGears=%d ABS=%d", data[0x40], data[0x8C])
	}
	if len(data) != len(orig) {
		t.Fatalf("file size changed %d -> %d", len(orig), len(data))
	}

	backups, _ := filepath.Glob(filepath.Join(fx.dir, "backups", "car_stats.mrdf.backup_*"))
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
	if b, _ := os.ReadFile(backups[0]); !bytes.Equal(b, orig) {
		t.Fatalf("backup does not hold the original bytes")
	}

	entries, err := patchlog.Read(filepath.Join(fx.dir, "patches.jsonl"))
	if err != nil {
		t.Fatalf("read patch log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Fields[0] != "NumGears" || entries[1].Fields[0] != "ABS" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestSetRejectsBadValueAtomically(t *testing.T) {
	fx := newFixture(t)
	orig := fx.read(t)

	err := fx.run(t, "set", fx.file, "NumGears=7", "ABS=2", "--yes")
	if err == nil {
		t.Fatalf("expected error for ABS=2")
	}
	if !bytes.Equal(fx.read(t), orig) {
		t.Fatalf("file changed after a failed set")
	}

	err = fx.run(t, "set", fx.file, "Gers=5", "--yes")
	if err == nil || !strings.Contains(err.Error(), "Gears") {
		t.Fatalf("expected a suggestion for Gers, got %v", err)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	fx := newFixture(t)
	orig := fx.read(t)
	if err := fx.run(t, "bit", fx.file, "TyreAvailability", "Medium", "on", "--dry-run"); err != nil {
		t.Fatalf("bit: %v", err)
	}
	if !bytes.Equal(fx.read(t), orig) {
		t.Fatalf("dry run wrote the file")
	}
}

func TestBitByLabel(t *testing.T) {
	fx := newFixture(t)
	if err := fx.run(t, "bit", fx.file, "TyreAvailability", "wet", "off", "--yes"); err != nil {
		t.Fatalf("bit: %v", err)
	}
	if got := fx.read(t)[0xBC]; got != 0x21 {
		t.Fatalf("TyreAvailability = 0x%02X, want 0x21", got)
	}
	if err := fx.run(t, "bit", fx.file, "TyreAvailability", "8", "on", "--yes"); err == nil {
		t.Fatalf("bit 8 accepted")
	}
}

func TestPokeAndUndo(t *testing.T) {
	fx := newFixture(t)
	orig := fx.read(t)

	if err := fx.run(t, "poke", fx.file, "0x10", "DE", "AD", "--length", "3", "--yes"); err == nil {
		t.Fatalf("selection size mismatch accepted")
	}
	if err := fx.run(t, "poke", fx.file, "0x10", "DE,AD", "--yes"); err != nil {
		t.Fatalf("poke: %v", err)
	}
	if got := fx.read(t)[0x10:0x12]; !bytes.Equal(got, []byte{0xDE, 0xAD}) {
		t.Fatalf("poked bytes = % X", got)
	}

	if err := fx.run(t, "undo", fx.file, "--yes", "--no-backup"); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !bytes.Equal(fx.read(t), orig) {
		t.Fatalf("undo did not restore the file")
	}
}

func TestRevertSingleField(t *testing.T) {
	fx := newFixture(t)
	if err := fx.run(t, "set", fx.file, "NumGears=5", "TC=true", "--yes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := fx.run(t, "revert", fx.file, "NumGears", "--yes"); err != nil {
		t.Fatalf("revert: %v", err)
	}
	data := fx.read(t)
	if data[0x40] != 6 || data[0x90] != 1 {
		t.Fatalf("NumGears=%d TC=%d, want 6 and 1", data[0x40], data[0x90])
	}
}

func TestUnknownProfileAndNoMatch(t *testing.T) {
	fx := newFixture(t)
	if err := fx.run(t, "fields", fx.file, "--profile", "nope"); err == nil {
		t.Fatalf("unknown profile accepted")
	}

	junk := filepath.Join(fx.dir, "junk.bin")
	os.WriteFile(junk, []byte{1, 2, 3}, 0o644)
	if err := fx.run(t, "fields", junk); err == nil {
		t.Fatalf("fields on an undetectable file should fail")
	}
	// raw commands still work without a profile
	if err := fx.run(t, "hex", junk); err != nil {
		t.Fatalf("hex: %v", err)
	}
}

func TestExportImportCSV(t *testing.T) {
	fx := newFixture(t)
	out := filepath.Join(fx.dir, "sheet.csv")
	if err := fx.run(t, "export", fx.file, "--out", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	sheet, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if !bytes.Contains(sheet, []byte("NumGears")) {
		t.Fatalf("sheet misses NumGears")
	}

	if err := fx.run(t, "set", fx.file, "NumGears=3", "--yes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := fx.run(t, "import", fx.file, out, "--yes"); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := fx.read(t)[0x40]; got != 6 {
		t.Fatalf("NumGears after import = %d, want 6", got)
	}
}

func TestPresetApply(t *testing.T) {
	fx := newFixture(t)
	if err := fx.run(t, "preset", fx.file, "all-compounds", "--yes"); err != nil {
		t.Fatalf("preset: %v", err)
	}
	if got := fx.read(t)[0xBC]; got != 0x7F {
		t.Fatalf("TyreAvailability = 0x%02X, want 0x7F", got)
	}
	if err := fx.run(t, "preset", fx.file, "tick-360", "--yes"); err == nil {
		t.Fatalf("physics preset applied to a stats file")
	}
}

func TestRevertFieldPastEndOfShortFile(t *testing.T) {
	fx := newFixture(t)
	short := filepath.Join(fx.dir, "short_stats.mrdf")
	if err := os.WriteFile(short, make([]byte, 48), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := fx.run(t, "poke", short, "0x0", "01", "--profile", "stats", "--yes"); err != nil {
		t.Fatalf("poke: %v", err)
	}
	// NumGears lies past the end of the 48 byte file
	if err := fx.run(t, "revert", short, "NumGears", "--profile", "stats", "--yes"); err == nil {
		t.Fatalf("revert of a field past the end succeeded")
	}
	data, _ := os.ReadFile(short)
	if len(data) != 48 || data[0] != 1 {
		t.Fatalf("file changed by a failed revert: len=%d first=%d", len(data), data[0])
	}
}

func TestSetOutLeavesSourceUntouched(t *testing.T) {
	fx := newFixture(t)
	orig := fx.read(t)
	out := filepath.Join(fx.dir, "tuned_stats.mrdf")

	if err := fx.run(t, "set", fx.file, "NumGears=8", "--out", out, "--yes"); err != nil {
		t.Fatalf("set --out: %v", err)
	}
	if !bytes.Equal(fx.read(t), orig) {
		t.Fatalf("source file modified")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if data[0x40] != 8 || len(data) != len(orig) {
		t.Fatalf("output NumGears=%d size=%d", data[0x40], len(data))
	}
	// a new file has nothing to back up
	if backups, _ := filepath.Glob(filepath.Join(fx.dir, "backups", "*")); len(backups) != 0 {
		t.Fatalf("unexpected backups %v", backups)
	}

	entries, err := patchlog.Read(filepath.Join(fx.dir, "patches.jsonl"))
	if err != nil {
		t.Fatalf("read patch log: %v", err)
	}
	if len(entries) != 1 || entries[0].File != absPath(out) {
		t.Fatalf("entries = %+v", entries)
	}

	// an unchanged session can still be copied
	copyPath := filepath.Join(fx.dir, "copy.mrdf")
	if err := fx.run(t, "set", fx.file, "NumGears=6", "--out", copyPath, "--yes"); err != nil {
		t.Fatalf("set --out unchanged: %v", err)
	}
	if data, _ := os.ReadFile(copyPath); !bytes.Equal(data, orig) {
		t.Fatalf("copy differs from the source")
	}
}

func TestPatchLogFailureStillSaves(t *testing.T) {
	fx := newFixtureWithLog(t, "blocker/patches.jsonl")
	if err := os.WriteFile(filepath.Join(fx.dir, "blocker"), []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	if err := fx.run(t, "set", fx.file, "NumGears=4", "--yes"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := fx.read(t)[0x40]; got != 4 {
		t.Fatalf("NumGears = %d, want 4", got)
	}
	if backups, _ := filepath.Glob(filepath.Join(fx.dir, "backups", "car_stats.mrdf.backup_*")); len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
}

func TestConfigInit(t *testing.T) {
	fx := newFixture(t)
	path := filepath.Join(fx.dir, "new", "config.yaml")

	if err := fx.run(t, "config", "--init", "--config", path); err != nil {
		t.Fatalf("config --init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "patchLog:") {
		t.Fatalf("written config lacks patchLog:\n%s", data)
	}

	if err := fx.run(t, "config", "--init", "--config", path); err == nil {
		t.Fatalf("existing config overwritten without --force")
	}
	if err := fx.run(t, "config", "--init", "--force", "--config", path); err != nil {
		t.Fatalf("config --init --force: %v", err)
	}
	// the written file loads back
	if err := fx.run(t, "config", "--config", path); err != nil {
		t.Fatalf("config: %v", err)
	}
}
