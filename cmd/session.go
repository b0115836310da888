package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tosih/mrdf-tool/pkg/compare"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/patchlog"
	"github.com/tosih/mrdf-tool/pkg/reader"
)

// openFile is a file loaded into an editing session
type openFile struct {
	path    string
	session *editor.Session
}

// open loads path and binds a profile, either the --profile override or the
// best detection. Without a confident match the session has no profile and
// only raw byte commands work, unless needProfile is set.
func (a *app) open(path string, needProfile bool) (*openFile, error) {
	data, err := reader.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p *models.Profile
	if profileKey != "" {
		var ok bool
		p, ok = a.registry.Get(profileKey)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q (known: %s)", profileKey, strings.Join(a.registry.Keys(), ", "))
		}
	} else if c, ok := a.detector.Best(data, path); ok {
		p = c.Profile
		a.log.Debug("profile detected", "file", path, "profile", p.Key, "confidence", c.Confidence)
	} else {
		a.log.Warn("no profile matched", "file", path)
	}

	if p == nil && needProfile {
		return nil, fmt.Errorf("no profile matches %s; pass --profile (%s)", filepath.Base(path), strings.Join(a.registry.Keys(), ", "))
	}
	return &openFile{path: path, session: editor.NewSession(data, p)}, nil
}

// saveOptions are the flags shared by every command that writes a file
type saveOptions struct {
	dryRun   bool
	yes      bool
	noBackup bool
	out      string
}

func addSaveFlags(c *cobra.Command, o *saveOptions) {
	c.Flags().BoolVar(&o.dryRun, "dry-run", false, "show the changes without writing")
	c.Flags().BoolVarP(&o.yes, "yes", "y", false, "do not ask for confirmation")
	c.Flags().BoolVar(&o.noBackup, "no-backup", false, "skip the backup copy")
	c.Flags().StringVarP(&o.out, "out", "o", "", "save to this path instead of overwriting FILE")
}

// commit shows the pending changes of f, asks for confirmation and saves.
// It reports whether a file was written.
func (a *app) commit(f *openFile, o saveOptions) (bool, error) {
	s := f.session
	target := f.path
	if o.out != "" {
		target = o.out
	}
	if s.State() == editor.Clean && target == f.path {
		pterm.Info.Println("No changes, file left untouched")
		return false, nil
	}

	rep := compare.Build(s)
	if !rep.Clean() {
		compare.Display(rep, s.Original(), s.Snapshot())
	}

	if o.dryRun {
		pterm.Info.Println("Dry run, nothing written")
		return false, nil
	}
	if !o.yes {
		ok, err := pterm.DefaultInteractiveConfirm.
			WithDefaultValue(false).
			Show(fmt.Sprintf("Write %d changed byte(s) to %s?", rep.Changed, filepath.Base(target)))
		if err != nil {
			return false, err
		}
		if !ok {
			pterm.Warning.Println("Aborted, file left untouched")
			return false, nil
		}
	}

	msg, err := a.persist(f.path, target, s, !o.noBackup)
	if err != nil {
		return false, err
	}
	s.Commit()
	pterm.Success.Println(msg)
	return true, nil
}

// persist writes the working buffer of s, loaded from path, to target: backup
// of an existing target first, then the file, then the patch log entries.
// A patch log failure after the file is written is only a warning.
func (a *app) persist(path, target string, s *editor.Session, backup bool) (string, error) {
	if target == "" {
		target = path
	}
	exists := false
	if _, err := os.Stat(target); err == nil {
		exists = true
	}

	backupPath := ""
	if backup && exists && a.cfg.Backup.Enabled {
		b, err := editor.CreateBackup(target, a.cfg.Backup.Dir)
		if err != nil {
			return "", fmt.Errorf("backup %s: %w", target, err)
		}
		backupPath = b
		a.log.Debug("backup created", "file", target, "backup", b)
	}

	// the log records what target held before, when it was a file of the same size
	before, working := s.Original(), s.Snapshot()
	if exists && absPath(target) != absPath(path) {
		if prev, err := reader.ReadFile(target); err == nil && len(prev) == len(before) {
			before = prev
		}
	}
	if err := reader.WriteFile(target, working); err != nil {
		return "", err
	}

	entries := patchlog.Entries(absPath(target), s.Profile(), before, working, backupPath)
	if a.cfg.PatchLog != "" {
		plog := patchlog.New(a.cfg.PatchLog)
		if err := plog.Append(entries...); err != nil {
			a.log.Warn("patch log not updated", "log", plog.Path(), "error", err)
			pterm.Warning.Printf("%s was saved but the patch log %s was not updated: %v\n", filepath.Base(target), plog.Path(), err)
		} else {
			a.log.Debug("patch log appended", "log", plog.Path(), "entries", len(entries))
		}
	}
	a.log.Info("file saved", "file", target, "source", path, "ranges", len(entries), "backup", backupPath)

	msg := fmt.Sprintf("Saved %s (%d changed range(s))", filepath.Base(target), len(entries))
	if backupPath != "" {
		msg += ", backup at " + backupPath
	}
	return msg, nil
}

// history returns the patch log entries recorded for path
func (a *app) history(path string) ([]patchlog.Entry, error) {
	if a.cfg.PatchLog == "" {
		return nil, fmt.Errorf("patch log is disabled, set patchLog in the config")
	}
	all, err := patchlog.Read(a.cfg.PatchLog)
	if err != nil {
		return nil, err
	}
	return patchlog.ForFile(all, absPath(path)), nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
