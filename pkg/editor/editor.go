package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/models"
)

// State is the edit state of a session
type State int

const (
	Clean State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Range is a span of bytes in the file
type Range struct {
	Offset int64
	Length int
}

// End returns the offset one past the range
func (r Range) End() int64 {
	return r.Offset + int64(r.Length)
}

// Session holds the original and working buffers of one opened file and
// the profile bound to them. A Session is not safe for concurrent use; each
// caller owns its own.
type Session struct {
	original []byte
	working  []byte
	profile  *models.Profile

	// number of byte positions where working differs from original
	diff int
}

// NewSession snapshots data. The caller's slice is copied and never retained.
func NewSession(data []byte, profile *models.Profile) *Session {
	orig := make([]byte, len(data))
	copy(orig, data)
	work := make([]byte, len(data))
	copy(work, data)
	return &Session{original: orig, working: work, profile: profile}
}

// Profile returns the bound profile, which may be nil
func (s *Session) Profile() *models.Profile {
	return s.profile
}

// SetProfile rebinds the session, e.g. after the user overrides detection.
// The buffers are untouched.
func (s *Session) SetProfile(p *models.Profile) {
	s.profile = p
}

// Len returns the file size, identical for both buffers
func (s *Session) Len() int {
	return len(s.working)
}

// State reports Clean when working matches original byte for byte
func (s *Session) State() State {
	if s.diff == 0 {
		return Clean
	}
	return Dirty
}

// Snapshot returns a copy of the working buffer, i.e. what a save would write
func (s *Session) Snapshot() []byte {
	out := make([]byte, len(s.working))
	copy(out, s.working)
	return out
}

// Original returns a copy of the buffer as loaded
func (s *Session) Original() []byte {
	out := make([]byte, len(s.original))
	copy(out, s.original)
	return out
}

// splice copies b over working at offset and keeps the diff counter current.
// Bounds must already be checked.
func (s *Session) splice(offset int64, b []byte) {
	for i, nb := range b {
		pos := offset + int64(i)
		was := s.working[pos] != s.original[pos]
		now := nb != s.original[pos]
		s.working[pos] = nb
		switch {
		case was && !now:
			s.diff--
		case !was && now:
			s.diff++
		}
	}
}

// ReadField decodes f from the working buffer, pending edits included
func (s *Session) ReadField(f models.FieldDef) (codec.Value, error) {
	return codec.Decode(s.working, f)
}

// ReadOriginalField decodes f from the buffer as loaded
func (s *Session) ReadOriginalField(f models.FieldDef) (codec.Value, error) {
	return codec.Decode(s.original, f)
}

// WriteField encodes v and overwrites exactly the field's bytes
func (s *Session) WriteField(f models.FieldDef, v any) error {
	if err := models.CheckRange(f.Offset, f.Width(), len(s.working)); err != nil {
		return err
	}
	b, err := codec.Encode(v, f)
	if err != nil {
		return err
	}
	s.splice(f.Offset, b)
	return nil
}

// WriteBitmaskBit flips a single bit of a Bitmask8 field. Every bit 0-7 is
// writable, labeled or not.
func (s *Session) WriteBitmaskBit(f models.FieldDef, index int, value bool) error {
	if f.Type != models.Bitmask8 {
		return &models.TypeMismatchError{Field: f.Name, Type: f.Type, Value: value, Reason: "not a bitmask field"}
	}
	if err := models.CheckRange(f.Offset, 1, len(s.working)); err != nil {
		return err
	}
	nb, err := codec.SetBit(s.working[f.Offset], index, value)
	if err != nil {
		return &models.IndexError{Field: f.Name, Index: int64(index), Limit: 8}
	}
	s.splice(f.Offset, []byte{nb})
	return nil
}

// OverwriteHex writes raw bytes at offset, ignoring field typing. It never
// changes the buffer length.
func (s *Session) OverwriteHex(offset int64, b []byte) error {
	if err := models.CheckRange(offset, len(b), len(s.working)); err != nil {
		return err
	}
	s.splice(offset, b)
	return nil
}

// ReplaceSelection overwrites a selected range and requires b to be exactly
// as long as the selection.
func (s *Session) ReplaceSelection(offset int64, length int, b []byte) error {
	if len(b) != length {
		return &models.RangeError{
			Offset: offset,
			Length: length,
			Size:   len(s.working),
			Reason: fmt.Sprintf("selection is %d bytes but %d were given", length, len(b)),
		}
	}
	return s.OverwriteHex(offset, b)
}

// RevertRange restores original bytes over [offset, offset+length)
func (s *Session) RevertRange(offset int64, length int) error {
	if err := models.CheckRange(offset, length, len(s.working)); err != nil {
		return err
	}
	s.splice(offset, s.original[offset:offset+int64(length)])
	return nil
}

// RevertField restores the original bytes of one field
func (s *Session) RevertField(f models.FieldDef) error {
	return s.RevertRange(f.Offset, f.Width())
}

// Restore replaces the whole working buffer with buf, which must have the
// file's size. It is used to roll back a batch of edits.
func (s *Session) Restore(buf []byte) error {
	if len(buf) != len(s.working) {
		return &models.RangeError{
			Offset: 0,
			Length: len(buf),
			Size:   len(s.working),
			Reason: fmt.Sprintf("buffer is %d bytes but the file has %d", len(buf), len(s.working)),
		}
	}
	s.splice(0, buf)
	return nil
}

// Commit makes the working buffer the new original, after it was saved
func (s *Session) Commit() {
	copy(s.original, s.working)
	s.diff = 0
}

// Discard drops every edit
func (s *Session) Discard() {
	copy(s.working, s.original)
	s.diff = 0
}

// ChangedRanges returns the maximal runs of bytes that differ from the original
func (s *Session) ChangedRanges() []Range {
	return Diff(s.original, s.working)
}

// Diff returns the runs of differing bytes between two equally sized buffers.
// Bytes past the shorter buffer are ignored.
func Diff(a, b []byte) []Range {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var out []Range
	start := -1
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, Range{Offset: int64(start), Length: i - start})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Range{Offset: int64(start), Length: n - start})
	}
	return out
}

func (s *Session) lookup(name string) (models.FieldDef, error) {
	if s.profile == nil {
		return models.FieldDef{}, fmt.Errorf("no profile bound")
	}
	return s.profile.Lookup(name)
}

// ReadFieldNamed resolves name in the bound profile and reads it
func (s *Session) ReadFieldNamed(name string) (models.FieldDef, codec.Value, error) {
	f, err := s.lookup(name)
	if err != nil {
		return f, codec.Value{}, err
	}
	v, err := s.ReadField(f)
	return f, v, err
}

// WriteFieldNamed resolves name in the bound profile and writes v
func (s *Session) WriteFieldNamed(name string, v any) (models.FieldDef, error) {
	f, err := s.lookup(name)
	if err != nil {
		return f, err
	}
	return f, s.WriteField(f, v)
}

// CreateBackup creates a timestamped backup of the file
func CreateBackup(filename, dir string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	backupName := filename + ".backup_" + timestamp
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create backup dir: %w", err)
		}
		backupName = filepath.Join(dir, filepath.Base(filename)+".backup_"+timestamp)
	}
	if err := os.WriteFile(backupName, data, 0o644); err != nil {
		return "", err
	}

	return backupName, nil
}
