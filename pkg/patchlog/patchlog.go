package patchlog

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
)

// Entry captures one changed byte range written to an MRDF file
type Entry struct {
	Save      string    `json:"save"`
	File      string    `json:"file"`
	Profile   string    `json:"profile,omitempty"`
	Offset    int64     `json:"offset"`
	Length    int       `json:"length"`
	Fields    []string  `json:"fields,omitempty"`
	BeforeHex string    `json:"beforeHex"`
	AfterHex  string    `json:"afterHex"`
	Backup    string    `json:"backup,omitempty"`
	Ts        time.Time `json:"ts"`
}

// BeforeBytes decodes the bytes present before the save
func (e Entry) BeforeBytes() ([]byte, error) {
	if strings.TrimSpace(e.BeforeHex) == "" {
		return nil, nil
	}
	return hex.DecodeString(e.BeforeHex)
}

// AfterBytes decodes the bytes written by the save
func (e Entry) AfterBytes() ([]byte, error) {
	if strings.TrimSpace(e.AfterHex) == "" {
		return nil, nil
	}
	return hex.DecodeString(e.AfterHex)
}

// PatchLog provides append-only access to a JSONL audit log
type PatchLog struct {
	path string
	mu   sync.Mutex
}

// New returns a PatchLog that writes to path
func New(path string) *PatchLog {
	return &PatchLog{path: path}
}

// Path returns the backing file path for the log
func (p *PatchLog) Path() string {
	if p == nil {
		return ""
	}
	return p.path
}

// Entries builds one entry per changed range of a save. Every entry of the
// batch shares the same save id and timestamp.
func Entries(file string, profile *models.Profile, original, working []byte, backup string) []Entry {
	now := time.Now().UTC()
	id := strconv.FormatInt(now.UnixNano(), 36)
	key := ""
	if profile != nil {
		key = profile.Key
	}

	var out []Entry
	for _, rg := range editor.Diff(original, working) {
		e := Entry{
			Save:      id,
			File:      file,
			Profile:   key,
			Offset:    rg.Offset,
			Length:    rg.Length,
			BeforeHex: hex.EncodeToString(original[rg.Offset:rg.End()]),
			AfterHex:  hex.EncodeToString(working[rg.Offset:rg.End()]),
			Backup:    backup,
			Ts:        now,
		}
		if profile != nil {
			for _, f := range profile.FieldsIn(rg.Offset, rg.Length) {
				e.Fields = append(e.Fields, f.Name)
			}
		}
		out = append(out, e)
	}
	return out
}

// Append writes entries to the audit log, one JSON object per line
func (p *PatchLog) Append(entries ...Entry) error {
	if p == nil {
		return errors.New("nil patch log")
	}
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		if entry.File == "" {
			return errors.New("patch entry missing file")
		}
		if entry.Ts.IsZero() {
			entry.Ts = time.Now().UTC()
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(p.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	return f.Sync()
}

// Read loads every entry from the supplied JSONL file. A missing file is an
// empty log.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []Entry
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(text), &entry); err != nil {
			return nil, fmt.Errorf("decode patch entry on line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ForFile keeps the entries recorded for file
func ForFile(entries []Entry, file string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.File == file {
			out = append(out, e)
		}
	}
	return out
}

// LastSave returns the entries of the most recent save of file
func LastSave(entries []Entry, file string) []Entry {
	mine := ForFile(entries, file)
	if len(mine) == 0 {
		return nil
	}
	id := mine[len(mine)-1].Save
	var out []Entry
	for _, e := range mine {
		if e.Save == id {
			out = append(out, e)
		}
	}
	return out
}

// ConflictError reports that the file no longer holds the bytes a save wrote
type ConflictError struct {
	Offset int64
	Want   string
	Got    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("bytes at 0x%X are %s, expected %s from the logged save", e.Offset, e.Got, e.Want)
}

// Revert undoes a save inside s by writing each entry's before bytes back.
// Every entry is checked first; on a conflict or a malformed entry nothing
// is written.
func Revert(s *editor.Session, save []Entry) error {
	current := s.Snapshot()
	befores := make([][]byte, len(save))
	for i, e := range save {
		after, err := e.AfterBytes()
		if err != nil {
			return fmt.Errorf("decode after bytes at 0x%X: %w", e.Offset, err)
		}
		before, err := e.BeforeBytes()
		if err != nil {
			return fmt.Errorf("decode before bytes at 0x%X: %w", e.Offset, err)
		}
		if len(before) != len(after) || len(after) != e.Length {
			return fmt.Errorf("entry at 0x%X: before %d, after %d, length %d bytes disagree",
				e.Offset, len(before), len(after), e.Length)
		}
		if err := models.CheckRange(e.Offset, len(after), len(current)); err != nil {
			return err
		}
		got := current[e.Offset : e.Offset+int64(len(after))]
		if !bytes.Equal(got, after) {
			return &ConflictError{Offset: e.Offset, Want: e.AfterHex, Got: hex.EncodeToString(got)}
		}
		befores[i] = before
	}
	for i := len(save) - 1; i >= 0; i-- {
		if err := s.OverwriteHex(save[i].Offset, befores[i]); err != nil {
			return err
		}
	}
	return nil
}
