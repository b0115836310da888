package export

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/reader"
	"github.com/tosih/mrdf-tool/pkg/renderer"
)

var csvHeader = []string{"name", "section", "offset", "type", "value", "raw_hex"}

// Checksum returns the hex SHA-256 of data
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteCSV writes the field sheet of the session's working buffer. Rows
// starting with '#' carry metadata.
func WriteCSV(w io.Writer, s *editor.Session, source string) error {
	p := s.Profile()
	if p == nil {
		return fmt.Errorf("no profile bound")
	}
	data := s.Snapshot()

	writer := csv.NewWriter(w)
	writer.Write([]string{fmt.Sprintf("# profile: %s", p.Key)})
	writer.Write([]string{fmt.Sprintf("# file: %s", filepath.Base(source))})
	writer.Write([]string{fmt.Sprintf("# size: %d", len(data))})
	writer.Write([]string{fmt.Sprintf("# sha256: %s", Checksum(data))})
	writer.Write(csvHeader)

	for _, fi := range reader.ReadFields(data, p) {
		if fi.Err != nil {
			continue
		}
		writer.Write([]string{
			fi.Def.Name,
			fi.Def.Section,
			fmt.Sprintf("0x%04X", fi.Def.Offset),
			fi.Def.Type.String(),
			renderer.ValueString(fi.Value, fi.Def),
			strings.ToUpper(hex.EncodeToString(fi.Raw)),
		})
	}
	writer.Flush()
	return writer.Error()
}

// ExportCSV writes the field sheet to filename
func ExportCSV(filename string, s *editor.Session, source string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteCSV(file, s, source); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadCSV applies a field sheet to the session. raw_hex wins when present;
// otherwise the value column is parsed like user input. Either every row
// applies or the session is left unchanged.
func ReadCSV(r io.Reader, s *editor.Session) ([]models.FieldDef, error) {
	p := s.Profile()
	if p == nil {
		return nil, fmt.Errorf("no profile bound")
	}

	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	// Parse CSV and find data start
	dataStart := -1
	for i, record := range records {
		if len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			dataStart = i
			break
		}
	}
	if dataStart < 0 {
		return nil, fmt.Errorf("invalid CSV format: couldn't find the name header")
	}
	cols := make(map[string]int)
	for i, h := range records[dataStart] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol := cols["name"]
	_, hasRaw := cols["raw_hex"]
	_, hasValue := cols["value"]
	if !hasRaw && !hasValue {
		return nil, fmt.Errorf("invalid CSV format: need a value or raw_hex column")
	}
	get := func(rec []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	before := s.Snapshot()
	fail := func(line int, err error) ([]models.FieldDef, error) {
		s.Restore(before)
		return nil, fmt.Errorf("row %d: %w", line, err)
	}

	var applied []models.FieldDef
	for i, rec := range records[dataStart+1:] {
		line := i + 1
		if nameCol >= len(rec) || strings.TrimSpace(rec[nameCol]) == "" {
			continue
		}
		f, err := p.Lookup(strings.TrimSpace(rec[nameCol]))
		if err != nil {
			return fail(line, err)
		}
		if off := get(rec, "offset"); off != "" {
			n, err := strconv.ParseInt(off, 0, 64)
			if err != nil || n != f.Offset {
				return fail(line, fmt.Errorf("field %s: offset %s does not match profile 0x%04X", f.Name, off, f.Offset))
			}
		}

		if raw := get(rec, "raw_hex"); raw != "" {
			b, err := hex.DecodeString(raw)
			if err != nil {
				return fail(line, fmt.Errorf("field %s: raw_hex: %w", f.Name, err))
			}
			if err := s.ReplaceSelection(f.Offset, f.Width(), b); err != nil {
				return fail(line, err)
			}
		} else {
			v, err := codec.Parse(get(rec, "value"), f)
			if err != nil {
				return fail(line, err)
			}
			if err := s.WriteField(f, v); err != nil {
				return fail(line, err)
			}
		}
		applied = append(applied, f)
	}
	return applied, nil
}

// ImportCSV applies the field sheet in filename to the session
func ImportCSV(filename string, s *editor.Session) ([]models.FieldDef, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file, s)
}
