package profiles

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tosih/mrdf-tool/pkg/models"
	"gopkg.in/yaml.v3"
)

// Offset is a field offset written as a decimal or 0x-prefixed hex number
type Offset int64

// UnmarshalYAML accepts both YAML integers and strings like "0x3C"
func (o *Offset) UnmarshalYAML(value *yaml.Node) error {
	n, err := strconv.ParseInt(strings.TrimSpace(value.Value), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid offset %q", value.Line, value.Value)
	}
	*o = Offset(n)
	return nil
}

// MarshalYAML writes offsets in hex, the way layouts are documented
func (o Offset) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("0x%04X", int64(o)), nil
}

// File is the on-disk form of a profile
type File struct {
	Key            string      `yaml:"key"`
	Label          string      `yaml:"label,omitempty"`
	Version        int         `yaml:"version,omitempty"`
	ExpectedSize   int64       `yaml:"expectedSize,omitempty"`
	FilenameTokens []string    `yaml:"filenameTokens,omitempty"`
	Fields         []FieldSpec `yaml:"fields"`
}

// FieldSpec is the on-disk form of a field definition
type FieldSpec struct {
	Name    string           `yaml:"name"`
	Section string           `yaml:"section,omitempty"`
	Offset  Offset           `yaml:"offset"`
	Type    string           `yaml:"type"`
	Notes   string           `yaml:"notes,omitempty"`
	Enum    map[int64]string `yaml:"enum,omitempty"`
	Bits    []string         `yaml:"bits,omitempty"`
	Legal   []int64          `yaml:"legal,omitempty"`
	Range   []float64        `yaml:"range,omitempty"`
}

// Parse decodes and validates one profile document. source names the input
// in error messages.
func Parse(data []byte, source string) (*models.Profile, error) {
	var pf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	p, err := pf.Profile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return p, nil
}

// Profile converts the file form into a validated models.Profile
func (pf File) Profile() (*models.Profile, error) {
	fields := make([]models.FieldDef, 0, len(pf.Fields))
	for i, fs := range pf.Fields {
		typ, err := models.ParseFieldType(fs.Type)
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i, fs.Name, err)
		}
		f := models.FieldDef{
			Name:      fs.Name,
			Section:   fs.Section,
			Offset:    int64(fs.Offset),
			Type:      typ,
			Notes:     fs.Notes,
			BitLabels: fs.Bits,
		}
		if len(fs.Enum) > 0 {
			f.Enum = models.EnumMap(fs.Enum)
		}
		switch {
		case len(fs.Legal) > 0 && len(fs.Range) > 0:
			return nil, fmt.Errorf("field %s: use either legal or range, not both", fs.Name)
		case len(fs.Legal) > 0:
			f.Plausible = &models.Plausibility{Values: fs.Legal}
		case len(fs.Range) == 2:
			f.Plausible = &models.Plausibility{Min: fs.Range[0], Max: fs.Range[1]}
		case len(fs.Range) != 0:
			return nil, fmt.Errorf("field %s: range needs [min, max]", fs.Name)
		}
		fields = append(fields, f)
	}
	return models.NewProfile(models.ProfileInfo{
		Key:            pf.Key,
		Label:          pf.Label,
		Version:        pf.Version,
		FilenameTokens: pf.FilenameTokens,
		ExpectedSize:   pf.ExpectedSize,
	}, fields)
}

// FromProfile converts p back into its file form
func FromProfile(p *models.Profile) File {
	pf := File{
		Key:            p.Key,
		Label:          p.Label,
		Version:        p.Version,
		ExpectedSize:   p.ExpectedSize,
		FilenameTokens: p.FilenameTokens,
	}
	for _, f := range p.Fields() {
		fs := FieldSpec{
			Name:    f.Name,
			Section: f.Section,
			Offset:  Offset(f.Offset),
			Type:    f.Type.String(),
			Notes:   f.Notes,
			Bits:    f.BitLabels,
		}
		if f.HasEnum() {
			fs.Enum = map[int64]string(f.Enum)
		}
		if pl := f.Plausible; pl != nil {
			if f.Type == models.Float32 {
				fs.Range = []float64{pl.Min, pl.Max}
			} else {
				fs.Legal = pl.Values
			}
		}
		pf.Fields = append(pf.Fields, fs)
	}
	return pf
}

// Dump renders p as a YAML profile document
func Dump(p *models.Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromProfile(p)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads one profile file
func LoadFile(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// LoadDir reads every *.yaml and *.yml file of dir in name order. A missing
// directory yields no profiles.
func LoadDir(dir string) ([]*models.Profile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []*models.Profile
	for _, name := range names {
		p, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Registry returns the built-in profiles followed by those found in dirs
func Registry(dirs ...string) (*models.Registry, error) {
	reg := models.Builtin()
	for _, dir := range dirs {
		loaded, err := LoadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, p := range loaded {
			if err := reg.Register(p); err != nil {
				return nil, fmt.Errorf("%s: %w", dir, err)
			}
		}
	}
	return reg, nil
}
