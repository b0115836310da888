package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ProfileInfo holds the descriptive part of a profile
type ProfileInfo struct {
	Key            string
	Label          string
	Version        int
	FilenameTokens []string
	ExpectedSize   int64 // 0 means any size is accepted
}

// Profile is an immutable, validated set of field definitions describing one
// binary layout variant.
type Profile struct {
	ProfileInfo

	fields []FieldDef
	byName map[string]int
}

// UnknownFieldError is returned by Profile.Lookup for a name that is not defined
type UnknownFieldError struct {
	Profile     string
	Name        string
	Suggestions []string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("profile %s has no field %q", e.Profile, e.Name)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

// NewProfile validates the field definitions and builds the name index.
// Overlapping byte ranges and duplicate names yield a ProfileConflictError.
func NewProfile(info ProfileInfo, fields []FieldDef) (*Profile, error) {
	if strings.TrimSpace(info.Key) == "" {
		return nil, fmt.Errorf("profile key is empty")
	}
	if info.Label == "" {
		info.Label = info.Key
	}
	if info.Version <= 0 {
		info.Version = 1
	}
	if info.ExpectedSize < 0 {
		return nil, fmt.Errorf("profile %s: negative expected size", info.Key)
	}

	p := &Profile{
		ProfileInfo: info,
		fields:      make([]FieldDef, len(fields)),
		byName:      make(map[string]int, len(fields)),
	}
	p.FilenameTokens = append([]string(nil), info.FilenameTokens...)

	for i, f := range fields {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", info.Key, err)
		}
		if info.ExpectedSize > 0 && f.End() > info.ExpectedSize {
			return nil, fmt.Errorf("profile %s: field %s ends at 0x%X past expected size %d", info.Key, f.Name, f.End(), info.ExpectedSize)
		}
		if j, dup := p.byName[f.Name]; dup {
			return nil, &ProfileConflictError{Profile: info.Key, First: fields[j].Name, Second: f.Name, Reason: "duplicate name"}
		}
		p.fields[i] = cloneField(f)
		p.byName[f.Name] = i
	}

	// Overlap check on a copy sorted by offset; neighbours are enough.
	sorted := make([]FieldDef, len(p.fields))
	copy(sorted, p.fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Overlaps(cur) {
			return nil, &ProfileConflictError{
				Profile: info.Key,
				First:   prev.Name,
				Second:  cur.Name,
				Reason:  fmt.Sprintf("bytes 0x%X-0x%X overlap 0x%X-0x%X", prev.Offset, prev.End()-1, cur.Offset, cur.End()-1),
			}
		}
	}
	return p, nil
}

// MustProfile is like NewProfile but panics on error. It is meant for the
// statically declared built-in tables.
func MustProfile(info ProfileInfo, fields []FieldDef) *Profile {
	p, err := NewProfile(info, fields)
	if err != nil {
		panic(err)
	}
	return p
}

func cloneField(f FieldDef) FieldDef {
	if f.Enum != nil {
		m := make(EnumMap, len(f.Enum))
		for k, v := range f.Enum {
			m[k] = v
		}
		f.Enum = m
	}
	f.BitLabels = append([]string(nil), f.BitLabels...)
	if f.Plausible != nil {
		pl := *f.Plausible
		pl.Values = append([]int64(nil), pl.Values...)
		f.Plausible = &pl
	}
	return f
}

// Fields returns the field definitions in declaration order
func (p *Profile) Fields() []FieldDef {
	out := make([]FieldDef, len(p.fields))
	copy(out, p.fields)
	return out
}

// Len returns the number of fields
func (p *Profile) Len() int {
	return len(p.fields)
}

// Field returns the field with the exact name
func (p *Profile) Field(name string) (FieldDef, bool) {
	i, ok := p.byName[name]
	if !ok {
		return FieldDef{}, false
	}
	return p.fields[i], true
}

// Lookup resolves a field by name. An exact match wins, then a single
// case-insensitive match. Otherwise an UnknownFieldError with fuzzy
// suggestions is returned.
func (p *Profile) Lookup(name string) (FieldDef, error) {
	if f, ok := p.Field(name); ok {
		return f, nil
	}
	var folded []FieldDef
	for _, f := range p.fields {
		if strings.EqualFold(f.Name, name) {
			folded = append(folded, f)
		}
	}
	if len(folded) == 1 {
		return folded[0], nil
	}
	return FieldDef{}, &UnknownFieldError{Profile: p.Key, Name: name, Suggestions: p.Suggest(name, 3)}
}

// Suggest returns up to limit field names that fuzzily match name, best first
func (p *Profile) Suggest(name string, limit int) []string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(name, names)
	sort.Stable(ranks)
	var out []string
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// FieldAt returns the field covering the byte at offset
func (p *Profile) FieldAt(offset int64) (FieldDef, bool) {
	for _, f := range p.fields {
		if offset >= f.Offset && offset < f.End() {
			return f, true
		}
	}
	return FieldDef{}, false
}

// FieldsIn returns every field that shares a byte with [offset, offset+length)
func (p *Profile) FieldsIn(offset int64, length int) []FieldDef {
	if length <= 0 {
		return nil
	}
	end := offset + int64(length)
	var out []FieldDef
	for _, f := range p.fields {
		if f.Offset < end && offset < f.End() {
			out = append(out, f)
		}
	}
	return out
}

// Sections returns the distinct section names in first-seen order
func (p *Profile) Sections() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range p.fields {
		if !seen[f.Section] {
			seen[f.Section] = true
			out = append(out, f.Section)
		}
	}
	return out
}

// MinSize returns the smallest file size that holds every field
func (p *Profile) MinSize() int64 {
	var size int64
	for _, f := range p.fields {
		if f.End() > size {
			size = f.End()
		}
	}
	return size
}

// Samples returns the fields that carry a plausibility check, in declaration order
func (p *Profile) Samples() []FieldDef {
	var out []FieldDef
	for _, f := range p.fields {
		if f.Plausible != nil {
			out = append(out, f)
		}
	}
	return out
}

// MatchesFilename reports the first filename token found in path, if any.
// Matching is case-insensitive and treats '\' like '/'.
func (p *Profile) MatchesFilename(path string) (string, bool) {
	norm := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	if norm == "" {
		return "", false
	}
	for _, tok := range p.FilenameTokens {
		t := strings.ToLower(tok)
		if t != "" && strings.Contains(norm, t) {
			return tok, true
		}
	}
	return "", false
}
