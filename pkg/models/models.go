package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FieldType identifies how a field is stored in the file
type FieldType int

const (
	Float32 FieldType = iota
	Int32
	UInt32
	Bool32
	UInt8
	Bitmask8
)

var fieldTypeNames = map[FieldType]string{
	Float32:  "float32",
	Int32:    "int32",
	UInt32:   "uint32",
	Bool32:   "bool32",
	UInt8:    "uint8",
	Bitmask8: "bitmask8",
}

// Width returns the number of bytes the type occupies
func (t FieldType) Width() int {
	switch t {
	case UInt8, Bitmask8:
		return 1
	default:
		return 4
	}
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Valid reports whether t is one of the known field types
func (t FieldType) Valid() bool {
	_, ok := fieldTypeNames[t]
	return ok
}

// Signed reports whether the stored integer is two's-complement
func (t FieldType) Signed() bool {
	return t == Int32
}

// SupportsEnum reports whether an enum map may be attached to the type
func (t FieldType) SupportsEnum() bool {
	return t == Int32 || t == UInt32 || t == UInt8
}

// ParseFieldType converts a textual type name (as used in profile files and
// the CLI) into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "float32", "f32":
		return Float32, nil
	case "int32", "i32":
		return Int32, nil
	case "uint32", "u32":
		return UInt32, nil
	case "bool32", "bool":
		return Bool32, nil
	case "uint8", "u8", "byte":
		return UInt8, nil
	case "bitmask8", "bitmask", "flags8":
		return Bitmask8, nil
	}
	return 0, fmt.Errorf("unknown field type %q", s)
}

// EnumMap maps raw integer values to symbolic labels
type EnumMap map[int64]string

// Label returns the label for raw, if one is defined
func (m EnumMap) Label(raw int64) (string, bool) {
	if m == nil {
		return "", false
	}
	label, ok := m[raw]
	return label, ok
}

// Value looks up the raw value for a label, ignoring case
func (m EnumMap) Value(label string) (int64, bool) {
	want := strings.TrimSpace(label)
	for _, k := range m.Keys() {
		if strings.EqualFold(m[k], want) {
			return k, true
		}
	}
	return 0, false
}

// Keys returns the raw values in ascending order
func (m EnumMap) Keys() []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Plausibility describes the legal values of a field sampled during profile
// detection. Integer fields use Values; Float32 fields use the inclusive
// Min/Max range.
type Plausibility struct {
	Values []int64
	Min    float64
	Max    float64
}

// AllowsInt reports whether raw is in the legal set
func (p Plausibility) AllowsInt(raw int64) bool {
	for _, v := range p.Values {
		if v == raw {
			return true
		}
	}
	return false
}

// AllowsFloat reports whether f lies inside the legal range. NaN never does.
func (p Plausibility) AllowsFloat(f float64) bool {
	return f >= p.Min && f <= p.Max
}

// FieldDef defines a single named field inside a profile
type FieldDef struct {
	Name      string
	Section   string
	Offset    int64
	Type      FieldType
	Notes     string
	Enum      EnumMap
	BitLabels []string
	Plausible *Plausibility
}

// Width returns the byte width of the field
func (f FieldDef) Width() int {
	return f.Type.Width()
}

// End returns the offset one past the last byte of the field
func (f FieldDef) End() int64 {
	return f.Offset + int64(f.Width())
}

// Overlaps reports whether two fields share at least one byte
func (f FieldDef) Overlaps(o FieldDef) bool {
	return f.Offset < o.End() && o.Offset < f.End()
}

// HasEnum reports whether the field carries an enum map
func (f FieldDef) HasEnum() bool {
	return len(f.Enum) > 0
}

func (f FieldDef) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field at 0x%X: empty name", f.Offset)
	}
	if f.Offset < 0 {
		return fmt.Errorf("field %s: negative offset %d", f.Name, f.Offset)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("field %s: invalid type %v", f.Name, f.Type)
	}
	if f.Offset > math.MaxInt64-int64(f.Width()) {
		return fmt.Errorf("field %s: offset 0x%X too large", f.Name, f.Offset)
	}
	if f.HasEnum() && !f.Type.SupportsEnum() {
		return fmt.Errorf("field %s: enum not allowed for %s", f.Name, f.Type)
	}
	if f.Type == Bitmask8 {
		if len(f.BitLabels) == 0 || len(f.BitLabels) > 8 {
			return fmt.Errorf("field %s: bitmask8 needs 1-8 bit labels, got %d", f.Name, len(f.BitLabels))
		}
	} else if len(f.BitLabels) > 0 {
		return fmt.Errorf("field %s: bit labels only allowed for bitmask8", f.Name)
	}
	if p := f.Plausible; p != nil {
		if f.Type == Float32 && p.Min > p.Max {
			return fmt.Errorf("field %s: plausible range min %g > max %g", f.Name, p.Min, p.Max)
		}
		if f.Type != Float32 && len(p.Values) == 0 {
			return fmt.Errorf("field %s: plausible check needs legal values", f.Name)
		}
	}
	return nil
}
