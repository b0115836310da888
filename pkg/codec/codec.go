package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/tosih/mrdf-tool/pkg/models"
)

// Value is a decoded field value. Raw holds the exact stored bit pattern
// (zero-extended for one-byte types), so re-encoding a Value reproduces the
// original bytes, NaN payloads and negative zero included.
type Value struct {
	Type models.FieldType
	Raw  uint32

	// Label is the enum label for Raw; Unmapped is set when the field has
	// an enum map without an entry for Raw.
	Label    string
	Unmapped bool
}

// Float returns the value of a Float32 field
func (v Value) Float() float32 {
	return math.Float32frombits(v.Raw)
}

// Int returns the integer value, sign-extended for Int32
func (v Value) Int() int64 {
	if v.Type == models.Int32 {
		return int64(int32(v.Raw))
	}
	return int64(v.Raw)
}

// Bool returns the boolean value of a Bool32 field. ok is false when the
// stored value is neither 0 nor 1.
func (v Value) Bool() (b bool, ok bool) {
	switch v.Raw {
	case 0:
		return false, true
	case 1:
		return true, true
	}
	return false, false
}

// NonBoolean reports a Bool32 field holding something other than 0 or 1
func (v Value) NonBoolean() bool {
	_, ok := v.Bool()
	return v.Type == models.Bool32 && !ok
}

// Byte returns the low byte, the stored value of one-byte types
func (v Value) Byte() byte {
	return byte(v.Raw)
}

func (v Value) String() string {
	switch v.Type {
	case models.Float32:
		return strconv.FormatFloat(float64(v.Float()), 'g', 6, 32)
	case models.Bool32:
		if b, ok := v.Bool(); ok {
			return strconv.FormatBool(b)
		}
		return fmt.Sprintf("non-boolean(%d)", v.Raw)
	case models.Bitmask8:
		return "0b" + BinaryString(v.Byte())
	}
	s := strconv.FormatInt(v.Int(), 10)
	if v.Label != "" {
		s += " (" + v.Label + ")"
	} else if v.Unmapped {
		s += " (unmapped)"
	}
	return s
}

// Decode reads the field from buf
func Decode(buf []byte, f models.FieldDef) (Value, error) {
	w := f.Width()
	if err := models.CheckRange(f.Offset, w, len(buf)); err != nil {
		return Value{}, err
	}
	b := buf[f.Offset : f.Offset+int64(w)]

	v := Value{Type: f.Type}
	if w == 1 {
		v.Raw = uint32(b[0])
	} else {
		v.Raw = binary.LittleEndian.Uint32(b)
	}

	if f.HasEnum() {
		if label, ok := f.Enum.Label(v.Int()); ok {
			v.Label = label
		} else {
			v.Unmapped = true
		}
	}
	return v, nil
}

// Encode converts v into exactly f.Width() bytes. v may be a Value of the
// field's own type (re-encoded bit for bit), a Go float, a Go integer or a
// bool. Anything the field type cannot hold yields a TypeMismatchError.
func Encode(v any, f models.FieldDef) ([]byte, error) {
	raw, err := toRaw(v, f)
	if err != nil {
		return nil, err
	}
	out := make([]byte, f.Width())
	if len(out) == 1 {
		out[0] = byte(raw)
	} else {
		binary.LittleEndian.PutUint32(out, raw)
	}
	return out, nil
}

// EnumLabel is the strict enum lookup: an unmapped value is an IndexError
func EnumLabel(v Value, f models.FieldDef) (string, error) {
	if !f.HasEnum() {
		return "", fmt.Errorf("field %s has no enum", f.Name)
	}
	label, ok := f.Enum.Label(v.Int())
	if !ok {
		return "", &models.IndexError{Field: f.Name, Index: v.Int()}
	}
	return label, nil
}

func mismatch(f models.FieldDef, v any, reason string) error {
	return &models.TypeMismatchError{Field: f.Name, Type: f.Type, Value: v, Reason: reason}
}

func toRaw(v any, f models.FieldDef) (uint32, error) {
	switch x := v.(type) {
	case Value:
		if x.Type != f.Type {
			return 0, mismatch(f, v, fmt.Sprintf("value of type %s", x.Type))
		}
		if f.Width() == 1 && x.Raw > math.MaxUint8 {
			return 0, mismatch(f, v, "raw value wider than one byte")
		}
		return x.Raw, nil
	case bool:
		if f.Type != models.Bool32 {
			return 0, mismatch(f, v, "booleans only fit bool32 fields")
		}
		if x {
			return 1, nil
		}
		return 0, nil
	case float32:
		return fromFloat(float64(x), v, f)
	case float64:
		return fromFloat(x, v, f)
	case int:
		return fromInt(int64(x), v, f)
	case int8:
		return fromInt(int64(x), v, f)
	case int16:
		return fromInt(int64(x), v, f)
	case int32:
		return fromInt(int64(x), v, f)
	case int64:
		return fromInt(x, v, f)
	case uint:
		return fromUint(uint64(x), v, f)
	case uint8:
		return fromUint(uint64(x), v, f)
	case uint16:
		return fromUint(uint64(x), v, f)
	case uint32:
		return fromUint(uint64(x), v, f)
	case uint64:
		return fromUint(x, v, f)
	}
	return 0, mismatch(f, v, fmt.Sprintf("unsupported Go type %T", v))
}

func fromFloat(x float64, orig any, f models.FieldDef) (uint32, error) {
	if f.Type != models.Float32 {
		if x == math.Trunc(x) && !math.IsInf(x, 0) && math.Abs(x) <= 1<<53 {
			return fromInt(int64(x), orig, f)
		}
		return 0, mismatch(f, orig, "not an integer")
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, mismatch(f, orig, "non-finite float")
	}
	if math.Abs(x) > math.MaxFloat32 {
		return 0, mismatch(f, orig, "out of float32 range")
	}
	return math.Float32bits(float32(x)), nil
}

func fromInt(x int64, orig any, f models.FieldDef) (uint32, error) {
	switch f.Type {
	case models.Float32:
		if x > 1<<24 || x < -(1<<24) {
			return 0, mismatch(f, orig, "integer not exactly representable as float32")
		}
		return math.Float32bits(float32(x)), nil
	case models.Int32:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, mismatch(f, orig, "overflows int32")
		}
		return uint32(int32(x)), nil
	case models.UInt32:
		if x < 0 || x > math.MaxUint32 {
			return 0, mismatch(f, orig, "overflows uint32")
		}
		return uint32(x), nil
	case models.Bool32:
		if x != 0 && x != 1 {
			return 0, mismatch(f, orig, "bool32 accepts only 0 or 1")
		}
		return uint32(x), nil
	case models.UInt8, models.Bitmask8:
		if x < 0 || x > math.MaxUint8 {
			return 0, mismatch(f, orig, "overflows uint8")
		}
		return uint32(x), nil
	}
	return 0, mismatch(f, orig, "unknown field type")
}

func fromUint(x uint64, orig any, f models.FieldDef) (uint32, error) {
	if x > math.MaxInt64 {
		return 0, mismatch(f, orig, "overflows "+f.Type.String())
	}
	return fromInt(int64(x), orig, f)
}
