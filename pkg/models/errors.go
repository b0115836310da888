package models

import "fmt"

// RangeError reports an offset/length that falls outside a buffer or a
// declared selection.
type RangeError struct {
	Offset int64
	Length int
	Size   int
	Reason string
}

func (e *RangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("range 0x%X+%d: %s", e.Offset, e.Length, e.Reason)
	}
	return fmt.Sprintf("range 0x%X+%d exceeds buffer of %d bytes", e.Offset, e.Length, e.Size)
}

// CheckRange returns a RangeError unless [offset, offset+length) lies inside a
// buffer of the given size. Offsets near math.MaxInt64 must not wrap.
func CheckRange(offset int64, length, size int) error {
	if offset < 0 || length < 0 || offset > int64(size) || int64(length) > int64(size)-offset {
		return &RangeError{Offset: offset, Length: length, Size: size}
	}
	return nil
}

// TypeMismatchError reports a value that cannot be represented by a field type
type TypeMismatchError struct {
	Field  string
	Type   FieldType
	Value  any
	Reason string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %s (%s): cannot store %v: %s", e.Field, e.Type, e.Value, e.Reason)
}

// IndexError reports a bit index outside 0-7, or an unmapped enum value when
// the caller asked for a strict lookup.
type IndexError struct {
	Field string
	Index int64
	Limit int
}

func (e *IndexError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("field %s: index %d out of range 0-%d", e.Field, e.Index, e.Limit-1)
	}
	return fmt.Sprintf("field %s: value %d has no enum entry", e.Field, e.Index)
}

// ProfileConflictError is returned while building a profile whose field
// definitions overlap or share a name.
type ProfileConflictError struct {
	Profile string
	First   string
	Second  string
	Reason  string
}

func (e *ProfileConflictError) Error() string {
	return fmt.Sprintf("profile %s: fields %s and %s conflict: %s", e.Profile, e.First, e.Second, e.Reason)
}
