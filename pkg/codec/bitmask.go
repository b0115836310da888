package codec

import (
	"fmt"

	"github.com/tosih/mrdf-tool/pkg/models"
)

// Bit is one flag of a Bitmask8 byte
type Bit struct {
	Index int
	Label string // empty for bits the profile does not name
	Set   bool
}

// Name returns the label, or "bit N" for unlabeled bits
func (b Bit) Name() string {
	if b.Label != "" {
		return b.Label
	}
	return fmt.Sprintf("bit %d", b.Index)
}

// DecodeBits splits b into its eight flags, least-significant bit first.
// labels[i] names bit i; bits past the labels are returned unlabeled.
func DecodeBits(b byte, labels []string) []Bit {
	bits := make([]Bit, 8)
	for i := range bits {
		bits[i] = Bit{Index: i, Set: b&(1<<uint(i)) != 0}
		if i < len(labels) {
			bits[i].Label = labels[i]
		}
	}
	return bits
}

// SetBit returns b with bit index set or cleared. All other bits are kept.
func SetBit(b byte, index int, value bool) (byte, error) {
	if index < 0 || index > 7 {
		return b, &models.IndexError{Index: int64(index), Limit: 8}
	}
	mask := byte(1) << uint(index)
	if value {
		return b | mask, nil
	}
	return b &^ mask, nil
}

// BinaryString renders b as eight '0'/'1' characters, most-significant bit first
func BinaryString(b byte) string {
	return fmt.Sprintf("%08b", b)
}

// SetLabels returns the labels of the set bits, unlabeled ones as "bit N"
func SetLabels(b byte, labels []string) []string {
	var out []string
	for _, bit := range DecodeBits(b, labels) {
		if bit.Set {
			out = append(out, bit.Name())
		}
	}
	return out
}
