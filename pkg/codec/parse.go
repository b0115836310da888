package codec

import (
	"strconv"
	"strings"

	"github.com/tosih/mrdf-tool/pkg/models"
)

// Parse converts user-entered text into a value Encode accepts for f.
// Integers may be decimal, 0x hex, 0b binary or 0o octal; enum fields also
// accept their labels.
func Parse(text string, f models.FieldDef) (any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, mismatch(f, text, "empty value")
	}

	switch f.Type {
	case models.Float32:
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, mismatch(f, text, "not a number")
		}
		return x, nil

	case models.Bool32:
		switch strings.ToLower(s) {
		case "1", "true", "on", "yes":
			return true, nil
		case "0", "false", "off", "no":
			return false, nil
		}
		return nil, mismatch(f, text, "expected true/false")
	}

	if f.HasEnum() {
		if raw, ok := f.Enum.Value(s); ok {
			return raw, nil
		}
	}
	// "3 (Turbo)" and "0x31 (Wet, Hard)" as printed in field listings
	if i := strings.Index(s, " ("); i > 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return nil, mismatch(f, text, "not an integer")
	}
	return n, nil
}
