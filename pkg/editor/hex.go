package editor

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHexBytes parses user hex input such as "DE AD BE EF" or "de,ad, be ef".
// Every token must be exactly one or two hex digits.
func ParseHexBytes(s string) ([]byte, error) {
	tokens := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no hex bytes given")
	}
	out := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		t := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
		if len(t) == 0 || len(t) > 2 {
			return nil, fmt.Errorf("invalid hex byte %q", tok)
		}
		b, err := strconv.ParseUint(t, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte %q", tok)
		}
		out = append(out, byte(b))
	}
	return out, nil
}

// ParseOffset accepts decimal or 0x-prefixed offsets
func ParseOffset(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative offset %d", n)
	}
	return n, nil
}
