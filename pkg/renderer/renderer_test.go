package renderer

import (
	"strings"
	"testing"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/reader"
)

func TestValueString(t *testing.T) {
	tyres := models.FieldDef{Name: "TyreAvailability", Type: models.Bitmask8, BitLabels: models.TyreCompound}
	drive := models.FieldDef{Name: "DrivetrainType", Type: models.UInt32, Enum: models.Drivetrains}
	tests := []struct {
		name string
		f    models.FieldDef
		raw  []byte
		want string
	}{
		{name: "bitmask", f: tyres, raw: []byte{0x03}, want: "0x03 (Soft / Semi Slick, Medium)"},
		{name: "empty bitmask", f: tyres, raw: []byte{0x00}, want: "0x00 (None)"},
		{name: "unlabeled bit", f: tyres, raw: []byte{0x80}, want: "0x80 (bit 7)"},
		{name: "enum", f: drive, raw: []byte{2, 0, 0, 0}, want: "2 (FWD)"},
		{name: "unmapped enum", f: drive, raw: []byte{3, 0, 0, 0}, want: "3 (Unknown)"},
		{name: "float", f: models.FieldDef{Type: models.Float32}, raw: []byte{0, 0, 0xC0, 0x3F}, want: "1.5"},
		{name: "bool", f: models.FieldDef{Type: models.Bool32}, raw: []byte{1, 0, 0, 0}, want: "true"},
		{name: "non-boolean", f: models.FieldDef{Type: models.Bool32}, raw: []byte{5, 0, 0, 0}, want: "non-boolean (5)"},
		{name: "int32", f: models.FieldDef{Type: models.Int32}, raw: []byte{0xFE, 0xFF, 0xFF, 0xFF}, want: "-2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := codec.Decode(tc.raw, tc.f)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := ValueString(v, tc.f); got != tc.want {
				t.Fatalf("ValueString = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatHexLines(t *testing.T) {
	data := make([]byte, 20)
	copy(data[16:], "ABCD")
	data[0] = 0xDE

	lines := FormatHexLines(data, 0, 100)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "00000000  DE 00 00") || !strings.HasSuffix(lines[0], "|................|") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	want := "00000010  41 42 43 44" + strings.Repeat(" ", 47-11) + "  |ABCD|"
	if lines[1] != want {
		t.Fatalf("line 1 = %q\nwant     %q", lines[1], want)
	}

	if got := FormatHexLines(data, 18, 1); len(got) != 1 || !strings.HasPrefix(got[0], "00000012  43 ") {
		t.Fatalf("partial dump = %q", got)
	}
	if got := FormatHexLines(data, 30, 4); len(got) != 0 {
		t.Fatalf("dump past the end = %q", got)
	}
}

func TestFieldRows(t *testing.T) {
	p := models.MustProfile(models.ProfileInfo{Key: "t"}, []models.FieldDef{
		{Name: "A", Section: "S", Offset: 0, Type: models.UInt8},
		{Name: "B", Section: "S", Offset: 4, Type: models.UInt32},
	})
	fields := reader.ReadFields([]byte{7, 0, 0, 0}, p)
	rows := FieldRows(fields, func(f models.FieldDef) bool { return f.Name == "A" })
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1][1] != "A" || rows[1][4] != "7" || rows[1][5] != "07" || rows[1][6] == "" {
		t.Fatalf("row A = %q", rows[1])
	}
	if rows[2][5] != "" || rows[2][6] != "" {
		t.Fatalf("row B = %q", rows[2])
	}
}
