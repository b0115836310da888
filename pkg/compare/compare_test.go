package compare

import (
	"reflect"
	"testing"

	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
)

func TestBuildReport(t *testing.T) {
	p := models.MustProfile(models.ProfileInfo{Key: "t"}, []models.FieldDef{
		{Name: "Gears", Offset: 0, Type: models.UInt32},
		{Name: "ABS", Offset: 4, Type: models.Bool32},
		{Name: "Flags", Offset: 12, Type: models.Bitmask8, BitLabels: []string{"a"}},
	})
	s := editor.NewSession(make([]byte, 16), p)

	if r := Build(s); !r.Clean() || r.Changed != 0 {
		t.Fatalf("fresh session report = %+v", r)
	}

	if _, err := s.WriteFieldNamed("Gears", 6); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteFieldNamed("ABS", true); err != nil {
		t.Fatal(err)
	}
	if err := s.OverwriteHex(9, []byte{0xFF, 0xFF}); err != nil {
		t.Fatal(err)
	}

	r := Build(s)
	if r.Clean() || r.Changed != 4 {
		t.Fatalf("Changed = %d", r.Changed)
	}
	wantRanges := []editor.Range{{Offset: 0, Length: 1}, {Offset: 4, Length: 1}, {Offset: 9, Length: 2}}
	if !reflect.DeepEqual(r.Ranges, wantRanges) {
		t.Fatalf("Ranges = %+v", r.Ranges)
	}
	if len(r.Fields) != 2 || r.Fields[0].Def.Name != "Gears" || r.Fields[1].Def.Name != "ABS" {
		t.Fatalf("Fields = %+v", r.Fields)
	}
	if r.Fields[0].Before.Int() != 0 || r.Fields[0].After.Int() != 6 {
		t.Fatalf("Gears change = %v -> %v", r.Fields[0].Before, r.Fields[0].After)
	}
	if want := []editor.Range{{Offset: 9, Length: 2}}; !reflect.DeepEqual(r.Unmapped, want) {
		t.Fatalf("Unmapped = %+v", r.Unmapped)
	}
}

func TestBuildWithoutProfile(t *testing.T) {
	r := BuildBuffers([]byte{0, 0, 0}, []byte{0, 1, 1}, nil)
	if len(r.Fields) != 0 || len(r.Unmapped) != 1 || r.Unmapped[0].Length != 2 {
		t.Fatalf("report = %+v", r)
	}
}

func TestUncoveredSplitsAroundFields(t *testing.T) {
	p := models.MustProfile(models.ProfileInfo{Key: "t"}, []models.FieldDef{
		{Name: "Mid", Offset: 4, Type: models.UInt32},
	})
	got := uncovered(editor.Range{Offset: 2, Length: 8}, p)
	want := []editor.Range{{Offset: 2, Length: 2}, {Offset: 8, Length: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("uncovered = %+v, want %+v", got, want)
	}
}
