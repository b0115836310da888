package reader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tosih/mrdf-tool/pkg/models"
)

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "car_stats.mrdf")
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := WriteFile(name, data); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("ReadFile = % X", got)
	}
	if _, err := os.Stat(name + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind")
	}

	if _, err := ReadFile(dir); err == nil {
		t.Fatalf("reading a directory should fail")
	}
	if _, err := ReadFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("reading a missing file should fail")
	}
}

func TestReadFieldsOrderAndShortFiles(t *testing.T) {
	p := models.MustProfile(models.ProfileInfo{Key: "t"}, []models.FieldDef{
		{Name: "B2", Section: "B", Offset: 8, Type: models.UInt32},
		{Name: "A1", Section: "A", Offset: 4, Type: models.UInt8},
		{Name: "B1", Section: "B", Offset: 0, Type: models.UInt32},
		{Name: "A0", Section: "A", Offset: 12, Type: models.Float32},
	})
	buf := []byte{1, 0, 0, 0, 9, 0, 0, 0, 2, 0, 0, 0}

	got := ReadFields(buf, p)
	names := []string{"B1", "B2", "A1", "A0"}
	if len(got) != len(names) {
		t.Fatalf("got %d fields", len(got))
	}
	for i, n := range names {
		if got[i].Def.Name != n {
			t.Fatalf("field %d = %s, want %s", i, got[i].Def.Name, n)
		}
	}
	if got[0].Value.Int() != 1 || got[1].Value.Int() != 2 || got[2].Value.Int() != 9 {
		t.Fatalf("unexpected values %v %v %v", got[0].Value, got[1].Value, got[2].Value)
	}
	if !bytes.Equal(got[2].Raw, []byte{9}) {
		t.Fatalf("Raw = % X", got[2].Raw)
	}
	if got[3].Err == nil {
		t.Fatalf("field past the end should carry an error")
	}

	if f := Filter(got, "b"); len(f) != 2 {
		t.Fatalf("Filter(b) = %d", len(f))
	}
	if f := Filter(got, "a0"); len(f) != 1 || f[0].Def.Name != "A0" {
		t.Fatalf("Filter(a0) = %+v", f)
	}
}
