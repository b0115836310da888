package scanner

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/tosih/mrdf-tool/pkg/models"
)

func TestScanSkipsMappedAndZeroWords(t *testing.T) {
	p := models.MustProfile(models.ProfileInfo{Key: "t"}, []models.FieldDef{
		{Name: "Count", Offset: 0, Type: models.UInt32},
	})
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:], 5)
	for i, f := range []float32{1.5, 2.5, 3.5, 4.5} {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[20:], 1)
	binary.LittleEndian.PutUint32(buf[28:], 0xFFFFFFFF)

	res := Scan(buf, p, DefaultOptions())

	wantOffsets := []int64{4, 8, 12, 16, 20, 28}
	if len(res.Words) != len(wantOffsets) {
		t.Fatalf("got %d words, want %d: %+v", len(res.Words), len(wantOffsets), res.Words)
	}
	for i, w := range res.Words {
		if w.Offset != wantOffsets[i] {
			t.Fatalf("word %d at 0x%X, want 0x%X", i, w.Offset, wantOffsets[i])
		}
	}
	if res.Words[4].Kind != KindBool || res.Words[5].Kind != KindInt || res.Words[5].Value() != "-1" {
		t.Fatalf("unexpected kinds %+v %+v", res.Words[4], res.Words[5])
	}

	if len(res.Runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(res.Runs))
	}
	r := res.Runs[0]
	if r.Offset != 4 || r.Count != 4 || r.Min != 1.5 || r.Max != 4.5 || r.Variance != 1.25 {
		t.Fatalf("unexpected run %+v", r)
	}
}

func TestScanOptions(t *testing.T) {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(2.7))

	res := Scan(buf, nil, Options{IncludeZero: true, MinRun: 1})
	if len(res.Words) != 3 {
		t.Fatalf("IncludeZero: got %d words, want 3", len(res.Words))
	}
	if len(res.Runs) != 1 || res.Runs[0].Offset != 4 {
		t.Fatalf("MinRun 1: runs = %+v", res.Runs)
	}

	// trailing bytes shorter than a word are ignored
	if got := Scan([]byte{1, 2, 3}, nil, DefaultOptions()); len(got.Words) != 0 {
		t.Fatalf("short buffer produced words %+v", got.Words)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  uint32
		want Kind
	}{
		{0, KindBool},
		{1, KindBool},
		{6, KindInt},
		{0xFFFFFFFE, KindInt},
		{math.Float32bits(88.5), KindFloat},
		{math.Float32bits(-0.25), KindFloat},
		{0x80000000, KindUnknown},
		{0x7FC00000, KindUnknown},
		{math.Float32bits(1e9), KindUnknown},
	}
	for _, tc := range tests {
		if got := classify(tc.raw); got != tc.want {
			t.Fatalf("classify(0x%08X) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
