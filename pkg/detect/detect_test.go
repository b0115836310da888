package detect

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/tosih/mrdf-tool/pkg/models"
)

func putFloat(buf []byte, off int, f float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
}

func putUint(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func statsFile() []byte {
	buf := make([]byte, models.StatsProfile.MinSize())
	putFloat(buf, 0x84, 2.7)
	putUint(buf, 0x4C, 1)
	putUint(buf, 0x8C, 1)
	return buf
}

func physicsFile() []byte {
	buf := make([]byte, 0x400)
	putFloat(buf, 0x30, 600)
	putFloat(buf, 0x34, 1200)
	putFloat(buf, 0x38, 0.8)
	putFloat(buf, 0x3C, 1.0)
	putUint(buf, 0x4C, 6)
	return buf
}

func topKey(c []Candidate) string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Profile.Key
}

func TestDetectBuiltinProfiles(t *testing.T) {
	d := New(models.Builtin(), DefaultOptions())

	ranked := d.Detect(statsFile(), "car.mrdf")
	if topKey(ranked) != "stats" {
		t.Fatalf("stats file detected as %q", topKey(ranked))
	}
	if ranked[0].Confidence != 0.5 {
		t.Fatalf("stats confidence = %v, want 0.5", ranked[0].Confidence)
	}
	if ranked[1].Confidence != 0 {
		t.Fatalf("physics confidence on a short file = %v, want 0", ranked[1].Confidence)
	}

	ranked = d.Detect(physicsFile(), "whatever.mrdf")
	if topKey(ranked) != "physics" {
		t.Fatalf("physics file detected as %q", topKey(ranked))
	}
	if ranked[1].Confidence != 0 {
		t.Fatalf("stats confidence on physics data = %v, want 0", ranked[1].Confidence)
	}
}

func TestDetectFilenameBoost(t *testing.T) {
	d := New(models.Builtin(), DefaultOptions())

	ranked := d.Detect(statsFile(), "Vehicles/GT3_STATS.mrdf")
	if ranked[0].Profile.Key != "stats" || math.Abs(ranked[0].Confidence-0.9) > 1e-9 {
		t.Fatalf("got %s %.2f, want stats 0.90", ranked[0].Profile.Key, ranked[0].Confidence)
	}

	ranked = d.Detect(physicsFile(), `C:\Games\AMS2\Physics\global.mrdf`)
	if ranked[0].Profile.Key != "physics" || math.Abs(ranked[0].Confidence-0.9) > 1e-9 {
		t.Fatalf("got %s %.2f, want physics 0.90", ranked[0].Profile.Key, ranked[0].Confidence)
	}
}

func TestDetectNoConfidentMatch(t *testing.T) {
	d := New(models.Builtin(), DefaultOptions())

	zero := make([]byte, models.StatsProfile.MinSize())
	if c, ok := d.Best(zero, "x.mrdf"); ok {
		t.Fatalf("all-zero file matched %s (%.2f)", c.Profile.Key, c.Confidence)
	}

	for _, short := range [][]byte{nil, {}, make([]byte, 10)} {
		ranked := d.Detect(short, "stats.mrdf")
		for _, c := range ranked {
			if c.Confidence != 0 {
				t.Fatalf("short file: %s confidence %v", c.Profile.Key, c.Confidence)
			}
		}
		if _, ok := d.Best(short, "stats.mrdf"); ok {
			t.Fatalf("short file produced a match")
		}
	}
}

func TestDetectExpectedSizeOverridesFilename(t *testing.T) {
	p := models.MustProfile(models.ProfileInfo{Key: "fixed", FilenameTokens: []string{"fixed"}, ExpectedSize: 8},
		[]models.FieldDef{{Name: "a", Offset: 0, Type: models.UInt32}})
	reg, err := models.NewRegistry(p)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	d := New(reg, DefaultOptions())

	if got := d.Detect(make([]byte, 9), "fixed.mrdf")[0].Confidence; got != 0 {
		t.Fatalf("size mismatch confidence = %v, want 0", got)
	}
	if got := d.Detect(make([]byte, 8), "fixed.mrdf")[0].Confidence; math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("matching size confidence = %v, want 0.9", got)
	}
}

func TestDetectTieKeepsDeclarationOrder(t *testing.T) {
	a := models.MustProfile(models.ProfileInfo{Key: "a"}, []models.FieldDef{{Name: "x", Type: models.UInt8}})
	b := models.MustProfile(models.ProfileInfo{Key: "b"}, []models.FieldDef{{Name: "x", Type: models.UInt8}})
	reg, _ := models.NewRegistry(b, a)
	d := New(reg, DefaultOptions())

	ranked := d.Detect([]byte{0}, "")
	if ranked[0].Profile.Key != "b" || ranked[1].Profile.Key != "a" {
		t.Fatalf("tie order = %s,%s want b,a", ranked[0].Profile.Key, ranked[1].Profile.Key)
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := New(models.Builtin(), DefaultOptions())
	data := physicsFile()
	data[0x4C] = 0xFF
	first := d.Detect(data, "stats_physics.mrdf")
	second := d.Detect(data, "stats_physics.mrdf")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Detect not deterministic:\n%+v\n%+v", first, second)
	}
}
