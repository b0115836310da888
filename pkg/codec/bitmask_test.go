package codec

import (
	"errors"
	"testing"

	"github.com/tosih/mrdf-tool/pkg/models"
)

func TestDecodeBitsTyreScenario(t *testing.T) {
	labels := []string{"wet", "inter", "soft", "medium", "hard", "extreme"}
	bits := DecodeBits(0x31, labels)
	if len(bits) != 8 {
		t.Fatalf("expected 8 bits, got %d", len(bits))
	}
	want := []bool{true, false, false, false, true, true, false, false}
	for i, b := range bits {
		if b.Index != i {
			t.Fatalf("bit %d has index %d", i, b.Index)
		}
		if b.Set != want[i] {
			t.Fatalf("bit %d set=%v, want %v", i, b.Set, want[i])
		}
	}
	if bits[0].Name() != "wet" || bits[4].Name() != "hard" {
		t.Fatalf("unexpected labels %q %q", bits[0].Name(), bits[4].Name())
	}
	if bits[7].Label != "" || bits[7].Name() != "bit 7" {
		t.Fatalf("unlabeled bit 7 = %+v", bits[7])
	}
	if got := BinaryString(0x31); got != "00110001" {
		t.Fatalf("BinaryString = %q", got)
	}
}

func TestSetBitIsolation(t *testing.T) {
	for _, start := range []byte{0x00, 0xFF, 0x31, 0xA5} {
		for i := 0; i < 8; i++ {
			for _, on := range []bool{true, false} {
				got, err := SetBit(start, i, on)
				if err != nil {
					t.Fatalf("SetBit(%08b, %d) failed: %v", start, i, err)
				}
				mask := byte(1) << uint(i)
				if got&^mask != start&^mask {
					t.Fatalf("SetBit(%08b, %d, %v) changed other bits: %08b", start, i, on, got)
				}
				if (got&mask != 0) != on {
					t.Fatalf("SetBit(%08b, %d, %v) = %08b", start, i, on, got)
				}
			}
		}
	}
}

func TestSetBitIndexError(t *testing.T) {
	for _, idx := range []int{-1, 8, 42} {
		got, err := SetBit(0x0F, idx, true)
		var ie *models.IndexError
		if !errors.As(err, &ie) {
			t.Fatalf("SetBit index %d: expected IndexError, got %v", idx, err)
		}
		if got != 0x0F {
			t.Fatalf("SetBit index %d modified byte: %08b", idx, got)
		}
	}
}

func TestSetLabels(t *testing.T) {
	got := SetLabels(0x81, []string{"soft"})
	if len(got) != 2 || got[0] != "soft" || got[1] != "bit 7" {
		t.Fatalf("SetLabels = %v", got)
	}
}
