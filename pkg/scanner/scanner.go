package scanner

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pterm/pterm"

	"github.com/tosih/mrdf-tool/pkg/models"
)

// Kind is the best guess for what an unmapped word holds
type Kind string

const (
	KindBool    Kind = "bool"
	KindFloat   Kind = "float"
	KindInt     Kind = "int"
	KindUnknown Kind = "?"
)

// Options tunes a scan
type Options struct {
	IncludeZero bool // report all-zero words too
	MinRun      int  // shortest run of floats reported as a table candidate
}

// DefaultOptions skips zero words and reports float runs of four or more
func DefaultOptions() Options {
	return Options{MinRun: 4}
}

// Word is one 4-byte aligned word that no profile field covers
type Word struct {
	Offset int64
	Raw    uint32
	Kind   Kind
}

// Value renders the word according to its guessed kind
func (w Word) Value() string {
	switch w.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", math.Float32frombits(w.Raw))
	case KindInt, KindBool:
		return fmt.Sprintf("%d", int32(w.Raw))
	}
	return fmt.Sprintf("0x%08X", w.Raw)
}

// Run is a stretch of consecutive float words, a likely table
type Run struct {
	Offset   int64
	Count    int
	Min      float64
	Max      float64
	Variance float64
}

// Result holds everything a scan found
type Result struct {
	Words []Word
	Runs  []Run
}

// Scan walks data in 4-byte steps and classifies every word whose bytes are
// all outside the fields of p. A nil profile treats the whole file as unmapped.
func Scan(data []byte, p *models.Profile, opts Options) Result {
	var res Result
	var run []Word

	flush := func() {
		if opts.MinRun > 0 && len(run) >= opts.MinRun {
			values := make([]float64, len(run))
			for i, w := range run {
				values[i] = float64(math.Float32frombits(w.Raw))
			}
			min, max, variance := calculateStats(values)
			res.Runs = append(res.Runs, Run{
				Offset:   run[0].Offset,
				Count:    len(run),
				Min:      min,
				Max:      max,
				Variance: variance,
			})
		}
		run = run[:0]
	}

	for off := int64(0); off+4 <= int64(len(data)); off += 4 {
		if p != nil && len(p.FieldsIn(off, 4)) > 0 {
			flush()
			continue
		}
		raw := binary.LittleEndian.Uint32(data[off:])
		if raw == 0 && !opts.IncludeZero {
			flush()
			continue
		}
		w := Word{Offset: off, Raw: raw, Kind: classify(raw)}
		res.Words = append(res.Words, w)
		if w.Kind == KindFloat {
			run = append(run, w)
		} else {
			flush()
		}
	}
	flush()
	return res
}

func classify(raw uint32) Kind {
	if raw <= 1 {
		return KindBool
	}
	if n := int32(raw); n > -0x10000 && n < 0x10000 {
		return KindInt
	}
	f := float64(math.Float32frombits(raw))
	if !math.IsNaN(f) && !math.IsInf(f, 0) {
		if a := math.Abs(f); a >= 1e-4 && a <= 1e7 {
			return KindFloat
		}
	}
	return KindUnknown
}

func calculateStats(values []float64) (float64, float64, float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	min := values[0]
	max := values[0]
	sum := 0.0

	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	avg := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - avg
		variance += diff * diff
	}
	variance /= float64(len(values))

	return min, max, variance
}

// Display prints the scan result as tables
func Display(res Result) error {
	if len(res.Words) == 0 {
		pterm.Info.Println("No unmapped non-zero words found")
		return nil
	}

	tableData := pterm.TableData{
		{"Offset", "Raw", "Guess", "Value"},
	}
	for _, w := range res.Words {
		tableData = append(tableData, []string{
			fmt.Sprintf("0x%04X", w.Offset),
			fmt.Sprintf("%08X", w.Raw),
			string(w.Kind),
			w.Value(),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("Found %d unmapped word(s)\n", len(res.Words))

	if len(res.Runs) == 0 {
		return nil
	}
	pterm.Println()
	pterm.DefaultSection.Println("Float runs")
	runData := pterm.TableData{{"Offset", "Count", "Min", "Max", "Variance"}}
	for _, r := range res.Runs {
		runData = append(runData, []string{
			fmt.Sprintf("0x%04X", r.Offset),
			fmt.Sprintf("%d", r.Count),
			fmt.Sprintf("%g", r.Min),
			fmt.Sprintf("%g", r.Max),
			fmt.Sprintf("%.3g", r.Variance),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(runData).Render()
}
