package compare

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/renderer"
)

// FieldChange is a field whose bytes differ between original and working
type FieldChange struct {
	Def    models.FieldDef
	Before codec.Value
	After  codec.Value
}

// Report describes every pending edit of a session
type Report struct {
	Size     int
	Ranges   []editor.Range
	Fields   []FieldChange
	Unmapped []editor.Range // changed bytes no field covers
	Changed  int            // total changed bytes
}

// Clean reports whether there is nothing to save
func (r Report) Clean() bool {
	return len(r.Ranges) == 0
}

// Build compares the original and working buffers of s
func Build(s *editor.Session) Report {
	return BuildBuffers(s.Original(), s.Snapshot(), s.Profile())
}

// BuildBuffers compares two equally sized buffers under profile p, which may be nil
func BuildBuffers(original, working []byte, p *models.Profile) Report {
	r := Report{Size: len(working), Ranges: editor.Diff(original, working)}

	seen := make(map[string]bool)
	for _, rg := range r.Ranges {
		r.Changed += rg.Length
		if p == nil {
			r.Unmapped = append(r.Unmapped, rg)
			continue
		}
		for _, f := range p.FieldsIn(rg.Offset, rg.Length) {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			before, err1 := codec.Decode(original, f)
			after, err2 := codec.Decode(working, f)
			if err1 != nil || err2 != nil {
				continue
			}
			r.Fields = append(r.Fields, FieldChange{Def: f, Before: before, After: after})
		}
		r.Unmapped = append(r.Unmapped, uncovered(rg, p)...)
	}
	return r
}

// uncovered returns the parts of rg that no field of p maps
func uncovered(rg editor.Range, p *models.Profile) []editor.Range {
	var out []editor.Range
	start := int64(-1)
	for off := rg.Offset; off < rg.End(); off++ {
		_, mapped := p.FieldAt(off)
		if !mapped && start < 0 {
			start = off
		}
		if mapped && start >= 0 {
			out = append(out, editor.Range{Offset: start, Length: int(off - start)})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, editor.Range{Offset: start, Length: int(rg.End() - start)})
	}
	return out
}

// Display prints a report
func Display(r Report, original, working []byte) {
	pterm.DefaultHeader.WithFullWidth().Println("Pending Changes")

	if r.Clean() {
		pterm.Success.Println("No changes: working buffer matches the file on disk")
		return
	}

	pterm.Info.Printf("Changed bytes: %d / %d (%.1f%%)\n",
		r.Changed, r.Size, float64(r.Changed)/float64(r.Size)*100)
	pterm.Info.Printf("Changed ranges: %d, fields: %d\n", len(r.Ranges), len(r.Fields))

	if len(r.Fields) > 0 {
		data := [][]string{{"Field", "Offset", "Before", "After"}}
		for _, fc := range r.Fields {
			data = append(data, []string{
				fc.Def.Name,
				fmt.Sprintf("0x%04X", fc.Def.Offset),
				pterm.FgRed.Sprint(renderer.ValueString(fc.Before, fc.Def)),
				pterm.FgGreen.Sprint(renderer.ValueString(fc.After, fc.Def)),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	for _, rg := range r.Ranges {
		pterm.Println()
		pterm.DefaultSection.Printf("Bytes 0x%04X-0x%04X\n", rg.Offset, rg.End()-1)
		pterm.Println(pterm.FgRed.Sprint("- " + renderer.HexBytes(original[rg.Offset:rg.End()])))
		pterm.Println(pterm.FgGreen.Sprint("+ " + renderer.HexBytes(working[rg.Offset:rg.End()])))
	}

	if len(r.Unmapped) > 0 {
		pterm.Println()
		pterm.Warning.Printf("%d changed range(s) fall outside any field\n", len(r.Unmapped))
	}
}
