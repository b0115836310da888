package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/detect"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/reader"
)

// BytesPerLine is the width of a hex dump row
const BytesPerLine = 16

// ValueString renders a decoded value the way the field table shows it:
// enums as "N (Label)", bitmasks as "0xNN (labels)", floats with six
// significant digits.
func ValueString(v codec.Value, f models.FieldDef) string {
	switch f.Type {
	case models.Bitmask8:
		b := v.Byte()
		labels := codec.SetLabels(b, f.BitLabels)
		if len(labels) == 0 {
			return fmt.Sprintf("0x%02X (None)", b)
		}
		return fmt.Sprintf("0x%02X (%s)", b, strings.Join(labels, ", "))
	case models.Float32:
		return strconv.FormatFloat(float64(v.Float()), 'g', 6, 32)
	case models.Bool32:
		if b, ok := v.Bool(); ok {
			return strconv.FormatBool(b)
		}
		return fmt.Sprintf("non-boolean (%d)", v.Raw)
	}
	if f.HasEnum() {
		label := v.Label
		if v.Unmapped {
			label = "Unknown"
		}
		return fmt.Sprintf("%d (%s)", v.Int(), label)
	}
	return strconv.FormatInt(v.Int(), 10)
}

// HexBytes renders b as space separated upper-case hex pairs
func HexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("%02X", x)
	}
	return strings.Join(parts, " ")
}

// FormatHexLines renders data[start:start+n] as a classic hex dump, one
// "OFFSET  HEX  |ASCII|" line per 16 bytes. The range is clipped to data.
func FormatHexLines(data []byte, start int64, n int) []string {
	if start < 0 {
		start = 0
	}
	end := start + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	var lines []string
	for off := start; off < end; off += BytesPerLine {
		stop := off + BytesPerLine
		if stop > end {
			stop = end
		}
		chunk := data[off:stop]

		var ascii strings.Builder
		for _, b := range chunk {
			if b >= 32 && b <= 126 {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}
		lines = append(lines, fmt.Sprintf("%08X  %-*s  |%s|", off, BytesPerLine*3-1, HexBytes(chunk), ascii.String()))
	}
	return lines
}

// RenderHexDump prints a hex dump inside a box
func RenderHexDump(title string, data []byte, start int64, n int) {
	lines := FormatHexLines(data, start, n)
	if len(lines) == 0 {
		pterm.Warning.Println("Nothing to dump in that range")
		return
	}
	pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(strings.Join(lines, "\n"))
}

// FieldRows builds the table rows for a field listing. Fields whose bytes
// differ from the original are flagged in the last column.
func FieldRows(fields []reader.FieldInstance, changed func(models.FieldDef) bool) [][]string {
	data := [][]string{
		{"Section", "Name", "Offset", "Type", "Value", "Raw", ""},
	}
	for _, fi := range fields {
		value := pterm.FgRed.Sprint("out of range")
		raw := ""
		if fi.Err == nil {
			value = ValueString(fi.Value, fi.Def)
			raw = HexBytes(fi.Raw)
			if fi.Value.Unmapped || fi.Value.NonBoolean() {
				value = pterm.FgYellow.Sprint(value)
			}
		}
		mark := ""
		if changed != nil && changed(fi.Def) {
			mark = pterm.FgLightMagenta.Sprint("*")
		}
		data = append(data, []string{
			fi.Def.Section,
			fi.Def.Name,
			fmt.Sprintf("0x%04X", fi.Def.Offset),
			fi.Def.Type.String(),
			value,
			raw,
			mark,
		})
	}
	return data
}

// RenderFields prints the field table of a profile
func RenderFields(p *models.Profile, fields []reader.FieldInstance, changed func(models.FieldDef) bool) error {
	pterm.DefaultSection.Printf("%s (%s, v%d) - %d fields\n", p.Label, p.Key, p.Version, len(fields))
	return pterm.DefaultTable.WithHasHeader().WithData(FieldRows(fields, changed)).Render()
}

// RenderField prints one field in detail, bitmask flags included
func RenderField(f models.FieldDef, v codec.Value, original codec.Value) error {
	title := fmt.Sprintf("%s | Offset: 0x%04X | %s | Section: %s", f.Name, f.Offset, f.Type, f.Section)
	var body strings.Builder
	fmt.Fprintf(&body, "Value:    %s\n", ValueString(v, f))
	fmt.Fprintf(&body, "Original: %s\n", ValueString(original, f))
	fmt.Fprintf(&body, "Raw:      0x%0*X", f.Width()*2, v.Raw)
	if f.Notes != "" {
		fmt.Fprintf(&body, "\nNotes:    %s", f.Notes)
	}
	if f.HasEnum() {
		var opts []string
		for _, k := range f.Enum.Keys() {
			opts = append(opts, fmt.Sprintf("%d=%s", k, f.Enum[k]))
		}
		fmt.Fprintf(&body, "\nOptions:  %s", strings.Join(opts, ", "))
	}
	pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Println(body.String())

	if f.Type == models.Bitmask8 {
		return RenderBits(v.Byte(), f.BitLabels)
	}
	return nil
}

// RenderBits prints the eight flags of a bitmask byte
func RenderBits(b byte, labels []string) error {
	data := [][]string{{"Bit", "Mask", "Label", "Set"}}
	for _, bit := range codec.DecodeBits(b, labels) {
		set := pterm.FgGray.Sprint("no")
		if bit.Set {
			set = pterm.FgGreen.Sprint("yes")
		}
		data = append(data, []string{
			strconv.Itoa(bit.Index),
			fmt.Sprintf("0x%02X", 1<<uint(bit.Index)),
			bit.Name(),
			set,
		})
	}
	pterm.Info.Printf("Binary: %s\n", codec.BinaryString(b))
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// RenderDetection prints ranked detection candidates
func RenderDetection(filename string, ranked []detect.Candidate) error {
	pterm.DefaultSection.Printf("Detection: %s\n", filename)
	data := [][]string{{"Profile", "Label", "Confidence", "Reasons"}}
	for _, c := range ranked {
		conf := fmt.Sprintf("%.2f", c.Confidence)
		switch {
		case c.Confidence >= 0.75:
			conf = pterm.FgGreen.Sprint(conf)
		case c.Confidence > 0:
			conf = pterm.FgYellow.Sprint(conf)
		default:
			conf = pterm.FgGray.Sprint(conf)
		}
		data = append(data, []string{c.Profile.Key, c.Profile.Label, conf, strings.Join(c.Reasons, "; ")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// ListProfiles displays all registered profiles in a table
func ListProfiles(reg *models.Registry) error {
	pterm.DefaultHeader.WithFullWidth().Println("Available MRDF Profiles")

	data := [][]string{
		{"Key", "Label", "Version", "Fields", "Min Size", "Filename Hints"},
	}
	for _, p := range reg.Profiles() {
		size := fmt.Sprintf("0x%X", p.MinSize())
		if p.ExpectedSize > 0 {
			size = fmt.Sprintf("%d (fixed)", p.ExpectedSize)
		}
		data = append(data, []string{
			p.Key,
			p.Label,
			strconv.Itoa(p.Version),
			strconv.Itoa(p.Len()),
			size,
			strings.Join(p.FilenameTokens, ", "),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
