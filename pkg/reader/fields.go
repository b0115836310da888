package reader

import (
	"sort"
	"strings"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/models"
)

// FieldInstance is one field of a profile decoded from a buffer
type FieldInstance struct {
	Def   models.FieldDef
	Value codec.Value
	Raw   []byte
	Err   error // set when the field lies past the end of the buffer
}

// ReadFields decodes every field of p from buf, ordered by section then
// offset. Fields that do not fit are returned with Err set rather than
// dropped, so short files still list their full layout.
func ReadFields(buf []byte, p *models.Profile) []FieldInstance {
	fields := p.Fields()
	order := make(map[string]int)
	for i, s := range p.Sections() {
		order[s] = i
	}
	sort.SliceStable(fields, func(i, j int) bool {
		si, sj := order[fields[i].Section], order[fields[j].Section]
		if si != sj {
			return si < sj
		}
		return fields[i].Offset < fields[j].Offset
	})

	out := make([]FieldInstance, 0, len(fields))
	for _, f := range fields {
		inst := FieldInstance{Def: f}
		v, err := codec.Decode(buf, f)
		if err != nil {
			inst.Err = err
		} else {
			inst.Value = v
			raw := make([]byte, f.Width())
			copy(raw, buf[f.Offset:f.End()])
			inst.Raw = raw
		}
		out = append(out, inst)
	}
	return out
}

// Filter keeps the instances whose field name or section contains query,
// ignoring case. An empty query keeps everything.
func Filter(fields []FieldInstance, query string) []FieldInstance {
	if query == "" {
		return fields
	}
	var out []FieldInstance
	for _, fi := range fields {
		if containsFold(fi.Def.Name, query) || containsFold(fi.Def.Section, query) {
			out = append(out, fi)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
