package detect

import (
	"fmt"
	"sort"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/models"
)

// Options tunes the scoring weights
type Options struct {
	Base          float64 // starting confidence of every profile
	FilenameBoost float64 // added when a filename token matches
	SamplePenalty float64 // subtracted per implausible sample field
	Threshold     float64 // minimum confidence for Best to report a match
}

// DefaultOptions returns the standard weights
func DefaultOptions() Options {
	return Options{
		Base:          0.5,
		FilenameBoost: 0.4,
		SamplePenalty: 0.25,
		Threshold:     0.5,
	}
}

// Candidate is one ranked detection result
type Candidate struct {
	Profile    *models.Profile
	Confidence float64
	Reasons    []string
}

// Detector ranks the profiles of a registry against unknown files. It holds
// no mutable state; Detect is pure.
type Detector struct {
	registry *models.Registry
	opts     Options
}

// New returns a Detector over reg
func New(reg *models.Registry, opts Options) *Detector {
	return &Detector{registry: reg, opts: opts}
}

// Detect scores every registered profile for data and the filename hint and
// returns them by confidence, highest first. Ties keep registry order.
func (d *Detector) Detect(data []byte, filename string) []Candidate {
	profiles := d.registry.Profiles()
	out := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, d.score(p, data, filename))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// Best returns the top candidate when it reaches the threshold. A false
// result means no confident match; the caller falls back to manual selection.
func (d *Detector) Best(data []byte, filename string) (Candidate, bool) {
	ranked := d.Detect(data, filename)
	if len(ranked) == 0 || ranked[0].Confidence <= 0 || ranked[0].Confidence < d.opts.Threshold {
		return Candidate{}, false
	}
	return ranked[0], true
}

func (d *Detector) score(p *models.Profile, data []byte, filename string) Candidate {
	c := Candidate{Profile: p, Confidence: d.opts.Base}

	if tok, ok := p.MatchesFilename(filename); ok {
		c.Confidence += d.opts.FilenameBoost
		c.Reasons = append(c.Reasons, fmt.Sprintf("filename contains %q", tok))
	}

	size := int64(len(data))
	if p.ExpectedSize > 0 && size != p.ExpectedSize {
		c.Confidence = 0
		c.Reasons = append(c.Reasons, fmt.Sprintf("size %d != expected %d", size, p.ExpectedSize))
		return c
	}
	if size < p.MinSize() {
		c.Confidence = 0
		c.Reasons = append(c.Reasons, fmt.Sprintf("size %d shorter than layout (%d)", size, p.MinSize()))
		return c
	}

	for _, f := range p.Samples() {
		v, err := codec.Decode(data, f)
		if err != nil {
			// MinSize covers every field, kept for safety
			c.Confidence -= d.opts.SamplePenalty
			c.Reasons = append(c.Reasons, fmt.Sprintf("%s unreadable", f.Name))
			continue
		}
		if !plausible(v, f) {
			c.Confidence -= d.opts.SamplePenalty
			c.Reasons = append(c.Reasons, fmt.Sprintf("%s=%s implausible", f.Name, v))
		}
	}

	c.Confidence = clamp(c.Confidence)
	return c
}

func plausible(v codec.Value, f models.FieldDef) bool {
	if f.Type == models.Float32 {
		return f.Plausible.AllowsFloat(float64(v.Float()))
	}
	return f.Plausible.AllowsInt(v.Int())
}

func clamp(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
