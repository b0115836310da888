package editor

import (
	"fmt"
	"sort"

	"github.com/tosih/mrdf-tool/pkg/models"
)

// Preset is a named batch of field writes for one profile
type Preset struct {
	Name        string
	Profile     string
	Description string
	Values      []PresetValue
}

// PresetValue is a single write of a preset
type PresetValue struct {
	Field string
	Value any
}

var presets = []Preset{
	{
		Name:        "assists-on",
		Profile:     "stats",
		Description: "Enable ABS, traction and stability control",
		Values: []PresetValue{
			{Field: "ABS", Value: true},
			{Field: "TC", Value: true},
			{Field: "SC", Value: true},
		},
	},
	{
		Name:        "assists-off",
		Profile:     "stats",
		Description: "Disable ABS, traction and stability control",
		Values: []PresetValue{
			{Field: "ABS", Value: false},
			{Field: "TC", Value: false},
			{Field: "SC", Value: false},
		},
	},
	{
		Name:        "all-compounds",
		Profile:     "stats",
		Description: "Make every labeled tyre compound available",
		Values: []PresetValue{
			{Field: "TyreAvailability", Value: 0x7F},
		},
	},
	{
		Name:        "onboard-adjust",
		Profile:     "stats",
		Description: "Allow onboard roll bar and brake bias adjustment",
		Values: []PresetValue{
			{Field: "OnboardRollBars", Value: true},
			{Field: "OnboardBrakeBias", Value: true},
		},
	},
	{
		Name:        "no-brake-glow",
		Profile:     "physics",
		Description: "Turn brake glow off for AI and player",
		Values: []PresetValue{
			{Field: "BrakeGlowScaleAI", Value: 0.0},
			{Field: "BrakeGlowScalePlayer", Value: 0.0},
		},
	},
	{
		Name:        "tick-360",
		Profile:     "physics",
		Description: "Run physics at 360 Hz",
		Values: []PresetValue{
			{Field: "PhysicsTickRate", Value: 360},
		},
	},
}

// Presets returns the built-in presets sorted by name
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindPreset returns the built-in preset with the given name
func FindPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset writes every value of p through the session. The preset must
// target the bound profile. If any write fails, the writes already made are
// reverted so the session is left as it was.
func (s *Session) ApplyPreset(p Preset) ([]models.FieldDef, error) {
	if s.profile == nil {
		return nil, fmt.Errorf("no profile bound")
	}
	if p.Profile != s.profile.Key {
		return nil, fmt.Errorf("preset %s is for profile %s, file uses %s", p.Name, p.Profile, s.profile.Key)
	}

	before := s.Snapshot()
	var touched []models.FieldDef
	for _, pv := range p.Values {
		f, err := s.WriteFieldNamed(pv.Field, pv.Value)
		if err != nil {
			s.splice(0, before)
			return nil, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		touched = append(touched, f)
	}
	return touched, nil
}
