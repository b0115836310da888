package models

import "fmt"

// Registry holds the known profiles in declaration order. It is filled once at
// startup and only read afterwards.
type Registry struct {
	profiles []*Profile
	byKey    map[string]int
}

// NewRegistry builds a registry from profiles, rejecting duplicate keys
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{byKey: make(map[string]int)}
	for _, p := range profiles {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a profile. Declaration order is the detection tie-break.
func (r *Registry) Register(p *Profile) error {
	if p == nil {
		return fmt.Errorf("nil profile")
	}
	if _, dup := r.byKey[p.Key]; dup {
		return fmt.Errorf("profile %q already registered", p.Key)
	}
	r.byKey[p.Key] = len(r.profiles)
	r.profiles = append(r.profiles, p)
	return nil
}

// Profiles returns the profiles in declaration order
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Get returns the profile registered under key
func (r *Registry) Get(key string) (*Profile, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return nil, false
	}
	return r.profiles[i], true
}

// Default returns the first registered profile, or nil for an empty registry
func (r *Registry) Default() *Profile {
	if len(r.profiles) == 0 {
		return nil
	}
	return r.profiles[0]
}

// Keys returns the profile keys in declaration order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		keys[i] = p.Key
	}
	return keys
}

// Len returns the number of registered profiles
func (r *Registry) Len() int {
	return len(r.profiles)
}
