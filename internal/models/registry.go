// Package models - registry.go implements the profile registry.
package models

import (
	"fmt"
	"sort"
	"sync"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// Registry manages the catalog of model conversion profiles.
//
// The Registry provides thread-safe access to profile information. It is
// pre-loaded with built-in profiles through init() functions in the
// profiles subdirectory and can be extended at runtime with overrides
// from profiles.yaml.
type Registry struct {
	// mu provides thread-safe access to the profiles map.
	// Uses RWMutex to allow multiple concurrent readers.
	mu sync.RWMutex

	// profiles maps profile IDs to their definitions.
	profiles map[string]*Profile
}

// NewRegistry creates an empty profile registry.
//
// Most callers should use GetDefaultRegistry(), which is populated with
// the built-in profiles.
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]*Profile),
	}
}

// Register adds or replaces a profile in the registry.
//
// The profile is validated before registration; invalid profiles are
// rejected.
//
// Parameters:
//   - profile: Profile to register
//
// Returns:
//   - nil on success
//   - Error if the profile fails validation
func (r *Registry) Register(profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("profile must not be nil")
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; exists {
		logger.Debug("Replacing existing profile: %s", profile.ID)
	}
	r.profiles[profile.ID] = profile

	return nil
}

// Get retrieves a profile by ID.
//
// Returns a copy of the profile so callers can apply command-line
// overrides without mutating the registry.
//
// Parameters:
//   - id: Profile identifier
//
// Returns:
//   - Copy of the profile
//   - Error if no profile with that ID exists
func (r *Registry) Get(id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("unknown model profile: %s (use 'svthhb models' to list available profiles)", id)
	}

	copied := *profile
	copied.InputShape = append([]int(nil), profile.InputShape...)
	copied.DataMean = append([]float64(nil), profile.DataMean...)
	copied.OutputNames = append([]string(nil), profile.OutputNames...)
	copied.ExpectedArtifacts = append([]string(nil), profile.ExpectedArtifacts...)
	copied.ExtraArgs = append([]string(nil), profile.ExtraArgs...)
	return &copied, nil
}

// List returns all registered profiles sorted by ID.
//
// The method is thread-safe and returns copies, not references, to
// prevent external modification of the registry.
func (r *Registry) List() []*Profile {
	r.mu.RLock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)

	result := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		if p, err := r.Get(id); err == nil {
			result = append(result, p)
		}
	}
	return result
}

// ApplyOverrides merges profile overrides from profiles.yaml into the
// registry.
//
// An override for an existing profile updates only the fields it sets;
// an override with an unknown model_id creates a new profile (which must
// then carry at least a model file).
//
// Parameters:
//   - overrides: Parsed override entries
//
// Returns:
//   - nil on success
//   - Error if a resulting profile fails validation
func (r *Registry) ApplyOverrides(overrides []config.ProfileConfig) error {
	for _, o := range overrides {
		base, err := r.Get(o.ModelID)
		if err != nil {
			base = &Profile{ID: o.ModelID}
		}

		if o.DisplayName != "" {
			base.DisplayName = o.DisplayName
		}
		if o.ModelFile != "" {
			base.ModelFile = o.ModelFile
		}
		if o.InputName != "" {
			base.InputName = o.InputName
		}
		if len(o.InputShape) > 0 {
			base.InputShape = append([]int(nil), o.InputShape...)
		}
		if len(o.DataMean) > 0 {
			base.DataMean = append([]float64(nil), o.DataMean...)
		}
		if o.DataScale > 0 {
			base.DataScale = o.DataScale
		}
		if o.Quantization != "" {
			base.Quantization = o.Quantization
		}
		if o.PixelFormat != "" {
			base.PixelFormat = o.PixelFormat
		}
		if o.Board != "" {
			base.Board = o.Board
		}
		if o.CalibrationWidth > 0 {
			base.CalibrationWidth = o.CalibrationWidth
		}
		if o.CalibrationHeight > 0 {
			base.CalibrationHeight = o.CalibrationHeight
		}
		if len(o.OutputNames) > 0 {
			base.OutputNames = append([]string(nil), o.OutputNames...)
		}
		if len(o.ExpectedArtifacts) > 0 {
			base.ExpectedArtifacts = append([]string(nil), o.ExpectedArtifacts...)
		}
		if len(o.ExtraArgs) > 0 {
			base.ExtraArgs = append([]string(nil), o.ExtraArgs...)
		}

		if err := r.Register(base); err != nil {
			return fmt.Errorf("profile override %s: %w", o.ModelID, err)
		}
		logger.Debug("Applied profile override: %s", o.ModelID)
	}
	return nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// GetDefaultRegistry returns the singleton registry instance.
func GetDefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// RegisterProfile registers a profile with the global registry.
//
// This is called from init() functions in the profiles subdirectory.
// Registration failures for built-in profiles are programming errors and
// panic immediately.
func RegisterProfile(profile *Profile) {
	if err := GetDefaultRegistry().Register(profile); err != nil {
		panic(fmt.Sprintf("failed to register built-in profile: %v", err))
	}
}
