// Package registry owns the character profiles. Profiles are created once,
// assigned a stable id, and never mutated or deleted for the life of the
// process.
package registry

import (
	"fmt"
	"sync"

	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/pkg/errors"
)

// Registry stores character profiles in memory and assigns char_N ids from a
// monotonically increasing counter. Ids are never reassigned.
type Registry struct {
	mu       sync.Mutex
	profiles map[string]models.CharacterProfile
	order    []string
	nextID   int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		profiles: make(map[string]models.CharacterProfile),
	}
}

// Create validates the request, applies attribute defaults, and stores a new
// profile under a fresh id.
func (r *Registry) Create(req *models.CreateCharacterRequest) (*models.CharacterProfile, error) {
	if req.Name == "" {
		return nil, errors.NewValidationError("character name is required")
	}
	if req.Role == "" {
		return nil, errors.NewValidationError("character role is required")
	}
	if req.Personality == "" {
		return nil, errors.NewValidationError("character personality is required")
	}
	if req.Backstory == "" {
		return nil, errors.NewValidationError("character backstory is required")
	}

	profile := models.CharacterProfile{
		Name:          req.Name,
		Role:          req.Role,
		Personality:   req.Personality,
		Backstory:     req.Backstory,
		Setting:       req.Setting,
		SpeakingStyle: req.SpeakingStyle,
		KeyTraits:     req.KeyTraits,
	}
	if profile.Setting == "" {
		profile.Setting = models.DefaultSetting
	}
	if profile.SpeakingStyle == "" {
		profile.SpeakingStyle = models.DefaultSpeakingStyle
	}
	if profile.KeyTraits == "" {
		profile.KeyTraits = models.DefaultKeyTraits
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	profile.ID = fmt.Sprintf("char_%d", r.nextID)
	r.profiles[profile.ID] = profile
	r.order = append(r.order, profile.ID)

	created := profile
	return &created, nil
}

// Get returns the profile for the given id.
func (r *Registry) Get(id string) (*models.CharacterProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("character %q not found", id))
	}

	found := profile
	return &found, nil
}

// List returns all profiles in insertion order.
func (r *Registry) List() []models.CharacterProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles := make([]models.CharacterProfile, 0, len(r.order))
	for _, id := range r.order {
		profiles = append(profiles, r.profiles[id])
	}
	return profiles
}
