package models

// Default profile attributes applied when the create request leaves them out.
const (
	DefaultSetting       = "fantasy"
	DefaultSpeakingStyle = "casual and friendly"
	DefaultKeyTraits     = "helpful, knowledgeable"
)

// CharacterProfile describes an NPC. Profiles are write-once: they are never
// mutated after creation so prompts stay consistent for the lifetime of every
// session that references them.
type CharacterProfile struct {
	ID            string `json:"character_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Personality   string `json:"personality"`
	Backstory     string `json:"backstory"`
	Setting       string `json:"setting"`
	SpeakingStyle string `json:"speaking_style"`
	KeyTraits     string `json:"key_traits"`
}

// CreateCharacterRequest is the payload for creating a character profile.
type CreateCharacterRequest struct {
	Name          string `json:"name" binding:"required"`
	Role          string `json:"role" binding:"required"`
	Personality   string `json:"personality" binding:"required"`
	Backstory     string `json:"backstory" binding:"required"`
	Setting       string `json:"setting"`
	SpeakingStyle string `json:"speaking_style"`
	KeyTraits     string `json:"key_traits"`
}
