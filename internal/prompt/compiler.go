// Package prompt compiles character profiles, player input, and bounded
// history into prompt text. Everything here is a pure function of its inputs:
// the compiler never calls the generator and never touches session state. The
// profile header restates identity verbatim on every call because the external
// generator keeps no memory between requests.
package prompt

import (
	"fmt"
	"strings"

	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/pkg/errors"
)

// BuildFreeform builds the prompt for a freeform character turn. An empty
// playerInput asks the character to introduce itself instead of replying.
func BuildFreeform(profile *models.CharacterProfile, playerInput string, history []models.ConversationTurn) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an NPC in a %s video game.\n\n", profile.Setting)
	fmt.Fprintf(&b, "Character Name: %s\n", profile.Name)
	fmt.Fprintf(&b, "Role: %s\n", profile.Role)
	fmt.Fprintf(&b, "Personality: %s\n", profile.Personality)
	fmt.Fprintf(&b, "Backstory: %s\n", profile.Backstory)
	fmt.Fprintf(&b, "Speaking Style: %s\n", profile.SpeakingStyle)
	fmt.Fprintf(&b, "Key Traits: %s\n\n", profile.KeyTraits)
	b.WriteString("IMPORTANT: Maintain consistency in your character's voice, personality, and speaking patterns throughout the conversation. Stay in character at all times.")

	if len(history) > 0 {
		b.WriteString("\n\nConversation History:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Speaker, turn.Content)
		}
	}

	if playerInput != "" {
		fmt.Fprintf(&b, "\nPlayer: %s\n%s (%s):", playerInput, profile.Name, profile.Role)
	} else {
		b.WriteString("\n\nIntroduce yourself to the player in character.\n")
	}

	return b.String()
}

// BuildBranching builds the prompt for a branching-dialogue node. With no
// selected option it asks for an opening line with 3-4 options; otherwise it
// asks for a continuation of the given choice with 2-3 new options. Either way
// it mandates the DIALOGUE/OPTIONn response format the parser expects.
func BuildBranching(profile *models.CharacterProfile, selectedOption string) string {
	var b strings.Builder

	if selectedOption == "" {
		fmt.Fprintf(&b, "Create a branching dialogue for %s, a %s in a %s setting.\n", profile.Name, profile.Role, profile.Setting)
		fmt.Fprintf(&b, "Character personality: %s\n", profile.Personality)
		fmt.Fprintf(&b, "Backstory: %s\n\n", profile.Backstory)
		b.WriteString("Create an engaging opening dialogue with 3-4 conversation options for the player.\n")
		b.WriteString("Format the response as:\n")
		b.WriteString("DIALOGUE: [character's opening dialogue]\n")
		b.WriteString("OPTION1: [first option text]\n")
		b.WriteString("OPTION2: [second option text]\n")
		b.WriteString("OPTION3: [third option text]\n")
		b.WriteString("OPTION4: [fourth option text]")
	} else {
		fmt.Fprintf(&b, "Continue the conversation as %s responding to the player's choice: %q\n", profile.Name, selectedOption)
		b.WriteString("Maintain character consistency and provide 2-3 new conversation options.\n")
		b.WriteString("Format as:\n")
		b.WriteString("DIALOGUE: [character's response]\n")
		b.WriteString("OPTION1: [first option text]\n")
		b.WriteString("OPTION2: [second option text]\n")
		b.WriteString("OPTION3: [third option text]")
	}

	return b.String()
}

// BuildTranslation builds a tone-preserving translation prompt. Empty text is
// rejected before any gateway call.
func BuildTranslation(text, targetLanguage string) (string, error) {
	if text == "" {
		return "", errors.NewValidationError("text is required")
	}
	return fmt.Sprintf("Translate the following text to %s. Maintain the tone and style of the original text.\n\n%s", targetLanguage, text), nil
}
