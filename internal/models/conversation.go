package models

import (
	"time"
)

// PlayerSpeaker is the literal speaker marker for player turns; character
// turns use the character's name.
const PlayerSpeaker = "Player"

// ConversationTurn is one utterance in a transcript. Turns are immutable once
// appended and their timestamps never decrease within a session.
type ConversationTurn struct {
	Speaker   string    `json:"speaker"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionKey identifies exactly one transcript. The same session id combined
// with a different character id is an independent transcript.
type SessionKey struct {
	CharacterID string
	SessionID   string
}

func (k SessionKey) String() string {
	return k.CharacterID + "_" + k.SessionID
}

// DialogueNode is one branching-mode exchange: the character's line plus the
// options offered to the player. Nodes are produced on demand from the last
// selected option; they are never stored as a graph.
type DialogueNode struct {
	Text    string   `json:"dialogue"`
	Options []string `json:"options"`
}

// IsTerminal reports whether the branch ends at this node.
func (n DialogueNode) IsTerminal() bool {
	return len(n.Options) == 0
}

// DialogueRequest asks for a freeform character turn. An empty message asks
// the character to introduce itself.
type DialogueRequest struct {
	Message     string `json:"message"`
	CharacterID string `json:"character_id" binding:"required"`
	SessionID   string `json:"session_id" binding:"required"`
}

// BranchingDialogueRequest asks for the next branching node. SelectedOption is
// empty for the opening node.
type BranchingDialogueRequest struct {
	CharacterID    string `json:"character_id" binding:"required"`
	SessionID      string `json:"session_id" binding:"required"`
	SelectedOption string `json:"selected_option"`
}

// TranslateRequest asks for a tone-preserving translation of dialogue text.
type TranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

// DialogueResponse is the result of a freeform turn, mirrored verbatim over
// the realtime channel.
type DialogueResponse struct {
	Response      string `json:"response"`
	CharacterName string `json:"character_name"`
	SessionID     string `json:"session_id"`
}

// BranchingDialogueResponse is the result of a branching turn.
type BranchingDialogueResponse struct {
	Dialogue      string   `json:"dialogue"`
	Options       []string `json:"options"`
	CharacterName string   `json:"character_name"`
}

// TranslationResponse echoes the original next to the translation.
type TranslationResponse struct {
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	TargetLanguage string `json:"target_language"`
}
