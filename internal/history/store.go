// Package history holds the append-only per-session transcripts. State lives
// for the process lifetime only; a restart starts every session fresh.
package history

import (
	"sync"
	"time"

	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/pkg/errors"
)

// DefaultWindow is how many recent turns feed the prompt when no window size
// is configured.
const DefaultWindow = 5

// Store maps session keys to their transcripts. Appends for one key are
// ordered by the coordinator; the store's own lock only guards map access, so
// unrelated sessions never queue behind each other for long.
type Store struct {
	mu          sync.RWMutex
	transcripts map[models.SessionKey][]models.ConversationTurn

	// now is swappable for tests
	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		transcripts: make(map[models.SessionKey][]models.ConversationTurn),
		now:         time.Now,
	}
}

// Append adds one turn to the transcript. A zero timestamp is assigned by the
// store; a supplied timestamp older than the last turn is rejected so
// transcripts stay chronological.
func (s *Store) Append(key models.SessionKey, turn models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(key, turn)
}

// AppendPair adds a player turn and the character's reply as one unit: either
// both become visible to subsequent reads or neither does.
func (s *Store) AppendPair(key models.SessionKey, player, character models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateLocked(key, player); err != nil {
		return err
	}
	if err := s.validateLocked(key, character); err != nil {
		return err
	}
	if !player.Timestamp.IsZero() && !character.Timestamp.IsZero() &&
		character.Timestamp.Before(player.Timestamp) {
		return errors.NewValidationError("character turn timestamp is older than the player turn")
	}

	// The player append may assign a timestamp the character turn predates;
	// undo it so a rejected pair leaves no trace.
	mark := len(s.transcripts[key])
	if err := s.appendLocked(key, player); err != nil {
		return err
	}
	if err := s.appendLocked(key, character); err != nil {
		s.transcripts[key] = s.transcripts[key][:mark]
		return err
	}
	return nil
}

// Window returns the most recent n turns in chronological order. An unknown
// key is an empty conversation, not an error.
func (s *Store) Window(key models.SessionKey, n int) []models.ConversationTurn {
	if n <= 0 {
		n = DefaultWindow
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := s.transcripts[key]
	if len(transcript) > n {
		transcript = transcript[len(transcript)-n:]
	}

	window := make([]models.ConversationTurn, len(transcript))
	copy(window, transcript)
	return window
}

// All returns the full transcript for the given key, oldest first.
func (s *Store) All(key models.SessionKey) []models.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := make([]models.ConversationTurn, len(s.transcripts[key]))
	copy(transcript, s.transcripts[key])
	return transcript
}

// Len returns the number of turns recorded for the given key.
func (s *Store) Len(key models.SessionKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts[key])
}

func (s *Store) validateLocked(key models.SessionKey, turn models.ConversationTurn) error {
	if turn.Speaker == "" {
		return errors.NewValidationError("turn speaker must not be empty")
	}
	if turn.Content == "" {
		return errors.NewValidationError("turn content must not be empty")
	}
	if !turn.Timestamp.IsZero() {
		transcript := s.transcripts[key]
		if len(transcript) > 0 && turn.Timestamp.Before(transcript[len(transcript)-1].Timestamp) {
			return errors.NewValidationError("turn timestamp is older than the last recorded turn")
		}
	}
	return nil
}

func (s *Store) appendLocked(key models.SessionKey, turn models.ConversationTurn) error {
	if err := s.validateLocked(key, turn); err != nil {
		return err
	}

	if turn.Timestamp.IsZero() {
		turn.Timestamp = s.now()
		transcript := s.transcripts[key]
		if len(transcript) > 0 && turn.Timestamp.Before(transcript[len(transcript)-1].Timestamp) {
			turn.Timestamp = transcript[len(transcript)-1].Timestamp
		}
	}

	s.transcripts[key] = append(s.transcripts[key], turn)
	return nil
}
