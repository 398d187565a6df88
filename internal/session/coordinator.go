// Package session coordinates characters, transcripts, and the generation
// gateway. The coordinator exclusively owns the mapping from session keys to
// history; the HTTP and realtime surfaces both go through it.
package session

import (
	"context"
	"sync"
	"time"

	"npc-dialogue-engine/backend/ai"
	"npc-dialogue-engine/backend/internal/dialogue"
	"npc-dialogue-engine/backend/internal/history"
	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/internal/prompt"
	"npc-dialogue-engine/backend/internal/registry"
	apperrors "npc-dialogue-engine/backend/pkg/errors"
	"npc-dialogue-engine/backend/pkg/logger"
	"npc-dialogue-engine/backend/pkg/metrics"
)

// System instructions and generation parameters per mode.
const (
	freeformInstructions  = "You are an expert NPC dialogue generator. Maintain character consistency and provide engaging, immersive responses."
	branchingInstructions = "You are an expert game dialogue writer. Create engaging, branching conversations that maintain character consistency."

	defaultTargetLanguage = "spanish"
)

var (
	freeformOptions    = ai.Options{Temperature: 0.8, MaxOutputTokens: 300}
	branchingOptions   = ai.Options{Temperature: 0.8, MaxOutputTokens: 400}
	translationOptions = ai.Options{Temperature: 0.3, MaxOutputTokens: 200}
)

// Config holds coordinator tunables.
type Config struct {
	// HistoryWindow is how many recent turns feed the freeform prompt.
	HistoryWindow int
}

// Coordinator serializes access per session key and drives the
// resolve-history-generate-append pipeline shared by all surfaces.
type Coordinator struct {
	registry  *registry.Registry
	history   *history.Store
	generator ai.TextGenerator
	log       *logger.Logger
	window    int

	// locks serializes turn generation per session key. The lock is held
	// across window-read, gateway call, and append so racing calls on one key
	// cannot interleave their append pairs or read a stale window. Distinct
	// keys never contend.
	mu    sync.Mutex
	locks map[models.SessionKey]*sync.Mutex
}

// NewCoordinator wires the coordinator.
func NewCoordinator(reg *registry.Registry, hist *history.Store, gen ai.TextGenerator, log *logger.Logger, cfg Config) *Coordinator {
	window := cfg.HistoryWindow
	if window <= 0 {
		window = history.DefaultWindow
	}
	return &Coordinator{
		registry:  reg,
		history:   hist,
		generator: gen,
		log:       log,
		window:    window,
		locks:     make(map[models.SessionKey]*sync.Mutex),
	}
}

func (c *Coordinator) sessionLock(key models.SessionKey) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// complete calls the gateway with instrumentation.
func (c *Coordinator) complete(ctx context.Context, mode, instructions, content string, opts ai.Options) (string, error) {
	start := time.Now()
	text, err := c.generator.Complete(ctx, instructions, content, opts)
	metrics.GenerationLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationRequests.WithLabelValues(mode, "error").Inc()
		return "", err
	}
	metrics.GenerationRequests.WithLabelValues(mode, "ok").Inc()
	return text, nil
}

// GenerateTurn produces one freeform character turn. On success the player
// turn and the reply are appended as an atomic pair; on failure the transcript
// is left exactly as it was. An empty playerMessage yields a self-introduction
// and appends only the character's line.
func (c *Coordinator) GenerateTurn(ctx context.Context, characterID, sessionID, playerMessage string) (*models.DialogueResponse, error) {
	profile, err := c.registry.Get(characterID)
	if err != nil {
		return nil, err
	}

	key := models.SessionKey{CharacterID: characterID, SessionID: sessionID}
	lock := c.sessionLock(key)
	lock.Lock()
	defer lock.Unlock()

	window := c.history.Window(key, c.window)
	promptText := prompt.BuildFreeform(profile, playerMessage, window)

	reply, err := c.complete(ctx, metrics.ModeFreeform, freeformInstructions, promptText, freeformOptions)
	if err != nil {
		return nil, err
	}

	characterTurn := models.ConversationTurn{Speaker: profile.Name, Content: reply}
	if playerMessage == "" {
		err = c.history.Append(key, characterTurn)
	} else {
		playerTurn := models.ConversationTurn{Speaker: models.PlayerSpeaker, Content: playerMessage}
		err = c.history.AppendPair(key, playerTurn, characterTurn)
	}
	if err != nil {
		return nil, err
	}

	return &models.DialogueResponse{
		Response:      reply,
		CharacterName: profile.Name,
		SessionID:     sessionID,
	}, nil
}

// GenerateBranch produces the next branching node, conditioned on the
// previously selected option text. The character's line is recorded as a
// single synthetic turn so branching and freeform modes share one transcript.
// Output that breaks the structured format degrades to an empty node; the
// session is never stuck on a generation-quality failure.
func (c *Coordinator) GenerateBranch(ctx context.Context, characterID, sessionID, selectedOption string) (*models.BranchingDialogueResponse, error) {
	profile, err := c.registry.Get(characterID)
	if err != nil {
		return nil, err
	}

	key := models.SessionKey{CharacterID: characterID, SessionID: sessionID}
	lock := c.sessionLock(key)
	lock.Lock()
	defer lock.Unlock()

	promptText := prompt.BuildBranching(profile, selectedOption)

	raw, err := c.complete(ctx, metrics.ModeBranching, branchingInstructions, promptText, branchingOptions)
	if err != nil {
		return nil, err
	}

	node, parseErr := dialogue.ParseNode(raw)
	if parseErr != nil {
		metrics.MalformedGenerations.Inc()
		c.log.WithSession(characterID, sessionID).Warn("malformed branching output, degrading to empty node",
			"error_code", apperrors.CodeMalformedGeneration,
		)
	}

	// A degraded node has no text; appending it would put an empty turn in
	// the transcript.
	if node.Text != "" {
		if err := c.history.Append(key, models.ConversationTurn{Speaker: profile.Name, Content: node.Text}); err != nil {
			return nil, err
		}
	}

	options := node.Options
	if options == nil {
		options = []string{}
	}

	return &models.BranchingDialogueResponse{
		Dialogue:      node.Text,
		Options:       options,
		CharacterName: profile.Name,
	}, nil
}

// Translate produces a tone-preserving translation. It is stateless with
// respect to sessions and never touches history; empty text fails validation
// before any gateway call.
func (c *Coordinator) Translate(ctx context.Context, text, targetLanguage string) (*models.TranslationResponse, error) {
	if targetLanguage == "" {
		targetLanguage = defaultTargetLanguage
	}

	promptText, err := prompt.BuildTranslation(text, targetLanguage)
	if err != nil {
		return nil, err
	}

	translated, err := c.complete(ctx, metrics.ModeTranslation, "", promptText, translationOptions)
	if err != nil {
		return nil, err
	}

	return &models.TranslationResponse{
		Original:       text,
		Translated:     translated,
		TargetLanguage: targetLanguage,
	}, nil
}

// Conversation returns the full transcript for inspection. Unknown sessions
// are simply empty.
func (c *Coordinator) Conversation(characterID, sessionID string) []models.ConversationTurn {
	return c.history.All(models.SessionKey{CharacterID: characterID, SessionID: sessionID})
}
