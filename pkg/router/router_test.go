package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"npc-dialogue-engine/backend/ai"
	"npc-dialogue-engine/backend/pkg/config"
	"npc-dialogue-engine/backend/pkg/di"
	apperrors "npc-dialogue-engine/backend/pkg/errors"
	"npc-dialogue-engine/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type scriptedGenerator struct {
	fn func(systemInstructions, userContent string, opts ai.Options) (string, error)
}

func (s *scriptedGenerator) Complete(_ context.Context, systemInstructions, userContent string, opts ai.Options) (string, error) {
	return s.fn(systemInstructions, userContent, opts)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Dialogue.HistoryWindow = 5
	// Generous limits so the tests themselves are never throttled
	cfg.Security.RateLimit = 1000
	cfg.Security.RateLimitBurst = 1000
	return cfg
}

func newTestRouter(t *testing.T, gen ai.TextGenerator) *Router {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", JSON: false, Output: io.Discard})
	container, err := di.New(testConfig(), log, gen)
	require.NoError(t, err)

	r := New(container)
	r.SetupRoutes()
	return r
}

func doJSON(t *testing.T, r *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createGorim(t *testing.T, r *Router) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/v1/characters", map[string]string{
		"name":        "Gorim",
		"role":        "Blacksmith",
		"personality": "Gruff",
		"backstory":   "Forged blades for three kings",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	id, ok := body["character_id"].(string)
	require.True(t, ok)
	return id
}

func TestDialogueRoundTrip(t *testing.T) {
	gen := &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "Well met, traveler. Need something forged?", nil
	}}
	r := newTestRouter(t, gen)

	id := createGorim(t, r)
	assert.Equal(t, "char_1", id)

	w := doJSON(t, r, http.MethodPost, "/api/v1/dialogue/generate", map[string]string{
		"character_id": id,
		"session_id":   "s1",
		"message":      "Hello",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Well met, traveler. Need something forged?", body["response"])
	assert.Equal(t, "Gorim", body["character_name"])
	assert.Equal(t, "s1", body["session_id"])

	// Exactly one player/character pair recorded
	w = doJSON(t, r, http.MethodGet, "/api/v1/conversations/"+id+"/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	turns, ok := decode(t, w)["conversation"].([]any)
	require.True(t, ok)
	require.Len(t, turns, 2)

	first := turns[0].(map[string]any)
	second := turns[1].(map[string]any)
	assert.Equal(t, "Player", first["speaker"])
	assert.Equal(t, "Hello", first["content"])
	assert.Equal(t, "Gorim", second["speaker"])
}

func TestCreateCharacterValidation(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "", nil
	}})

	w := doJSON(t, r, http.MethodPost, "/api/v1/characters", map[string]string{
		"name": "Gorim",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	errObj, ok := decode(t, w)["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestDialogueUnknownCharacter(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "never reached", nil
	}})

	w := doJSON(t, r, http.MethodPost, "/api/v1/dialogue/generate", map[string]string{
		"character_id": "char_99",
		"session_id":   "s1",
		"message":      "Hello",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	errObj := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestGatewayFailureMapsToBadGateway(t *testing.T) {
	gen := &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "", apperrors.NewGenerationError(errors.New("upstream unavailable"))
	}}
	r := newTestRouter(t, gen)
	id := createGorim(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/dialogue/generate", map[string]string{
		"character_id": id,
		"session_id":   "s1",
		"message":      "Hello",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)

	errObj := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "GENERATION_ERROR", errObj["code"])
}

func TestBranchingDialogue(t *testing.T) {
	gen := &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "DIALOGUE: Welcome to my forge.\nOPTION1: Browse wares\nOPTION2: Leave", nil
	}}
	r := newTestRouter(t, gen)
	id := createGorim(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/dialogue/branching", map[string]string{
		"character_id": id,
		"session_id":   "s1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Welcome to my forge.", body["dialogue"])
	assert.Equal(t, []any{"Browse wares", "Leave"}, body["options"])
	assert.Equal(t, "Gorim", body["character_name"])
}

func TestTranslate(t *testing.T) {
	gen := &scriptedGenerator{fn: func(_, userContent string, _ ai.Options) (string, error) {
		assert.Contains(t, userContent, "spanish")
		return "Bien hallado, viajero.", nil
	}}
	r := newTestRouter(t, gen)

	w := doJSON(t, r, http.MethodPost, "/api/v1/translate", map[string]string{
		"text": "Well met, traveler.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Bien hallado, viajero.", body["translated"])
	assert.Equal(t, "spanish", body["target_language"])
}

func TestTranslateEmptyText(t *testing.T) {
	called := false
	gen := &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		called = true
		return "", nil
	}}
	r := newTestRouter(t, gen)

	w := doJSON(t, r, http.MethodPost, "/api/v1/translate", map[string]string{
		"text": "",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called, "empty text must be rejected before the gateway")
}

func TestListCharacters(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "", nil
	}})
	createGorim(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/v1/characters", nil)
	require.Equal(t, http.StatusOK, w.Code)

	characters, ok := decode(t, w)["characters"].([]any)
	require.True(t, ok)
	require.Len(t, characters, 1)
	assert.Equal(t, "Gorim", characters[0].(map[string]any)["name"])
}

func TestUnknownConversationIsEmpty(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "", nil
	}})

	w := doJSON(t, r, http.MethodGet, "/api/v1/conversations/char_1/never-used", nil)
	require.Equal(t, http.StatusOK, w.Code)

	turns, ok := decode(t, w)["conversation"].([]any)
	require.True(t, ok)
	assert.Empty(t, turns)
}

func TestLegacyPathsServeSameHandlers(t *testing.T) {
	gen := &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "Aye.", nil
	}}
	r := newTestRouter(t, gen)

	w := doJSON(t, r, http.MethodPost, "/api/character/create", map[string]string{
		"name":        "Gorim",
		"role":        "Blacksmith",
		"personality": "Gruff",
		"backstory":   "Forged blades for three kings",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/dialogue/generate", map[string]string{
		"character_id": "char_1",
		"session_id":   "s1",
		"message":      "Hello",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/conversation/char_1/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "", nil
	}})

	w := doJSON(t, r, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Contains(t, []string{"up", "degraded"}, body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, &scriptedGenerator{fn: func(_, _ string, _ ai.Options) (string, error) {
		return "", nil
	}})

	w := doJSON(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_") || strings.Contains(w.Body.String(), "npc_"))
}
