package registry

import (
	"fmt"
	"sync"
	"testing"

	"npc-dialogue-engine/backend/internal/models"
	apperrors "npc-dialogue-engine/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest(name string) *models.CreateCharacterRequest {
	return &models.CreateCharacterRequest{
		Name:        name,
		Role:        "Blacksmith",
		Personality: "Gruff",
		Backstory:   "Forged blades for three kings",
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	r := New()

	first, err := r.Create(validRequest("Gorim"))
	require.NoError(t, err)
	assert.Equal(t, "char_1", first.ID)

	second, err := r.Create(validRequest("Mira"))
	require.NoError(t, err)
	assert.Equal(t, "char_2", second.ID)
}

func TestCreateAppliesDefaults(t *testing.T) {
	r := New()

	profile, err := r.Create(validRequest("Gorim"))
	require.NoError(t, err)

	assert.Equal(t, models.DefaultSetting, profile.Setting)
	assert.Equal(t, models.DefaultSpeakingStyle, profile.SpeakingStyle)
	assert.Equal(t, models.DefaultKeyTraits, profile.KeyTraits)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	r := New()

	cases := []struct {
		name string
		req  *models.CreateCharacterRequest
	}{
		{"missing name", &models.CreateCharacterRequest{Role: "r", Personality: "p", Backstory: "b"}},
		{"missing role", &models.CreateCharacterRequest{Name: "n", Personality: "p", Backstory: "b"}},
		{"missing personality", &models.CreateCharacterRequest{Name: "n", Role: "r", Backstory: "b"}},
		{"missing backstory", &models.CreateCharacterRequest{Name: "n", Role: "r", Personality: "p"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Create(tc.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		})
	}
}

func TestGetUnknownCharacter(t *testing.T) {
	r := New()

	_, err := r.Get("char_99")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListInsertionOrder(t *testing.T) {
	r := New()

	names := []string{"Gorim", "Mira", "Thane"}
	for _, name := range names {
		_, err := r.Create(validRequest(name))
		require.NoError(t, err)
	}

	profiles := r.List()
	require.Len(t, profiles, 3)
	for i, name := range names {
		assert.Equal(t, name, profiles[i].Name)
	}
}

func TestConcurrentCreatesNeverReuseIDs(t *testing.T) {
	r := New()

	const workers = 50
	ids := make(chan string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			profile, err := r.Create(validRequest(fmt.Sprintf("npc-%d", n)))
			assert.NoError(t, err)
			ids <- profile.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %s assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}
