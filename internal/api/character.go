package api

import (
	"net/http"

	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/internal/registry"
	"npc-dialogue-engine/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CharacterHandler serves the character registry endpoints.
type CharacterHandler struct {
	registry *registry.Registry
}

func NewCharacterHandler(reg *registry.Registry) *CharacterHandler {
	return &CharacterHandler{registry: reg}
}

// CreateCharacter registers a new character profile.
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	profile, err := h.registry.Create(&req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"character_id": profile.ID,
		"profile":      profile,
	})
}

// ListCharacters returns all profiles in creation order.
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"characters": h.registry.List(),
	})
}
