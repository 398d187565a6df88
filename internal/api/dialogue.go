package api

import (
	"net/http"

	"npc-dialogue-engine/backend/internal/models"
	"npc-dialogue-engine/backend/internal/session"
	"npc-dialogue-engine/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// DialogueHandler serves the turn generation, branching, translation, and
// transcript endpoints.
type DialogueHandler struct {
	coordinator *session.Coordinator
}

func NewDialogueHandler(coordinator *session.Coordinator) *DialogueHandler {
	return &DialogueHandler{coordinator: coordinator}
}

// GenerateDialogue produces one freeform character turn.
func (h *DialogueHandler) GenerateDialogue(c *gin.Context) {
	var req models.DialogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	resp, err := h.coordinator.GenerateTurn(c.Request.Context(), req.CharacterID, req.SessionID, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateBranching produces the next branching dialogue node.
func (h *DialogueHandler) GenerateBranching(c *gin.Context) {
	var req models.BranchingDialogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	resp, err := h.coordinator.GenerateBranch(c.Request.Context(), req.CharacterID, req.SessionID, req.SelectedOption)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Translate produces a tone-preserving translation of dialogue text.
func (h *DialogueHandler) Translate(c *gin.Context) {
	var req models.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err.Error()))
		return
	}

	resp, err := h.coordinator.Translate(c.Request.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetConversation returns the full transcript for a session. Unknown sessions
// return an empty conversation.
func (h *DialogueHandler) GetConversation(c *gin.Context) {
	turns := h.coordinator.Conversation(c.Param("characterId"), c.Param("sessionId"))
	if turns == nil {
		turns = []models.ConversationTurn{}
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": turns,
	})
}
