package handlers

import (
	"net/http"

	"retail-backoffice/internal/ai"

	"github.com/gin-gonic/gin"
)

// AIHandler exposes the reporting assistant.
type AIHandler struct {
	agent *ai.Agent
}

func NewAIHandler(agent *ai.Agent) *AIHandler {
	return &AIHandler{agent: agent}
}

// POST /api/ask
func (h *AIHandler) Ask(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "code": "bad_request"})
		return
	}

	answer, err := h.agent.Ask(c.Request.Context(), req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant is unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
