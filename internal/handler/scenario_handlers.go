package handler

import (
	"fmt"
	"net/http"

	"liveparallel-server/internal/models"
	"liveparallel-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *ScenarioHandler) createScenario(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req createScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body for createScenario", zap.String("userID", userID), zap.Error(err))
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err), h.logger)
		return
	}

	scenario, err := h.service.CreateScenario(c.Request.Context(), userID, service.CreateScenarioInput{
		Title:       req.Title,
		Description: req.Description,
		Choice:      req.Choice,
		Context:     req.Context,
	})
	if err != nil {
		h.logger.Error("Error creating scenario", zap.String("userID", userID), zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, toScenarioResponse(scenario))
}

func (h *ScenarioHandler) listScenarios(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	summaries, err := h.service.FetchUserScenarios(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Error listing scenarios", zap.String("userID", userID), zap.Error(err))
		handleServiceError(c, err, h.logger)
		return
	}

	response := make([]scenarioSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, toSummaryResponse(summary))
	}
	c.JSON(http.StatusOK, response)
}

// parseScenarioID разбирает :id из пути; при ошибке прерывает запрос с 400.
func (h *ScenarioHandler) parseScenarioID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid scenario ID format", zap.String("id", idStr), zap.Error(err))
		handleServiceError(c, fmt.Errorf("%w: invalid scenario ID format", models.ErrBadRequest), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ScenarioHandler) getScenario(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := h.parseScenarioID(c)
	if !ok {
		return
	}

	scenario, err := h.service.FetchScenario(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toScenarioResponse(scenario))
}

func (h *ScenarioHandler) updateScenario(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := h.parseScenarioID(c)
	if !ok {
		return
	}

	var req updateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body for updateScenario", zap.String("userID", userID), zap.Error(err))
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err), h.logger)
		return
	}

	scenario, err := h.service.UpdateScenario(c.Request.Context(), userID, id, req.toPatch())
	if err != nil {
		h.logger.Error("Error updating scenario",
			zap.String("userID", userID),
			zap.String("scenarioID", id.String()),
			zap.Error(err),
		)
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toScenarioResponse(scenario))
}

func (h *ScenarioHandler) deleteScenario(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := h.parseScenarioID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteScenario(c.Request.Context(), userID, id); err != nil {
		h.logger.Error("Error deleting scenario",
			zap.String("userID", userID),
			zap.String("scenarioID", id.String()),
			zap.Error(err),
		)
		handleServiceError(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ScenarioHandler) generateScenario(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := h.parseScenarioID(c)
	if !ok {
		return
	}

	scenario, err := h.service.GenerateAlternativePath(c.Request.Context(), userID, id)
	if err != nil {
		h.logger.Error("Error generating alternative path",
			zap.String("userID", userID),
			zap.String("scenarioID", id.String()),
			zap.Error(err),
		)
		handleServiceError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, toScenarioResponse(scenario))
}

func (h *ScenarioHandler) clearCurrentScenario(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	h.service.ClearCurrentScenario(userID)
	c.Status(http.StatusNoContent)
}
