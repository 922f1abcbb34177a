package handler

import (
	"errors"
	"net/http"

	"liveparallel-server/internal/models"
	"liveparallel-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScenarioHandler обрабатывает HTTP запросы к сценариям.
type ScenarioHandler struct {
	service service.ScenarioService
	logger  *zap.Logger
}

// NewScenarioHandler создает ScenarioHandler.
func NewScenarioHandler(s service.ScenarioService, logger *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		service: s,
		logger:  logger.Named("ScenarioHandler"),
	}
}

// RegisterRoutes регистрирует маршруты API под общим auth middleware.
func (h *ScenarioHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api", authMiddleware)
	{
		scenarios := api.Group("/scenarios")
		{
			scenarios.POST("", h.createScenario)
			scenarios.GET("", h.listScenarios)
			// clear-current раньше :id, иначе gin примет "current" за id
			scenarios.DELETE("/current", h.clearCurrentScenario)
			scenarios.GET("/:id", h.getScenario)
			scenarios.PUT("/:id", h.updateScenario)
			scenarios.DELETE("/:id", h.deleteScenario)
			scenarios.POST("/:id/generate", h.generateScenario)
		}
	}
}

// handleServiceError переводит ошибки сервиса в HTTP статусы.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: "You do not have permission to modify this scenario"}
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrScenarioNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Scenario not found"}
	case errors.Is(err, models.ErrInvalidState):
		statusCode = http.StatusConflict // 409 Conflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrGenerationFailed):
		statusCode = http.StatusBadGateway // Движок генерации не справился
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrPersistenceFailed):
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}

	c.AbortWithStatusJSON(statusCode, apiErr)
}
