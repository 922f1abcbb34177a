package handler

import (
	"time"

	"liveparallel-server/internal/models"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// createScenarioRequest — тело POST /api/scenarios.
// Правила валидации формы (непустота и длины) применяются здесь, до
// контроллера: дальше вход считается проверенным.
type createScenarioRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=2000"`
	Choice      string `json:"choice" binding:"required,max=500"`
	Context     string `json:"context" binding:"max=2000"`
}

// updateScenarioRequest — тело PUT /api/scenarios/:id.
// nil-поле означает "не менять".
type updateScenarioRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,min=1,max=2000"`
	Choice      *string `json:"choice" binding:"omitempty,min=1,max=500"`
	Context     *string `json:"context" binding:"omitempty,max=2000"`
}

func (r updateScenarioRequest) toPatch() models.ScenarioPatch {
	return models.ScenarioPatch{
		Title:       r.Title,
		Description: r.Description,
		Choice:      r.Choice,
		Context:     r.Context,
	}
}

// scenarioSummaryResponse — элемент списка GET /api/scenarios.
type scenarioSummaryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toSummaryResponse(s models.ScenarioSummary) scenarioSummaryResponse {
	return scenarioSummaryResponse{
		ID:          s.ID.String(),
		Title:       s.Title,
		Description: s.Description,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
	}
}

// pathEventResponse — событие альтернативного пути в ответах API.
type pathEventResponse struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Outcome     string    `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}

// alternativePathResponse — сгенерированный нарратив в ответах API.
type alternativePathResponse struct {
	Summary string              `json:"summary"`
	Events  []pathEventResponse `json:"events"`
}

// scenarioResponse — полный сценарий в ответах API.
type scenarioResponse struct {
	ID              string                   `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Choice          string                   `json:"choice"`
	Context         string                   `json:"context,omitempty"`
	Status          string                   `json:"status"`
	AlternativePath *alternativePathResponse `json:"alternativePath,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func toScenarioResponse(s *models.Scenario) scenarioResponse {
	resp := scenarioResponse{
		ID:          s.ID.String(),
		Title:       s.Title,
		Description: s.Description,
		Choice:      s.Choice,
		Context:     s.Context,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.AlternativePath != nil {
		path := &alternativePathResponse{
			Summary: s.AlternativePath.Summary,
			Events:  make([]pathEventResponse, 0, len(s.AlternativePath.Events)),
		}
		for _, event := range s.AlternativePath.Events {
			path.Events = append(path.Events, pathEventResponse{
				Title:       event.Title,
				Description: event.Description,
				Outcome:     event.Outcome,
				Timestamp:   event.Timestamp,
			})
		}
		resp.AlternativePath = path
	}
	return resp
}
