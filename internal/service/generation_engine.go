package service

import (
	"context"
	"fmt"
	"time"

	"liveparallel-server/internal/models"

	"go.uber.org/zap"
)

// PathEventCount — контрактное число событий альтернативного пути.
const PathEventCount = 3

// GenerationEngine производит альтернативный путь для сценария.
// Контракт: ровно PathEventCount событий с непустыми title/description/outcome
// и непустой summary. Реализация может отклонить запрос ошибкой; контроллер
// переведет сценарий в статус error и отдаст наружу GenerationFailed.
type GenerationEngine interface {
	Generate(ctx context.Context, scenario *models.Scenario) (*models.AlternativePath, error)
}

// ValidateAlternativePath проверяет, что payload движка соответствует контракту.
func ValidateAlternativePath(path *models.AlternativePath) error {
	if path == nil {
		return fmt.Errorf("%w: nil payload", ErrEngineInvalidPayload)
	}
	if path.Summary == "" {
		return fmt.Errorf("%w: empty summary", ErrEngineInvalidPayload)
	}
	if len(path.Events) != PathEventCount {
		return fmt.Errorf("%w: expected %d events, got %d", ErrEngineInvalidPayload, PathEventCount, len(path.Events))
	}
	for i, event := range path.Events {
		if event.Title == "" || event.Description == "" || event.Outcome == "" {
			return fmt.Errorf("%w: event %d has empty fields", ErrEngineInvalidPayload, i)
		}
	}
	return nil
}

// stubGenerationEngine имитирует генерацию фиксированной задержкой и
// детерминированным ответом. Настоящий движок подключается как drop-in
// замена с тем же контрактом.
type stubGenerationEngine struct {
	delay  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewStubGenerationEngine создает движок-заглушку.
func NewStubGenerationEngine(delay time.Duration, logger *zap.Logger) GenerationEngine {
	return &stubGenerationEngine{
		delay:  delay,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.Named("StubEngine"),
	}
}

// Generate ждет настроенную задержку (кооперативно отменяясь по контексту)
// и возвращает фиксированный нарратив.
func (e *stubGenerationEngine) Generate(ctx context.Context, scenario *models.Scenario) (*models.AlternativePath, error) {
	e.logger.Debug("Simulating path generation",
		zap.String("scenarioID", scenario.ID.String()),
		zap.Duration("delay", e.delay),
	)

	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	generatedAt := e.now()
	return &models.AlternativePath{
		Summary: "Your alternative path led to greater fulfillment and unexpected opportunities. While it came with challenges, the journey strengthened your character and expanded your horizons.",
		Events: []models.PathEvent{
			{
				Title:       "New career path",
				Description: "You decided to follow your passion instead of the secure job.",
				Outcome:     "You started your own business and found both purpose and financial success.",
				Timestamp:   generatedAt,
			},
			{
				Title:       "Relationship changes",
				Description: "Your new career introduced you to different social circles.",
				Outcome:     "You met someone who truly appreciates your ambition and creativity.",
				Timestamp:   generatedAt,
			},
			{
				Title:       "Personal growth",
				Description: "The challenges of your new path pushed you to develop new skills.",
				Outcome:     "You discovered hidden talents and strengths you never knew you had.",
				Timestamp:   generatedAt,
			},
		},
	}, nil
}
