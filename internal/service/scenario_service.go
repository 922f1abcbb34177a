package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"liveparallel-server/internal/cache"
	"liveparallel-server/internal/models"
	"liveparallel-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateScenarioInput содержит поля нового сценария. Непустоту
// title/description/choice проверяет внешняя валидация формы (binding на
// уровне HTTP); контроллер доверяет входу.
type CreateScenarioInput struct {
	Title       string
	Description string
	Choice      string
	Context     string
}

// ScenarioService — контроллер жизненного цикла сценариев: единственное
// место, где применяется машина статусов pending -> generating ->
// {completed | error} и откуда запускается генерация.
type ScenarioService interface {
	CreateScenario(ctx context.Context, ownerID string, input CreateScenarioInput) (*models.Scenario, error)
	FetchUserScenarios(ctx context.Context, ownerID string) ([]models.ScenarioSummary, error)
	FetchScenario(ctx context.Context, ownerID string, id uuid.UUID) (*models.Scenario, error)
	UpdateScenario(ctx context.Context, ownerID string, id uuid.UUID, patch models.ScenarioPatch) (*models.Scenario, error)
	DeleteScenario(ctx context.Context, ownerID string, id uuid.UUID) error
	GenerateAlternativePath(ctx context.Context, ownerID string, id uuid.UUID) (*models.Scenario, error)
	ClearCurrentScenario(ownerID string)
}

type scenarioServiceImpl struct {
	repo   repository.ScenarioRepository
	engine GenerationEngine
	cache  *cache.ScenarioCache
	logger *zap.Logger

	// inFlight сериализует генерацию по id сценария: повторный запрос,
	// пока первый не завершился, отклоняется с ErrInvalidState.
	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]struct{}
}

// NewScenarioService создает контроллер жизненного цикла.
func NewScenarioService(
	repo repository.ScenarioRepository,
	engine GenerationEngine,
	scenarioCache *cache.ScenarioCache,
	logger *zap.Logger,
) ScenarioService {
	return &scenarioServiceImpl{
		repo:     repo,
		engine:   engine,
		cache:    scenarioCache,
		logger:   logger.Named("ScenarioService"),
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// CreateScenario сохраняет новый сценарий со статусом pending и сразу
// показывает его наверху списка пользователя.
func (s *scenarioServiceImpl) CreateScenario(ctx context.Context, ownerID string, input CreateScenarioInput) (*models.Scenario, error) {
	if ownerID == "" {
		return nil, models.ErrUnauthorized
	}

	scenario := &models.Scenario{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Choice:      input.Choice,
		Context:     input.Context,
	}

	created, err := s.repo.Create(ctx, scenario)
	if err != nil {
		return nil, err
	}

	s.cache.Insert(created)
	s.cache.SetCurrent(created)
	s.logger.Info("Scenario created",
		zap.String("scenarioID", created.ID.String()),
		zap.String("ownerID", ownerID),
	)
	return created, nil
}

// FetchUserScenarios перечитывает список пользователя из хранилища и
// заменяет им кэш (авторитетный порядок: новые первыми).
func (s *scenarioServiceImpl) FetchUserScenarios(ctx context.Context, ownerID string) ([]models.ScenarioSummary, error) {
	if ownerID == "" {
		return nil, models.ErrUnauthorized
	}

	scenarios, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.cache.Load(ownerID, scenarios)
	return s.cache.List(ownerID), nil
}

// FetchScenario возвращает сценарий по id и запоминает его как текущий.
func (s *scenarioServiceImpl) FetchScenario(ctx context.Context, ownerID string, id uuid.UUID) (*models.Scenario, error) {
	scenario, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scenario.OwnerID == ownerID {
		s.cache.SetCurrent(scenario)
	}
	return scenario, nil
}

// UpdateScenario применяет пользовательский патч полей. Редактирование
// запрещено, пока идет генерация.
func (s *scenarioServiceImpl) UpdateScenario(ctx context.Context, ownerID string, id uuid.UUID, patch models.ScenarioPatch) (*models.Scenario, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: empty patch", models.ErrInvalidInput)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != ownerID {
		return nil, models.ErrForbidden
	}
	if current.Status == models.StatusGenerating || s.isInFlight(id) {
		return nil, fmt.Errorf("%w: scenario is being generated", models.ErrInvalidState)
	}

	// Проверка выше работает по снимку; авторитетный запрет редактирования
	// во время генерации обеспечивает guard на стороне хранилища.
	updated, err := s.repo.Update(ctx, id, ownerID, repository.ScenarioUpdate{
		Fields:        patch,
		GuardStatuses: []models.ScenarioStatus{models.StatusPending, models.StatusCompleted, models.StatusError},
	})
	if err != nil {
		return nil, err
	}

	s.cache.Replace(updated)
	return updated, nil
}

// DeleteScenario удаляет сценарий и вычищает его из кэша.
func (s *scenarioServiceImpl) DeleteScenario(ctx context.Context, ownerID string, id uuid.UUID) error {
	if s.isInFlight(id) {
		return fmt.Errorf("%w: scenario is being generated", models.ErrInvalidState)
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.cache.Remove(ownerID, id)
	s.logger.Info("Scenario deleted",
		zap.String("scenarioID", id.String()),
		zap.String("ownerID", ownerID),
	)
	return nil
}

// ClearCurrentScenario очищает слот текущего сценария (уход с экрана деталей).
func (s *scenarioServiceImpl) ClearCurrentScenario(ownerID string) {
	s.cache.ClearCurrent(ownerID)
}

// GenerateAlternativePath прогоняет сценарий через машину статусов:
// pending|error -> generating -> completed|error. Повторный вызов для того
// же id, пока генерация не завершилась, отклоняется с ErrInvalidState и не
// влияет на исход первой.
func (s *scenarioServiceImpl) GenerateAlternativePath(ctx context.Context, ownerID string, id uuid.UUID) (*models.Scenario, error) {
	// Маркер берется до чтения записи: снимок статуса, сделанный вне
	// маркера, может устареть к моменту захвата (первая генерация успела
	// полностью завершиться), и completed-сценарий ушел бы на повторную
	// генерацию.
	if !s.tryAcquire(id) {
		invalidStateRejections.Inc()
		return nil, fmt.Errorf("%w: generation already in progress", models.ErrInvalidState)
	}
	defer s.release(id)

	scenario, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scenario.OwnerID != ownerID {
		return nil, models.ErrForbidden
	}

	if scenario.Status != models.StatusPending && scenario.Status != models.StatusError {
		invalidStateRejections.Inc()
		return nil, fmt.Errorf("%w: cannot generate from status %q", models.ErrInvalidState, scenario.Status)
	}

	logFields := []zap.Field{
		zap.String("scenarioID", id.String()),
		zap.String("ownerID", ownerID),
		zap.String("fromStatus", string(scenario.Status)),
	}
	s.logger.Info("Starting alternative path generation", logFields...)
	generationsStarted.Inc()
	startTime := time.Now()

	// Переход в generating. GuardStatuses делает переход условной записью:
	// даже если снимок выше все же устарел, хранилище отклонит переход из
	// completed или generating.
	statusGenerating := models.StatusGenerating
	generating, err := s.repo.Update(ctx, id, ownerID, repository.ScenarioUpdate{
		Status:        &statusGenerating,
		GuardStatuses: []models.ScenarioStatus{models.StatusPending, models.StatusError},
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			invalidStateRejections.Inc()
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}
	s.cache.Replace(generating)

	// Вызов движка. Контекст запроса — кооперативная отмена разрешена,
	// но финальная запись статуса от нее не зависит (см. settleCtx ниже).
	path, genErr := s.engine.Generate(ctx, generating)
	if genErr == nil {
		genErr = ValidateAlternativePath(path)
	}

	// Записи "осаживания" идут с контекстом, переживающим уход клиента:
	// сценарий не должен застрять в generating из-за брошенного запроса.
	settleCtx := context.WithoutCancel(ctx)

	if genErr != nil {
		s.logger.Error("Generation failed, moving scenario to error", append(logFields, zap.Error(genErr))...)
		if recErr := s.settleToError(settleCtx, id, ownerID); recErr != nil {
			metricsObserveSettled("recovery_failed", startTime)
			return nil, fmt.Errorf("%w: generation failed (%v) and status recovery write failed (%v); manual refresh required",
				models.ErrPersistenceFailed, genErr, recErr)
		}
		metricsObserveSettled("generation_failed", startTime)
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, genErr)
	}

	// Успех: путь и статус completed пишутся одним обновлением, чтобы
	// читатель никогда не увидел completed без пути.
	statusCompleted := models.StatusCompleted
	completed, err := s.repo.Update(settleCtx, id, ownerID, repository.ScenarioUpdate{
		Status: &statusCompleted,
		Path:   path,
	})
	if err != nil {
		s.logger.Error("Failed to persist generation result", append(logFields, zap.Error(err))...)
		if recErr := s.settleToError(settleCtx, id, ownerID); recErr != nil {
			metricsObserveSettled("recovery_failed", startTime)
			return nil, fmt.Errorf("%w: result write failed (%v) and status recovery write failed (%v); manual refresh required",
				models.ErrPersistenceFailed, err, recErr)
		}
		metricsObserveSettled("persistence_failed", startTime)
		return nil, fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}

	s.cache.Replace(completed)
	metricsObserveSettled("completed", startTime)
	s.logger.Info("Alternative path generated", append(logFields, zap.Duration("duration", time.Since(startTime)))...)
	return completed, nil
}

// settleToError — best-effort запись статуса error, чтобы запись не
// застряла в generating. Путь при этом сбрасывается.
func (s *scenarioServiceImpl) settleToError(ctx context.Context, id uuid.UUID, ownerID string) error {
	statusError := models.StatusError
	recovered, err := s.repo.Update(ctx, id, ownerID, repository.ScenarioUpdate{
		Status:    &statusError,
		ClearPath: true,
	})
	if err != nil {
		s.logger.Error("Recovery write to error status failed",
			zap.String("scenarioID", id.String()),
			zap.Error(err),
		)
		return err
	}
	s.cache.Replace(recovered)
	return nil
}

func (s *scenarioServiceImpl) tryAcquire(id uuid.UUID) bool {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *scenarioServiceImpl) release(id uuid.UUID) {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	delete(s.inFlight, id)
}

func (s *scenarioServiceImpl) isInFlight(id uuid.UUID) bool {
	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	_, busy := s.inFlight[id]
	return busy
}
