package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"liveparallel-server/internal/cache"
	"liveparallel-server/internal/models"
	"liveparallel-server/internal/repository"
	repoMocks "liveparallel-server/internal/repository/mocks"
	"liveparallel-server/internal/service"
	serviceMocks "liveparallel-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOwnerID = "firebase-uid-123"

func newTestScenario(ownerID string, status models.ScenarioStatus) *models.Scenario {
	now := time.Now().UTC()
	return &models.Scenario{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       "Job in Seattle",
		Description: "Considering relocation",
		Choice:      "Take the offer",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testPath() *models.AlternativePath {
	now := time.Now().UTC()
	return &models.AlternativePath{
		Summary: "A different life unfolded.",
		Events: []models.PathEvent{
			{Title: "A", Description: "a", Outcome: "oa", Timestamp: now},
			{Title: "B", Description: "b", Outcome: "ob", Timestamp: now},
			{Title: "C", Description: "c", Outcome: "oc", Timestamp: now},
		},
	}
}

func newService(repo *repoMocks.ScenarioRepository, engine *serviceMocks.GenerationEngine) (service.ScenarioService, *cache.ScenarioCache) {
	scenarioCache := cache.NewScenarioCache(zap.NewNop())
	return service.NewScenarioService(repo, engine, scenarioCache, zap.NewNop()), scenarioCache
}

// statusUpdate матчит ScenarioUpdate, меняющий только статус. Переход в
// generating обязан быть условной записью из pending|error.
func statusUpdate(status models.ScenarioStatus) any {
	return mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
		if u.Status == nil || *u.Status != status || u.Path != nil || !u.Fields.IsEmpty() {
			return false
		}
		if status == models.StatusGenerating {
			return len(u.GuardStatuses) == 2 &&
				u.GuardStatuses[0] == models.StatusPending &&
				u.GuardStatuses[1] == models.StatusError
		}
		return true
	})
}

// TestCreateScenario tests the CreateScenario method
func TestCreateScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful creation", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, scenarioCache := newService(mockRepo, mockEngine)

		created := newTestScenario(testOwnerID, models.StatusPending)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(s *models.Scenario) bool {
			assert.Equal(t, testOwnerID, s.OwnerID)
			assert.Equal(t, "Job in Seattle", s.Title)
			assert.Equal(t, "Considering relocation", s.Description)
			assert.Equal(t, "Take the offer", s.Choice)
			return true
		})).Return(created, nil).Once()

		result, err := svc.CreateScenario(ctx, testOwnerID, service.CreateScenarioInput{
			Title:       "Job in Seattle",
			Description: "Considering relocation",
			Choice:      "Take the offer",
		})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, models.StatusPending, result.Status)
		assert.Nil(t, result.AlternativePath)
		assert.Equal(t, result.CreatedAt, result.UpdatedAt)

		// Новый сценарий сразу виден наверху списка и становится текущим
		summaries := scenarioCache.List(testOwnerID)
		require.Len(t, summaries, 1)
		assert.Equal(t, created.ID, summaries[0].ID)
		require.NotNil(t, scenarioCache.Current(testOwnerID))
		assert.Equal(t, created.ID, scenarioCache.Current(testOwnerID).ID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Missing owner id", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		result, err := svc.CreateScenario(ctx, "", service.CreateScenarioInput{Title: "x", Description: "y", Choice: "z"})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrUnauthorized))
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// TestGenerateAlternativePath tests the full lifecycle state machine
func TestGenerateAlternativePath(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful generation from pending", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, scenarioCache := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		path := testPath()

		generating := *scenario
		generating.Status = models.StatusGenerating
		completed := *scenario
		completed.Status = models.StatusCompleted
		completed.AlternativePath = path

		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Return(path, nil).Once()
		// Путь и completed пишутся одним обновлением
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusCompleted && u.Path != nil && len(u.Path.Events) == 3
		})).Return(&completed, nil).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, models.StatusCompleted, result.Status)
		require.NotNil(t, result.AlternativePath)
		assert.Len(t, result.AlternativePath.Events, 3)

		// Кэш видит финальный статус
		current := scenarioCache.Current(testOwnerID)
		if current != nil {
			assert.Equal(t, models.StatusCompleted, current.Status)
		}

		mockRepo.AssertExpectations(t)
		mockEngine.AssertExpectations(t)
	})

	t.Run("Generate from completed is rejected and nothing is written", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusCompleted)
		scenario.AlternativePath = testPath()
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInvalidState))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockEngine.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("Generate by non-owner is forbidden", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario("someone-else", models.StatusPending)
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrForbidden))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown scenario id", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		id := uuid.New()
		mockRepo.On("GetByID", ctx, id).Return(nil, models.ErrNotFound).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, id)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("Engine failure moves scenario to error and allows retry", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, scenarioCache := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		generating := *scenario
		generating.Status = models.StatusGenerating
		failed := *scenario
		failed.Status = models.StatusError

		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Return(nil, errors.New("model exploded")).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusError && u.ClearPath
		})).Return(&failed, nil).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrGenerationFailed))
		mockRepo.AssertExpectations(t)
		mockEngine.AssertExpectations(t)

		// Retry из error: маркер снят, статус позволяет
		retryScenario := failed
		retryGenerating := retryScenario
		retryGenerating.Status = models.StatusGenerating
		path := testPath()
		retryCompleted := retryScenario
		retryCompleted.Status = models.StatusCompleted
		retryCompleted.AlternativePath = path

		mockRepo.On("GetByID", ctx, scenario.ID).Return(&retryScenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&retryGenerating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &retryGenerating).Return(path, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusCompleted && u.Path != nil
		})).Return(&retryCompleted, nil).Once()

		retried, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, retried.Status)

		_ = scenarioCache
	})

	t.Run("Invalid engine payload is a generation failure", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		generating := *scenario
		generating.Status = models.StatusGenerating
		failed := *scenario
		failed.Status = models.StatusError

		// Два события вместо трех — контракт нарушен
		badPath := testPath()
		badPath.Events = badPath.Events[:2]

		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Return(badPath, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusError
		})).Return(&failed, nil).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrGenerationFailed))
	})

	t.Run("Result persistence failure triggers recovery write", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		generating := *scenario
		generating.Status = models.StatusGenerating
		failed := *scenario
		failed.Status = models.StatusError

		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Return(testPath(), nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusCompleted
		})).Return(nil, errors.New("connection reset")).Once()
		// Recovery write: статус error, чтобы запись не застряла в generating
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusError && u.ClearPath
		})).Return(&failed, nil).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrPersistenceFailed))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Recovery write failure is fatal", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		generating := *scenario
		generating.Status = models.StatusGenerating

		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Return(nil, errors.New("model exploded")).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusError
		})).Return(nil, errors.New("db down")).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		// Вызывающий не должен считать операцию успешной
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrPersistenceFailed))
	})

	t.Run("Second call delivered after the first settles sees completed and is rejected", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		generating := *scenario
		generating.Status = models.StatusGenerating
		path := testPath()
		completed := *scenario
		completed.Status = models.StatusCompleted
		completed.AlternativePath = path

		// Первая генерация проходит полностью
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Return(path, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusCompleted
		})).Return(&completed, nil).Once()

		first, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusCompleted, first.Status)

		// Второй запрос читает запись уже под маркером и видит completed
		mockRepo.On("GetByID", ctx, scenario.ID).Return(&completed, nil).Once()

		second, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)
		assert.Nil(t, second)
		assert.True(t, errors.Is(err, models.ErrInvalidState))
		mockEngine.AssertNumberOfCalls(t, "Generate", 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Storage-side status guard rejection stops the generation", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		// Снимок говорит pending, но условная запись в хранилище видит
		// другой статус и отклоняет переход
		scenario := newTestScenario(testOwnerID, models.StatusPending)
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(nil, models.ErrInvalidState).Once()

		result, err := svc.GenerateAlternativePath(ctx, testOwnerID, scenario.ID)

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInvalidState))
		assert.False(t, errors.Is(err, models.ErrPersistenceFailed))
		mockEngine.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent generate for same id is rejected with InvalidState", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		generating := *scenario
		generating.Status = models.StatusGenerating
		path := testPath()
		completed := *scenario
		completed.Status = models.StatusCompleted
		completed.AlternativePath = path

		engineStarted := make(chan struct{})
		releaseEngine := make(chan struct{})

		mockRepo.On("GetByID", mock.Anything, scenario.ID).Return(scenario, nil)
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, statusUpdate(models.StatusGenerating)).
			Return(&generating, nil).Once()
		mockEngine.On("Generate", mock.Anything, &generating).Run(func(args mock.Arguments) {
			close(engineStarted)
			<-releaseEngine
		}).Return(path, nil).Once()
		mockRepo.On("Update", mock.Anything, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			return u.Status != nil && *u.Status == models.StatusCompleted
		})).Return(&completed, nil).Once()

		firstDone := make(chan error, 1)
		go func() {
			_, err := svc.GenerateAlternativePath(context.Background(), testOwnerID, scenario.ID)
			firstDone <- err
		}()

		// Ждем, пока первый вызов дойдет до движка (маркер взят)
		select {
		case <-engineStarted:
		case <-time.After(5 * time.Second):
			t.Fatal("first generate call never reached the engine")
		}

		// Второй вызов для того же id отклоняется и не влияет на первый
		result, err := svc.GenerateAlternativePath(context.Background(), testOwnerID, scenario.ID)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInvalidState))

		close(releaseEngine)
		select {
		case err := <-firstDone:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("first generate call never finished")
		}

		mockEngine.AssertNumberOfCalls(t, "Generate", 1)
	})
}

// TestUpdateScenario tests user field edits
func TestUpdateScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful patch", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, scenarioCache := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		newTitle := "Job in Portland"
		patch := models.ScenarioPatch{Title: &newTitle}

		updated := *scenario
		updated.Title = newTitle
		updated.UpdatedAt = scenario.UpdatedAt.Add(time.Second)

		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", ctx, scenario.ID, testOwnerID, mock.MatchedBy(func(u repository.ScenarioUpdate) bool {
			// Патч полей — тоже условная запись: generating в guard не входит
			for _, status := range u.GuardStatuses {
				if status == models.StatusGenerating {
					return false
				}
			}
			return u.Fields.Title != nil && *u.Fields.Title == newTitle && u.Status == nil &&
				len(u.GuardStatuses) == 3
		})).Return(&updated, nil).Once()

		result, err := svc.UpdateScenario(ctx, testOwnerID, scenario.ID, patch)

		require.NoError(t, err)
		assert.Equal(t, newTitle, result.Title)
		assert.True(t, result.UpdatedAt.After(scenario.UpdatedAt))
		mockRepo.AssertExpectations(t)

		_ = scenarioCache
	})

	t.Run("Edit while generating is rejected", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusGenerating)
		newTitle := "x"
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()

		result, err := svc.UpdateScenario(ctx, testOwnerID, scenario.ID, models.ScenarioPatch{Title: &newTitle})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInvalidState))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage-side guard rejects edit racing with generation", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		// Снимок устарел: генерация стартовала после чтения
		scenario := newTestScenario(testOwnerID, models.StatusPending)
		newTitle := "x"
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()
		mockRepo.On("Update", ctx, scenario.ID, testOwnerID, mock.Anything).
			Return(nil, models.ErrInvalidState).Once()

		result, err := svc.UpdateScenario(ctx, testOwnerID, scenario.ID, models.ScenarioPatch{Title: &newTitle})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInvalidState))
	})

	t.Run("Edit by non-owner is forbidden", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		scenario := newTestScenario("someone-else", models.StatusPending)
		newTitle := "x"
		mockRepo.On("GetByID", ctx, scenario.ID).Return(scenario, nil).Once()

		result, err := svc.UpdateScenario(ctx, testOwnerID, scenario.ID, models.ScenarioPatch{Title: &newTitle})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})

	t.Run("Empty patch is invalid input", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		result, err := svc.UpdateScenario(ctx, testOwnerID, uuid.New(), models.ScenarioPatch{})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInvalidInput))
	})
}

// TestDeleteScenario tests deletion and cache eviction
func TestDeleteScenario(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful delete evicts cache entry", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, scenarioCache := newService(mockRepo, mockEngine)

		scenario := newTestScenario(testOwnerID, models.StatusPending)
		scenarioCache.Load(testOwnerID, []models.Scenario{*scenario})
		scenarioCache.SetCurrent(scenario)

		mockRepo.On("Delete", ctx, scenario.ID, testOwnerID).Return(nil).Once()

		err := svc.DeleteScenario(ctx, testOwnerID, scenario.ID)

		require.NoError(t, err)
		assert.Empty(t, scenarioCache.List(testOwnerID))
		assert.Nil(t, scenarioCache.Current(testOwnerID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Delete by non-owner is forbidden", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		id := uuid.New()
		mockRepo.On("Delete", ctx, id, testOwnerID).Return(models.ErrForbidden).Once()

		err := svc.DeleteScenario(ctx, testOwnerID, id)
		assert.True(t, errors.Is(err, models.ErrForbidden))
	})
}

// TestFetchUserScenarios tests the list flow
func TestFetchUserScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("List reloads cache newest-first", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		base := time.Now().UTC()
		older := newTestScenario(testOwnerID, models.StatusPending)
		older.CreatedAt = base.Add(-2 * time.Hour)
		newer := newTestScenario(testOwnerID, models.StatusCompleted)
		newer.CreatedAt = base

		mockRepo.On("ListByOwner", ctx, testOwnerID).
			Return([]models.Scenario{*newer, *older}, nil).Once()

		summaries, err := svc.FetchUserScenarios(ctx, testOwnerID)

		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, newer.ID, summaries[0].ID)
		assert.Equal(t, older.ID, summaries[1].ID)
	})

	t.Run("Empty list is not an error", func(t *testing.T) {
		mockRepo := new(repoMocks.ScenarioRepository)
		mockEngine := new(serviceMocks.GenerationEngine)
		svc, _ := newService(mockRepo, mockEngine)

		mockRepo.On("ListByOwner", ctx, testOwnerID).Return([]models.Scenario{}, nil).Once()

		summaries, err := svc.FetchUserScenarios(ctx, testOwnerID)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}
