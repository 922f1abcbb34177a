package repository

import (
	"context"

	"liveparallel-server/internal/models"

	"github.com/google/uuid"
)

// ScenarioUpdate описывает частичное обновление записи сценария.
// Репозиторий применяет ровно то, что ему передали: машину статусов
// он не проверяет, это ответственность контроллера жизненного цикла.
type ScenarioUpdate struct {
	Fields models.ScenarioPatch
	Status *models.ScenarioStatus
	// Path записывается вместе со статусом одним UPDATE, чтобы читатель
	// никогда не увидел completed без пути.
	Path *models.AlternativePath
	// ClearPath сбрасывает alternative_path в NULL.
	ClearPath bool
	// GuardStatuses, если не пуст, делает обновление условной записью:
	// строка меняется только когда её текущий статус входит в список.
	// Несовпадение статуса возвращается как models.ErrInvalidState, так что
	// решение принимается по состоянию в хранилище, а не по снимку читателя.
	GuardStatuses []models.ScenarioStatus
}

// ScenarioRepository — единственная граница между ядром и удаленным хранилищем.
type ScenarioRepository interface {
	// Create сохраняет новый сценарий и возвращает запись в том виде,
	// в котором она легла в хранилище.
	Create(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error)

	// GetByID возвращает сценарий по id. models.ErrNotFound, если записи нет.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error)

	// ListByOwner возвращает сценарии пользователя, новые первыми.
	// Пустой список — валидный результат, не ошибка.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Scenario, error)

	// Update применяет частичное обновление с проверкой владельца.
	// models.ErrNotFound если записи нет, models.ErrForbidden если
	// owner_id записи не совпадает с actingOwnerID. Всегда обновляет updated_at.
	Update(ctx context.Context, id uuid.UUID, actingOwnerID string, update ScenarioUpdate) (*models.Scenario, error)

	// Delete удаляет запись с той же проверкой владельца, что и Update.
	// Запись в статусе generating не удаляется: models.ErrInvalidState.
	Delete(ctx context.Context, id uuid.UUID, actingOwnerID string) error
}
