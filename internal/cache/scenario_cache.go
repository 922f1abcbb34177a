package cache

import (
	"sort"
	"sync"

	"liveparallel-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScenarioCache держит в памяти упорядоченный список сводок сценариев
// для каждого пользователя плюс отдельный слот "текущего" сценария
// (открытого в детальном просмотре). Кэш best-effort: источником истины
// остается хранилище, поэтому Replace/Remove по отсутствующему id —
// не ошибка, а no-op.
type ScenarioCache struct {
	mu          sync.RWMutex
	collections map[string]*ownerCollection
	logger      *zap.Logger
}

type ownerCollection struct {
	summaries []models.ScenarioSummary
	current   *models.Scenario
}

// NewScenarioCache создает пустой кэш.
func NewScenarioCache(logger *zap.Logger) *ScenarioCache {
	return &ScenarioCache{
		collections: make(map[string]*ownerCollection),
		logger:      logger.Named("ScenarioCache"),
	}
}

func (c *ScenarioCache) collection(ownerID string) *ownerCollection {
	col, ok := c.collections[ownerID]
	if !ok {
		col = &ownerCollection{}
		c.collections[ownerID] = col
	}
	return col
}

// Load полностью заменяет список пользователя результатом запроса к
// хранилищу и устанавливает авторитетный порядок: новые первыми.
func (c *ScenarioCache) Load(ownerID string, scenarios []models.Scenario) {
	summaries := make([]models.ScenarioSummary, 0, len(scenarios))
	for i := range scenarios {
		summaries = append(summaries, scenarios[i].Summary())
	}
	// Репозиторий обязан отдавать created_at DESC, но порядок кэша —
	// наш инвариант, поэтому пересортировываем сами.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection(ownerID).summaries = summaries
	c.logger.Debug("Cache loaded", zap.String("ownerID", ownerID), zap.Int("count", len(summaries)))
}

// Insert добавляет сводку нового сценария в начало списка, чтобы после
// создания элемент был виден сразу, не дожидаясь перечитывания с сервера.
func (c *ScenarioCache) Insert(scenario *models.Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col := c.collection(scenario.OwnerID)
	col.summaries = append([]models.ScenarioSummary{scenario.Summary()}, col.summaries...)
}

// Replace перезаписывает сводку с совпадающим id, сохраняя позицию.
// Если id в списке нет — no-op: кэш мог устареть относительно сервера.
// Слот текущего сценария обновляется по тому же совпадению id.
func (c *ScenarioCache) Replace(scenario *models.Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col := c.collection(scenario.OwnerID)
	for i := range col.summaries {
		if col.summaries[i].ID == scenario.ID {
			col.summaries[i] = scenario.Summary()
			break
		}
	}
	if col.current != nil && col.current.ID == scenario.ID {
		col.current = scenario
	}
}

// Remove удаляет сводку с совпадающим id; no-op, если её нет.
// Если удаляется текущий сценарий, слот очищается.
func (c *ScenarioCache) Remove(ownerID string, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col := c.collection(ownerID)
	for i := range col.summaries {
		if col.summaries[i].ID == id {
			col.summaries = append(col.summaries[:i], col.summaries[i+1:]...)
			break
		}
	}
	if col.current != nil && col.current.ID == id {
		col.current = nil
	}
}

// List возвращает копию списка сводок пользователя.
func (c *ScenarioCache) List(ownerID string) []models.ScenarioSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	col, ok := c.collections[ownerID]
	if !ok {
		return nil
	}
	out := make([]models.ScenarioSummary, len(col.summaries))
	copy(out, col.summaries)
	return out
}

// SetCurrent устанавливает сценарий, открытый в детальном просмотре.
func (c *ScenarioCache) SetCurrent(scenario *models.Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collection(scenario.OwnerID).current = scenario
}

// Current возвращает текущий сценарий пользователя или nil.
func (c *ScenarioCache) Current(ownerID string) *models.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	col, ok := c.collections[ownerID]
	if !ok {
		return nil
	}
	return col.current
}

// ClearCurrent явно очищает слот текущего сценария (уход с экрана деталей).
func (c *ScenarioCache) ClearCurrent(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.collections[ownerID]; ok {
		col.current = nil
	}
}
