package models

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioStatus определяет возможные статусы жизненного цикла сценария.
type ScenarioStatus string

const (
	StatusPending    ScenarioStatus = "pending"    // Создан, генерация еще не запускалась
	StatusGenerating ScenarioStatus = "generating" // Идет генерация альтернативного пути
	StatusCompleted  ScenarioStatus = "completed"  // Генерация завершена, путь сохранен
	StatusError      ScenarioStatus = "error"      // Генерация или сохранение результата завершились ошибкой
)

// Scenario представляет жизненное решение пользователя и сгенерированный для него альтернативный путь.
type Scenario struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	OwnerID         string           `db:"owner_id" json:"owner_id"`
	Title           string           `db:"title" json:"title"`
	Description     string           `db:"description" json:"description"`
	Choice          string           `db:"choice" json:"choice"`
	Context         string           `db:"context" json:"context,omitempty"`
	Status          ScenarioStatus   `db:"status" json:"status"`
	AlternativePath *AlternativePath `db:"alternative_path" json:"alternative_path,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// AlternativePath содержит сгенерированный альтернативный нарратив.
// Присутствует тогда и только тогда, когда Status == StatusCompleted.
type AlternativePath struct {
	Summary string      `json:"summary"`
	Events  []PathEvent `json:"events"`
}

// PathEvent описывает одно событие альтернативного пути.
type PathEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Outcome     string    `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScenarioSummary представляет сокращенную версию Scenario для списков.
type ScenarioSummary struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      ScenarioStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Summary строит проекцию сценария для списка.
func (s *Scenario) Summary() ScenarioSummary {
	return ScenarioSummary{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
}

// ScenarioPatch перечисляет поля, которые пользователь может менять при редактировании.
// nil-поле означает "не трогать". Статус и путь сюда намеренно не входят:
// ими управляет только контроллер жизненного цикла.
type ScenarioPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Choice      *string `json:"choice,omitempty"`
	Context     *string `json:"context,omitempty"`
}

// IsEmpty возвращает true, если патч не меняет ни одного поля.
func (p ScenarioPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Choice == nil && p.Context == nil
}
