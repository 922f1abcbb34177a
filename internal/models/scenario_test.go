package models_test

import (
	"testing"
	"time"

	"liveparallel-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScenarioSummary(t *testing.T) {
	now := time.Now().UTC()
	scenario := &models.Scenario{
		ID:          uuid.New(),
		OwnerID:     "owner-1",
		Title:       "Job in Seattle",
		Description: "Considering relocation",
		Choice:      "Take the offer",
		Status:      models.StatusCompleted,
		AlternativePath: &models.AlternativePath{
			Summary: "s",
			Events:  []models.PathEvent{{Title: "a", Description: "d", Outcome: "o", Timestamp: now}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	summary := scenario.Summary()

	assert.Equal(t, scenario.ID, summary.ID)
	assert.Equal(t, scenario.Title, summary.Title)
	assert.Equal(t, scenario.Description, summary.Description)
	assert.Equal(t, scenario.Status, summary.Status)
	assert.Equal(t, scenario.CreatedAt, summary.CreatedAt)
}

func TestScenarioPatchIsEmpty(t *testing.T) {
	assert.True(t, models.ScenarioPatch{}.IsEmpty())
	title := "x"
	assert.False(t, models.ScenarioPatch{Title: &title}.IsEmpty())
	context := ""
	// Явно установленная пустая строка — это изменение, а не "не трогать"
	assert.False(t, models.ScenarioPatch{Context: &context}.IsEmpty())
}
