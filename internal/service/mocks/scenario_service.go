package mocks

import (
	"context"

	"liveparallel-server/internal/models"
	"liveparallel-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock ScenarioService
type ScenarioService struct {
	mock.Mock
}

func (m *ScenarioService) CreateScenario(ctx context.Context, ownerID string, input service.CreateScenarioInput) (*models.Scenario, error) {
	args := m.Called(ctx, ownerID, input)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioService) FetchUserScenarios(ctx context.Context, ownerID string) ([]models.ScenarioSummary, error) {
	args := m.Called(ctx, ownerID)
	s, _ := args.Get(0).([]models.ScenarioSummary)
	return s, args.Error(1)
}

func (m *ScenarioService) FetchScenario(ctx context.Context, ownerID string, id uuid.UUID) (*models.Scenario, error) {
	args := m.Called(ctx, ownerID, id)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioService) UpdateScenario(ctx context.Context, ownerID string, id uuid.UUID, patch models.ScenarioPatch) (*models.Scenario, error) {
	args := m.Called(ctx, ownerID, id, patch)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioService) DeleteScenario(ctx context.Context, ownerID string, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *ScenarioService) GenerateAlternativePath(ctx context.Context, ownerID string, id uuid.UUID) (*models.Scenario, error) {
	args := m.Called(ctx, ownerID, id)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioService) ClearCurrentScenario(ownerID string) {
	m.Called(ownerID)
}
