package mocks

import (
	"context"

	"liveparallel-server/internal/models"
	"liveparallel-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock ScenarioRepository
type ScenarioRepository struct {
	mock.Mock
}

func (m *ScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error) {
	args := m.Called(ctx, scenario)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Scenario, error) {
	args := m.Called(ctx, ownerID)
	s, _ := args.Get(0).([]models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioRepository) Update(ctx context.Context, id uuid.UUID, actingOwnerID string, update repository.ScenarioUpdate) (*models.Scenario, error) {
	args := m.Called(ctx, id, actingOwnerID, update)
	s, _ := args.Get(0).(*models.Scenario)
	return s, args.Error(1)
}

func (m *ScenarioRepository) Delete(ctx context.Context, id uuid.UUID, actingOwnerID string) error {
	args := m.Called(ctx, id, actingOwnerID)
	return args.Error(0)
}
