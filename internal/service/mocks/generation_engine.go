package mocks

import (
	"context"

	"liveparallel-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock GenerationEngine
type GenerationEngine struct {
	mock.Mock
}

func (m *GenerationEngine) Generate(ctx context.Context, scenario *models.Scenario) (*models.AlternativePath, error) {
	args := m.Called(ctx, scenario)
	path, _ := args.Get(0).(*models.AlternativePath)
	return path, args.Error(1)
}
