package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"liveparallel-server/internal/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const pathSystemPrompt = `You generate an "alternative life path" narrative for a life decision the user did NOT take.
Respond with a single JSON object of the form:
{"summary": "<one paragraph>", "events": [{"title": "<short title>", "description": "<one paragraph consequence>", "outcome": "<one sentence outcome>"}]}
The events array must contain exactly 3 events. Do not add any other keys or text.`

// openAIEngine — движок генерации поверх OpenAI-совместимого API.
// Drop-in замена заглушки: тот же контракт формы ответа и отмены.
type openAIEngine struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

// OpenAIEngineConfig содержит настройки openai-движка.
type OpenAIEngineConfig struct {
	APIKey  string
	Model   string
	BaseURL string // пусто = официальный API
}

// NewOpenAIEngine создает движок генерации на базе go-openai.
func NewOpenAIEngine(cfg OpenAIEngineConfig, logger *zap.Logger) (GenerationEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai engine: API key is empty")
	}
	clientConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openAIEngine{
		client: openaigo.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("OpenAIEngine"),
	}, nil
}

// generatedPath — формат JSON ответа модели (без таймстампов, их ставим сами).
type generatedPath struct {
	Summary string `json:"summary"`
	Events  []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Outcome     string `json:"outcome"`
	} `json:"events"`
}

func (e *openAIEngine) Generate(ctx context.Context, scenario *models.Scenario) (*models.AlternativePath, error) {
	userPrompt := fmt.Sprintf(
		"Decision: %s\nSituation: %s\nThe path not taken: %s",
		scenario.Title, scenario.Description, scenario.Choice,
	)
	if scenario.Context != "" {
		userPrompt += "\nAdditional context: " + scenario.Context
	}

	startTime := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: e.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: pathSystemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("OpenAI request failed",
			zap.String("scenarioID", scenario.ID.String()),
			zap.String("model", e.model),
			zap.Error(err),
		)
		return nil, fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}
	e.logger.Info("OpenAI request completed",
		zap.String("scenarioID", scenario.ID.String()),
		zap.String("model", e.model),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("totalTokens", resp.Usage.TotalTokens),
	)

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices in response", ErrEngineInvalidPayload)
	}

	var parsed generatedPath
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineInvalidPayload, err)
	}

	generatedAt := time.Now().UTC()
	path := &models.AlternativePath{
		Summary: parsed.Summary,
		Events:  make([]models.PathEvent, 0, len(parsed.Events)),
	}
	for _, event := range parsed.Events {
		path.Events = append(path.Events, models.PathEvent{
			Title:       event.Title,
			Description: event.Description,
			Outcome:     event.Outcome,
			Timestamp:   generatedAt,
		})
	}

	if err := ValidateAlternativePath(path); err != nil {
		return nil, err
	}
	return path, nil
}
