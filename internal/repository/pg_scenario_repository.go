package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"liveparallel-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX — минимальный контракт пула/транзакции pgx, нужный репозиторию.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Compile-time check
var _ ScenarioRepository = (*pgScenarioRepository)(nil)

type pgScenarioRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgScenarioRepository создает Postgres-реализацию ScenarioRepository.
func NewPgScenarioRepository(db DBTX, logger *zap.Logger) ScenarioRepository {
	return &pgScenarioRepository{
		db:     db,
		logger: logger.Named("PgScenarioRepo"),
	}
}

const scenarioColumns = `id, owner_id, title, description, choice, context, status, alternative_path, created_at, updated_at`

// scanScenario читает одну строку таблицы scenarios.
func scanScenario(row pgx.Row) (*models.Scenario, error) {
	var s models.Scenario
	var pathJSON []byte
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.Choice, &s.Context,
		&s.Status, &pathJSON, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pathJSON != nil {
		var path models.AlternativePath
		if err := json.Unmarshal(pathJSON, &path); err != nil {
			return nil, fmt.Errorf("ошибка разбора alternative_path: %w", err)
		}
		s.AlternativePath = &path
	}
	return &s, nil
}

// Create сохраняет новый сценарий. ID и временные метки назначает хранилище.
func (r *pgScenarioRepository) Create(ctx context.Context, scenario *models.Scenario) (*models.Scenario, error) {
	if scenario.OwnerID == "" {
		return nil, models.ErrUnauthorized
	}

	id := scenario.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	query := `
        INSERT INTO scenarios
            (id, owner_id, title, description, choice, context, status, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        RETURNING ` + scenarioColumns

	logFields := []zap.Field{zap.String("scenarioID", id.String()), zap.String("ownerID", scenario.OwnerID)}
	r.logger.Debug("Creating scenario", logFields...)

	created, err := scanScenario(r.db.QueryRow(ctx, query,
		id,
		scenario.OwnerID,
		scenario.Title,
		scenario.Description,
		scenario.Choice,
		scenario.Context,
		models.StatusPending,
		now,
	))
	if err != nil {
		r.logger.Error("Failed to create scenario", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка создания сценария: %w", err)
	}
	r.logger.Info("Scenario created successfully", logFields...)
	return created, nil
}

// GetByID возвращает сценарий по id без проверки владельца.
func (r *pgScenarioRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE id = $1`
	logFields := []zap.Field{zap.String("scenarioID", id.String())}
	r.logger.Debug("Getting scenario by ID", logFields...)

	scenario, err := scanScenario(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Scenario not found by ID", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get scenario by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения сценария %s: %w", id, err)
	}
	return scenario, nil
}

// ListByOwner возвращает сценарии пользователя, новые первыми.
func (r *pgScenarioRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE owner_id = $1 ORDER BY created_at DESC`
	logFields := []zap.Field{zap.String("ownerID", ownerID)}
	r.logger.Debug("Listing scenarios by owner", logFields...)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list scenarios", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка получения списка сценариев: %w", err)
	}
	defer rows.Close()

	scenarios := make([]models.Scenario, 0)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			r.logger.Error("Failed to scan scenario row", append(logFields, zap.Error(err))...)
			return nil, fmt.Errorf("ошибка чтения строки сценария: %w", err)
		}
		scenarios = append(scenarios, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по сценариям: %w", err)
	}
	r.logger.Debug("Scenarios listed", append(logFields, zap.Int("count", len(scenarios)))...)
	return scenarios, nil
}

// checkOwnership проверяет существование записи и совпадение владельца.
func (r *pgScenarioRepository) checkOwnership(ctx context.Context, id uuid.UUID, actingOwnerID string) error {
	var ownerID string
	err := r.db.QueryRow(ctx, `SELECT owner_id FROM scenarios WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("ошибка проверки владельца сценария %s: %w", id, err)
	}
	if ownerID != actingOwnerID {
		return models.ErrForbidden
	}
	return nil
}

// Update применяет частичное обновление. Машина статусов здесь не проверяется.
func (r *pgScenarioRepository) Update(ctx context.Context, id uuid.UUID, actingOwnerID string, update ScenarioUpdate) (*models.Scenario, error) {
	logFields := []zap.Field{zap.String("scenarioID", id.String()), zap.String("ownerID", actingOwnerID)}

	if err := r.checkOwnership(ctx, id, actingOwnerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			r.logger.Warn("Attempted to update non-existent scenario", logFields...)
		} else if errors.Is(err, models.ErrForbidden) {
			r.logger.Warn("Attempted to update scenario of another user", logFields...)
		}
		return nil, err
	}

	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 8)
	addSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.Fields.Title != nil {
		addSet("title", *update.Fields.Title)
	}
	if update.Fields.Description != nil {
		addSet("description", *update.Fields.Description)
	}
	if update.Fields.Choice != nil {
		addSet("choice", *update.Fields.Choice)
	}
	if update.Fields.Context != nil {
		addSet("context", *update.Fields.Context)
	}
	if update.Status != nil {
		addSet("status", *update.Status)
	}
	if update.Path != nil {
		pathJSON, err := json.Marshal(update.Path)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации alternative_path: %w", err)
		}
		addSet("alternative_path", pathJSON)
	} else if update.ClearPath {
		addSet("alternative_path", nil)
	}

	// updated_at обновляется при любой мутации, даже пустой
	addSet("updated_at", time.Now().UTC())

	args = append(args, id)
	whereClause := " WHERE id = $" + strconv.Itoa(len(args))
	if len(update.GuardStatuses) > 0 {
		statuses := make([]string, 0, len(update.GuardStatuses))
		for _, status := range update.GuardStatuses {
			statuses = append(statuses, string(status))
		}
		args = append(args, statuses)
		whereClause += " AND status = ANY($" + strconv.Itoa(len(args)) + ")"
	}
	query := "UPDATE scenarios SET " + strings.Join(setClauses, ", ") +
		whereClause +
		" RETURNING " + scenarioColumns

	r.logger.Debug("Updating scenario", logFields...)
	updated, err := scanScenario(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо запись исчезла между проверкой владельца и обновлением,
			// либо её текущий статус не прошел guard
			if len(update.GuardStatuses) > 0 {
				var currentStatus models.ScenarioStatus
				if scanErr := r.db.QueryRow(ctx, `SELECT status FROM scenarios WHERE id = $1`, id).Scan(&currentStatus); scanErr == nil {
					r.logger.Warn("Conditional update rejected by status guard",
						append(logFields, zap.String("status", string(currentStatus)))...)
					return nil, fmt.Errorf("%w: scenario status is %q", models.ErrInvalidState, currentStatus)
				}
			}
			r.logger.Warn("Scenario disappeared during update", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to update scenario", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("ошибка обновления сценария %s: %w", id, err)
	}
	r.logger.Info("Scenario updated successfully", logFields...)
	return updated, nil
}

// Delete удаляет сценарий с проверкой владельца. Запись в статусе
// generating не трогается: условие в DELETE решает гонку со снимком,
// прочитанным до старта генерации.
func (r *pgScenarioRepository) Delete(ctx context.Context, id uuid.UUID, actingOwnerID string) error {
	logFields := []zap.Field{zap.String("scenarioID", id.String()), zap.String("ownerID", actingOwnerID)}

	if err := r.checkOwnership(ctx, id, actingOwnerID); err != nil {
		return err
	}

	commandTag, err := r.db.Exec(ctx, `DELETE FROM scenarios WHERE id = $1 AND status <> $2`, id, models.StatusGenerating)
	if err != nil {
		r.logger.Error("Failed to delete scenario", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ошибка удаления сценария %s: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		var currentStatus models.ScenarioStatus
		if scanErr := r.db.QueryRow(ctx, `SELECT status FROM scenarios WHERE id = $1`, id).Scan(&currentStatus); scanErr == nil {
			r.logger.Warn("Delete rejected: scenario is generating", logFields...)
			return fmt.Errorf("%w: scenario status is %q", models.ErrInvalidState, currentStatus)
		}
		r.logger.Warn("Scenario already deleted", logFields...)
		return models.ErrNotFound
	}
	r.logger.Info("Scenario deleted successfully", logFields...)
	return nil
}
